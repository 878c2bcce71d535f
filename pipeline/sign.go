package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// AssinaturaToken computes the audit token that marks a document as signed.
// It is a one-way hash over the examiner, the document and the signing
// instant, not a cryptographic signature over the document bytes.
func AssinaturaToken(peritoID, documentoID string, assinadoEm time.Time) string {
	sum := sha256.Sum256([]byte(peritoID + documentoID + assinadoEm.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}
