package pdfexport

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifactNameShape(t *testing.T) {
	name := ArtifactName("criar-laudo", "608cafe595eb9dc05379b7f4")

	re := regexp.MustCompile(`^criar-laudo_608cafe595eb9dc05379b7f4_[0-9a-f-]{36}\.pdf$`)
	assert.Regexp(t, re, name)
}

func TestArtifactNameNeverCollides(t *testing.T) {
	a := ArtifactName("assinar-laudo", "abc")
	b := ArtifactName("assinar-laudo", "abc")

	assert.NotEqual(t, a, b)
}
