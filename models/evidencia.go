package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Evidencia tipo values. The payload is a tagged union discriminated by Tipo:
// imagem carries ImagemURL, texto carries Texto, never both.
const (
	EvidenciaTipoImagem = "imagem"
	EvidenciaTipoTexto  = "texto"
)

// EvidenciaTiposValidos lists the accepted evidence types.
var EvidenciaTiposValidos = []string{EvidenciaTipoImagem, EvidenciaTipoTexto}

// EvidenciaCategoriasValidas lists the accepted evidence categories.
var EvidenciaCategoriasValidas = []string{
	"Radiografia Panorâmica",
	"Radiografia Periapical",
	"Fotografia Intraoral",
	"Fotografia Extraoral",
	"Odontograma",
	"Análise de Prontuário",
	"Moldagem",
	"Outros",
}

// Evidencia holds the structure for the evidencias collection in mongo
type Evidencia struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Tipo        string             `json:"tipo" bson:"tipo"`
	Categoria   string             `json:"categoria" bson:"categoria"`
	ColetadoPor string             `json:"coletadoPor" bson:"coletadoPor"`
	CasoID      string             `json:"casoId" bson:"casoId"`
	VitimaID    string             `json:"vitimaId" bson:"vitimaId"`
	ImagemURL   string             `json:"imagemURL,omitempty" bson:"imagemURL,omitempty"`
	Texto       string             `json:"texto,omitempty" bson:"texto,omitempty"`
	DataUpload  primitive.DateTime `json:"dataUpload" bson:"dataUpload"`
}

// EvidenciaTipoValido reports whether s is one of the accepted evidence types.
func EvidenciaTipoValido(s string) bool {
	for _, v := range EvidenciaTiposValidos {
		if v == s {
			return true
		}
	}
	return false
}

// EvidenciaCategoriaValida reports whether s is one of the accepted categories.
func EvidenciaCategoriaValida(s string) bool {
	for _, v := range EvidenciaCategoriasValidas {
		if v == s {
			return true
		}
	}
	return false
}

// EvidenciaListResponse is a paginated page of evidencias.
type EvidenciaListResponse struct {
	Data  []Evidencia `json:"data"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Total int64       `json:"total"`
}

// EvidenciaResponse pairs a stored evidencia with the victim it was attached
// to, including one implicitly created during submission.
type EvidenciaResponse struct {
	Evidencia Evidencia `json:"evidencia"`
	Vitima    *Vitima   `json:"vitima,omitempty"`
}
