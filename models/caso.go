package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Caso status values accepted on the wire.
const (
	CasoStatusEmAndamento = "Em andamento"
	CasoStatusFinalizado  = "Finalizado"
	CasoStatusArquivado   = "Arquivado"
)

// CasoStatusValidos lists the accepted case status values, echoed back on
// rejected filter values.
var CasoStatusValidos = []string{CasoStatusEmAndamento, CasoStatusFinalizado, CasoStatusArquivado}

// Caso holds the structure for the casos collection in mongo
type Caso struct {
	ID                primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Titulo            string             `json:"titulo" bson:"titulo"`
	Descricao         string             `json:"descricao" bson:"descricao"`
	Status            string             `json:"status" bson:"status"`
	Cidade            string             `json:"cidade" bson:"cidade"`
	Estado            string             `json:"estado" bson:"estado"`
	PeritoResponsavel string             `json:"peritoResponsavel" bson:"peritoResponsavel"`
	CasoReferencia    string             `json:"casoReferencia" bson:"casoReferencia"`
	DataCriacao       primitive.DateTime `json:"dataCriacao" bson:"dataCriacao"`
}

// CasoStatusValido reports whether s is one of the accepted status values.
func CasoStatusValido(s string) bool {
	for _, v := range CasoStatusValidos {
		if v == s {
			return true
		}
	}
	return false
}

// CasoListResponse is a paginated page of casos.
type CasoListResponse struct {
	Data  []Caso `json:"data"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Total int64  `json:"total"`
}
