package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Vitima sexo values accepted on the wire.
const (
	SexoMasculino     = "masculino"
	SexoFeminino      = "feminino"
	SexoIndeterminado = "indeterminado"
)

// SexoValidos lists the accepted sexo values.
var SexoValidos = []string{SexoMasculino, SexoFeminino, SexoIndeterminado}

// EstadoCorpoValidos lists the accepted body condition values.
var EstadoCorpoValidos = []string{"inteiro", "fragmentado", "carbonizado", "decomposto", "esqueleto"}

// Vitima holds the structure for the vitimas collection in mongo.
// Nome stays empty while the victim is unidentified.
type Vitima struct {
	ID               primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Nome             string             `json:"nome" bson:"nome"`
	DataNascimento   string             `json:"dataNascimento" bson:"dataNascimento"`
	IdadeAproximada  int                `json:"idadeAproximada" bson:"idadeAproximada"`
	Nacionalidade    string             `json:"nacionalidade" bson:"nacionalidade"`
	Cidade           string             `json:"cidade" bson:"cidade"`
	Sexo             string             `json:"sexo" bson:"sexo"`
	EstadoCorpo      string             `json:"estadoCorpo" bson:"estadoCorpo"`
	Lesoes           string             `json:"lesoes" bson:"lesoes"`
	Identificada     bool               `json:"identificada" bson:"identificada"`
	CasoID           string             `json:"casoId" bson:"casoId"`
	DataCriacao      primitive.DateTime `json:"dataCriacao" bson:"dataCriacao"`
}

// SexoValido reports whether s is one of the accepted sexo values.
func SexoValido(s string) bool {
	for _, v := range SexoValidos {
		if v == s {
			return true
		}
	}
	return false
}

// EstadoCorpoValido reports whether s is one of the accepted body condition values.
func EstadoCorpoValido(s string) bool {
	for _, v := range EstadoCorpoValidos {
		if v == s {
			return true
		}
	}
	return false
}

// VitimaListResponse is a paginated page of vitimas.
type VitimaListResponse struct {
	Data  []Vitima `json:"data"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
	Total int64    `json:"total"`
}
