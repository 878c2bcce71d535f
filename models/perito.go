package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Perito cargo values.
var PeritoCargosValidos = []string{"admin", "perito", "assistente"}

// Perito holds the structure for the peritos collection in mongo
type Perito struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Nome        string             `json:"nome" bson:"nome"`
	Email       string             `json:"email" bson:"email"`
	Senha       string             `json:"-" bson:"senha"`
	Cargo       string             `json:"cargo" bson:"cargo"`
	DataCriacao primitive.DateTime `json:"dataCriacao" bson:"dataCriacao"`
}

// PeritoCargoValido reports whether s is one of the accepted cargo values.
func PeritoCargoValido(s string) bool {
	for _, v := range PeritoCargosValidos {
		if v == s {
			return true
		}
	}
	return false
}

// PeritoListResponse is a paginated page of peritos.
type PeritoListResponse struct {
	Data  []Perito `json:"data"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
	Total int64    `json:"total"`
}
