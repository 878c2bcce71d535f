package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Laudo holds the structure for the laudos collection in mongo.
// AssinaturaDigital is nil until the laudo is signed and is never cleared
// afterwards.
type Laudo struct {
	ID                primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	VitimaID          string             `json:"vitimaId" bson:"vitimaId"`
	CasoID            string             `json:"casoId" bson:"casoId"`
	PeritoID          string             `json:"peritoId" bson:"peritoId"`
	Evidencias        []string           `json:"evidencias" bson:"evidencias"`
	DadosAntemortem   string             `json:"dadosAntemortem" bson:"dadosAntemortem"`
	DadosPostmortem   string             `json:"dadosPostmortem" bson:"dadosPostmortem"`
	AnaliseLesoes     string             `json:"analiseLesoes" bson:"analiseLesoes"`
	Conclusao         string             `json:"conclusao" bson:"conclusao"`
	AssinaturaDigital *string            `json:"assinaturaDigital" bson:"assinaturaDigital"`
	DataCriacao       primitive.DateTime `json:"dataCriacao" bson:"dataCriacao"`
}

// LaudoResponse is the payload returned by the laudo generation endpoints,
// carrying the stored document plus the rendered PDF as base64.
type LaudoResponse struct {
	Laudo Laudo  `json:"laudo"`
	PDF   string `json:"pdf"`
}

// LaudoPopulado is the fully resolved view of a laudo returned by GET by id.
type LaudoPopulado struct {
	Laudo      Laudo       `json:"laudo"`
	Vitima     Vitima      `json:"vitima"`
	Caso       Caso        `json:"caso"`
	Perito     Perito      `json:"perito"`
	Evidencias []Evidencia `json:"evidencias"`
}

// LaudoListResponse is the paginated list payload.
type LaudoListResponse struct {
	Data  []Laudo `json:"data"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
	Total int64   `json:"total"`
}
