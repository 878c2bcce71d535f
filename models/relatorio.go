package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Relatorio holds the structure for the relatorios collection in mongo.
// Assinado only ever transitions false -> true.
type Relatorio struct {
	ID                            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Titulo                        string             `json:"titulo" bson:"titulo"`
	Descricao                     string             `json:"descricao" bson:"descricao"`
	ObjetoPericia                 string             `json:"objetoPericia" bson:"objetoPericia"`
	AnaliseTecnica                string             `json:"analiseTecnica" bson:"analiseTecnica"`
	MetodoUtilizado               string             `json:"metodoUtilizado" bson:"metodoUtilizado"`
	Destinatario                  string             `json:"destinatario" bson:"destinatario"`
	MateriaisUtilizados           string             `json:"materiaisUtilizados" bson:"materiaisUtilizados"`
	ExamesRealizados              string             `json:"examesRealizados" bson:"examesRealizados"`
	ConsideracoesTecnicoPericiais string             `json:"consideracoesTecnicoPericiais" bson:"consideracoesTecnicoPericiais"`
	ConclusaoTecnica              string             `json:"conclusaoTecnica" bson:"conclusaoTecnica"`
	CasoID                        string             `json:"casoId" bson:"casoId"`
	Evidencias                    []string           `json:"evidencias" bson:"evidencias"`
	Vitimas                       []string           `json:"vitimas" bson:"vitimas"`
	Laudos                        []string           `json:"laudos" bson:"laudos"`
	AudioURL                      string             `json:"audioURL,omitempty" bson:"audioURL,omitempty"`
	Assinado                      bool               `json:"assinado" bson:"assinado"`
	DataCriacao                   primitive.DateTime `json:"dataCriacao" bson:"dataCriacao"`
}

// RelatorioResponse is the payload returned by the relatorio generation
// endpoints, carrying the stored document plus the rendered PDF as base64.
type RelatorioResponse struct {
	Relatorio Relatorio `json:"relatorio"`
	PDF       string    `json:"pdf"`
}

// RelatorioListResponse is the paginated list payload.
type RelatorioListResponse struct {
	Data  []Relatorio `json:"data"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Total int64       `json:"total"`
}
