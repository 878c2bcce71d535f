package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odontolegal/odontolegal-api/models"
	"github.com/odontolegal/odontolegal-api/pipeline"
)

func TestResumoLaudo(t *testing.T) {
	coletorID := primitive.NewObjectID()
	snap := &pipeline.LaudoSnapshot{
		Caso: models.Caso{Titulo: "Ossada na mata", CasoReferencia: "REF-1", Status: models.CasoStatusEmAndamento, Cidade: "Recife", Estado: "PE"},
		Vitima: models.Vitima{
			Nome: "", Sexo: models.SexoFeminino, IdadeAproximada: 30,
			EstadoCorpo: "esqueleto", Lesoes: "fratura no maxilar",
		},
		Evidencias: []models.Evidencia{
			{Tipo: models.EvidenciaTipoTexto, Categoria: "Radiografia Panorâmica", Texto: "ausência do dente 38", ColetadoPor: coletorID.Hex()},
		},
		Coletores: map[string]string{coletorID.Hex(): "Dra. Costa"},
	}

	resumo := pipeline.ResumoLaudo(snap)

	assert.Contains(t, resumo, "Ossada na mata")
	assert.Contains(t, resumo, "não identificada")
	assert.Contains(t, resumo, "fratura no maxilar")
	assert.Contains(t, resumo, "ausência do dente 38")
	assert.Contains(t, resumo, "Dra. Costa")
}

func TestResumoRelatorio(t *testing.T) {
	snap := &pipeline.RelatorioSnapshot{
		Caso:    models.Caso{Titulo: "Desastre aéreo", CasoReferencia: "REF-2"},
		Vitimas: []models.Vitima{{Nome: "Maria"}, {Nome: ""}},
		Laudos:  []models.Laudo{{ID: primitive.NewObjectID()}},
		Evidencias: []models.Evidencia{
			{Tipo: models.EvidenciaTipoImagem, Categoria: "Fotografia Intraoral", ImagemURL: "https://res.cloudinary.com/x.png"},
		},
	}

	resumo := pipeline.ResumoRelatorio(snap)

	assert.Contains(t, resumo, "Desastre aéreo")
	assert.Contains(t, resumo, "Vítimas relacionadas: 2")
	assert.Contains(t, resumo, "Maria")
	assert.Contains(t, resumo, "Laudos já emitidos: 1")
	assert.Contains(t, resumo, "https://res.cloudinary.com/x.png")
}
