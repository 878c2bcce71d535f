package templates

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odontolegal/odontolegal-api/models"
)

func laudoDocumentoFixture() LaudoDocumento {
	vitimaID := primitive.NewObjectID()
	return LaudoDocumento{
		Laudo: models.Laudo{
			ID:              primitive.NewObjectID(),
			DadosAntemortem: "prontuário odontológico disponível",
			DadosPostmortem: "arcada superior íntegra",
			AnaliseLesoes:   "fratura em incisivo central",
			Conclusao:       "identificação positiva",
			DataCriacao:     primitive.NewDateTimeFromTime(time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)),
		},
		Vitima: models.Vitima{
			ID:          vitimaID,
			Sexo:        models.SexoFeminino,
			EstadoCorpo: "esqueleto",
		},
		Caso: models.Caso{
			Titulo:         "Identificação humana",
			CasoReferencia: "CASE-001",
			Status:         models.CasoStatusEmAndamento,
		},
		Perito: models.Perito{Nome: "Dra. Helena Costa"},
		Evidencias: []models.Evidencia{
			{
				Tipo:       models.EvidenciaTipoImagem,
				Categoria:  "Radiografia Panorâmica",
				VitimaID:   vitimaID.Hex(),
				ImagemURL:  "https://res.cloudinary.com/demo/rx.png",
				DataUpload: primitive.NewDateTimeFromTime(time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)),
			},
			{
				Tipo:      models.EvidenciaTipoTexto,
				Categoria: "Análise de Prontuário",
				Texto:     "restauração em amálgama no dente 36",
			},
		},
	}
}

func TestRenderLaudoHTMLSections(t *testing.T) {
	out := RenderLaudoHTML(laudoDocumentoFixture())

	assert.Contains(t, out, "Laudo Pericial Odontológico")
	assert.Contains(t, out, "CASE-001")
	assert.Contains(t, out, "Em andamento")
	assert.Contains(t, out, "esqueleto")
	assert.Contains(t, out, "Radiografia Panorâmica")
	assert.Contains(t, out, "restauração em amálgama no dente 36")
	assert.Contains(t, out, "10/03/2024 14:30")
	// sections come in fixed order
	assert.Less(t, strings.Index(out, "Dados do Caso"), strings.Index(out, "Dados da Vítima"))
	assert.Less(t, strings.Index(out, "Dados da Vítima"), strings.Index(out, "Evidências"))
}

func TestRenderLaudoHTMLInlinesVictimImages(t *testing.T) {
	out := RenderLaudoHTML(laudoDocumentoFixture())

	assert.Contains(t, out, `<img class="evidencia" src="https://res.cloudinary.com/demo/rx.png"`)
}

func TestRenderLaudoHTMLDefaultsToNA(t *testing.T) {
	doc := LaudoDocumento{}

	out := RenderLaudoHTML(doc)

	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "Não identificada")
	assert.NotContains(t, out, "<td></td>")
}

func TestRenderLaudoHTMLSignatureBlockOnlyWhenSigned(t *testing.T) {
	doc := laudoDocumentoFixture()

	unsigned := RenderLaudoHTML(doc)
	assert.NotContains(t, unsigned, "Assinado digitalmente")

	doc.Assinante = "Dra. Helena Costa"
	doc.AssinadoEm = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	signed := RenderLaudoHTML(doc)
	assert.Contains(t, signed, "Assinado digitalmente por <strong>Dra. Helena Costa</strong>")
	assert.Contains(t, signed, "10/03/2024 15:00")
}

func TestRenderLaudoHTMLEscapesUserText(t *testing.T) {
	doc := laudoDocumentoFixture()
	doc.Caso.Descricao = `<script>alert("x")</script>`

	out := RenderLaudoHTML(doc)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRenderRelatorioHTMLSections(t *testing.T) {
	laudoDoc := laudoDocumentoFixture()
	assinatura := "token"
	doc := RelatorioDocumento{
		Relatorio: models.Relatorio{
			ID:               primitive.NewObjectID(),
			Titulo:           "Relatório do caso CASE-001",
			AnaliseTecnica:   "análise ampla",
			ConclusaoTecnica: "conclusão ampla",
			AudioURL:         "https://res.cloudinary.com/demo/audio.mp3",
		},
		Caso:       laudoDoc.Caso,
		Vitimas:    []models.Vitima{laudoDoc.Vitima},
		Evidencias: laudoDoc.Evidencias,
		Laudos: []models.Laudo{
			{ID: primitive.NewObjectID(), AssinaturaDigital: &assinatura},
		},
	}

	out := RenderRelatorioHTML(doc)

	assert.Contains(t, out, "Relatório Pericial")
	assert.Contains(t, out, "Laudos Emitidos")
	assert.Contains(t, out, "Gravação de áudio anexada")
	assert.Contains(t, out, "análise ampla")
	assert.NotContains(t, out, "Assinado digitalmente")
}

func TestRenderRelatorioHTMLOmitsOptionalBlocks(t *testing.T) {
	out := RenderRelatorioHTML(RelatorioDocumento{})

	assert.NotContains(t, out, "Laudos Emitidos")
	assert.NotContains(t, out, "Gravação de áudio anexada")
	assert.NotContains(t, out, "Assinado digitalmente")
}
