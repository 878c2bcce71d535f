package templates

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/odontolegal/odontolegal-api/models"
)

// RelatorioDocumento is everything the relatorio renderer needs, resolved.
type RelatorioDocumento struct {
	Relatorio  models.Relatorio
	Caso       models.Caso
	Vitimas    []models.Vitima
	Evidencias []models.Evidencia
	Laudos     []models.Laudo
	Coletores  map[string]string
	Assinante  string
	AssinadoEm time.Time
}

// RenderRelatorioHTML maps a relatorio snapshot into the fixed-section HTML
// document fed to the PDF exporter.
func RenderRelatorioHTML(doc RelatorioDocumento) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="pt-BR">
<head>
  <meta charset="utf-8">
  <title>Relatório Pericial</title>
  <style>%s</style>
</head>
<body>
  <h1>Relatório Pericial</h1>
  <table>
    <tr><th>Identificador</th><td>%s</td></tr>
    <tr><th>Título</th><td>%s</td></tr>
    <tr><th>Destinatário</th><td>%s</td></tr>
    <tr><th>Data de emissão</th><td>%s</td></tr>
  </table>`,
		documentoCSS,
		orNA(doc.Relatorio.ID.Hex()),
		orNA(doc.Relatorio.Titulo),
		orNA(doc.Relatorio.Destinatario),
		fmtData(doc.Relatorio.DataCriacao),
	)

	fmt.Fprintf(&b, `
  <h2>Dados do Caso</h2>
  <table>
    <tr><th>Título</th><td>%s</td></tr>
    <tr><th>Referência</th><td>%s</td></tr>
    <tr><th>Status</th><td>%s</td></tr>
    <tr><th>Localidade</th><td>%s / %s</td></tr>
    <tr><th>Descrição</th><td>%s</td></tr>
  </table>`,
		orNA(doc.Caso.Titulo),
		orNA(doc.Caso.CasoReferencia),
		orNA(doc.Caso.Status),
		orNA(doc.Caso.Cidade), orNA(doc.Caso.Estado),
		orNA(doc.Caso.Descricao),
	)

	fmt.Fprintf(&b, `
  <h2>Objeto da Perícia</h2>
  <table><tr><td>%s</td></tr></table>
  <h2>Análise Técnica</h2>
  <table><tr><td>%s</td></tr></table>
  <h2>Método Utilizado</h2>
  <table><tr><td>%s</td></tr></table>
  <h2>Materiais Utilizados</h2>
  <table><tr><td>%s</td></tr></table>
  <h2>Exames Realizados</h2>
  <table><tr><td>%s</td></tr></table>
  <h2>Considerações Técnico-Periciais</h2>
  <table><tr><td>%s</td></tr></table>
  <h2>Conclusão Técnica</h2>
  <table><tr><td>%s</td></tr></table>`,
		orNA(doc.Relatorio.ObjetoPericia),
		orNA(doc.Relatorio.AnaliseTecnica),
		orNA(doc.Relatorio.MetodoUtilizado),
		orNA(doc.Relatorio.MateriaisUtilizados),
		orNA(doc.Relatorio.ExamesRealizados),
		orNA(doc.Relatorio.ConsideracoesTecnicoPericiais),
		orNA(doc.Relatorio.ConclusaoTecnica),
	)

	for _, v := range doc.Vitimas {
		b.WriteString(renderVitimaSection(v, doc.Evidencias))
	}

	b.WriteString(renderEvidenciasSection(doc.Evidencias, doc.Coletores))

	if len(doc.Laudos) > 0 {
		b.WriteString(`
  <h2>Laudos Emitidos</h2>
  <table>
    <tr><th>Identificador</th><th>Vítima</th><th>Perito</th><th>Data</th><th>Assinado</th></tr>`)
		for _, l := range doc.Laudos {
			fmt.Fprintf(&b, `
    <tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				orNA(l.ID.Hex()), orNA(l.VitimaID), orNA(l.PeritoID),
				fmtDataCurta(l.DataCriacao), simNao(l.AssinaturaDigital != nil))
		}
		b.WriteString(`
  </table>`)
	}

	if doc.Assinante != "" {
		b.WriteString(renderAssinaturaBlock(doc.Assinante, doc.AssinadoEm))
	}

	if doc.Relatorio.AudioURL != "" {
		fmt.Fprintf(&b, `
  <div class="audio">Gravação de áudio anexada: %s</div>`, html.EscapeString(doc.Relatorio.AudioURL))
	}

	b.WriteString("\n</body>\n</html>")
	return b.String()
}
