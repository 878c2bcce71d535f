package templates

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/odontolegal/odontolegal-api/models"
)

// LaudoDocumento is everything the laudo renderer needs, already resolved.
// Assinante empty means the signature block is omitted.
type LaudoDocumento struct {
	Laudo      models.Laudo
	Vitima     models.Vitima
	Caso       models.Caso
	Perito     models.Perito
	Evidencias []models.Evidencia
	Coletores  map[string]string
	Assinante  string
	AssinadoEm time.Time
}

// RenderLaudoHTML maps a laudo snapshot into the fixed-section HTML document
// fed to the PDF exporter. All user-supplied text is escaped before
// interpolation.
func RenderLaudoHTML(doc LaudoDocumento) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="pt-BR">
<head>
  <meta charset="utf-8">
  <title>Laudo Pericial Odontológico</title>
  <style>%s</style>
</head>
<body>
  <h1>Laudo Pericial Odontológico</h1>
  <table>
    <tr><th>Identificador</th><td>%s</td></tr>
    <tr><th>Data de emissão</th><td>%s</td></tr>
    <tr><th>Perito responsável</th><td>%s</td></tr>
  </table>`,
		documentoCSS,
		orNA(doc.Laudo.ID.Hex()),
		fmtData(doc.Laudo.DataCriacao),
		orNA(doc.Perito.Nome),
	)

	fmt.Fprintf(&b, `
  <h2>Dados do Caso</h2>
  <table>
    <tr><th>Título</th><td>%s</td></tr>
    <tr><th>Referência</th><td>%s</td></tr>
    <tr><th>Status</th><td>%s</td></tr>
    <tr><th>Localidade</th><td>%s / %s</td></tr>
    <tr><th>Descrição</th><td>%s</td></tr>
    <tr><th>Data de abertura</th><td>%s</td></tr>
  </table>`,
		orNA(doc.Caso.Titulo),
		orNA(doc.Caso.CasoReferencia),
		orNA(doc.Caso.Status),
		orNA(doc.Caso.Cidade), orNA(doc.Caso.Estado),
		orNA(doc.Caso.Descricao),
		fmtDataCurta(doc.Caso.DataCriacao),
	)

	b.WriteString(renderVitimaSection(doc.Vitima, doc.Evidencias))

	fmt.Fprintf(&b, `
  <h2>Dados Antemortem</h2>
  <table><tr><td>%s</td></tr></table>
  <h2>Dados Postmortem</h2>
  <table><tr><td>%s</td></tr></table>
  <h2>Análise das Lesões</h2>
  <table><tr><td>%s</td></tr></table>
  <h2>Conclusão</h2>
  <table><tr><td>%s</td></tr></table>`,
		orNA(doc.Laudo.DadosAntemortem),
		orNA(doc.Laudo.DadosPostmortem),
		orNA(doc.Laudo.AnaliseLesoes),
		orNA(doc.Laudo.Conclusao),
	)

	b.WriteString(renderEvidenciasSection(doc.Evidencias, doc.Coletores))

	if doc.Assinante != "" {
		b.WriteString(renderAssinaturaBlock(doc.Assinante, doc.AssinadoEm))
	}

	b.WriteString("\n</body>\n</html>")
	return b.String()
}

func renderVitimaSection(v models.Vitima, evidencias []models.Evidencia) string {
	var b strings.Builder
	nome := v.Nome
	if nome == "" {
		nome = "Não identificada"
	}
	fmt.Fprintf(&b, `
  <h2>Dados da Vítima</h2>
  <table>
    <tr><th>Nome</th><td>%s</td></tr>
    <tr><th>Data de nascimento</th><td>%s</td></tr>
    <tr><th>Idade aproximada</th><td>%s</td></tr>
    <tr><th>Nacionalidade</th><td>%s</td></tr>
    <tr><th>Cidade</th><td>%s</td></tr>
    <tr><th>Sexo</th><td>%s</td></tr>
    <tr><th>Estado do corpo</th><td>%s</td></tr>
    <tr><th>Lesões</th><td>%s</td></tr>
    <tr><th>Identificada</th><td>%s</td></tr>
  </table>`,
		html.EscapeString(nome),
		orNA(v.DataNascimento),
		orNAIdade(v.IdadeAproximada),
		orNA(v.Nacionalidade),
		orNA(v.Cidade),
		orNA(v.Sexo),
		orNA(v.EstadoCorpo),
		orNA(v.Lesoes),
		simNao(v.Identificada),
	)
	// inline the image evidence collected for this victim
	for _, ev := range evidencias {
		if ev.Tipo == models.EvidenciaTipoImagem && ev.VitimaID == v.ID.Hex() && ev.ImagemURL != "" {
			fmt.Fprintf(&b, "\n  <img class=\"evidencia\" src=\"%s\" alt=\"%s\">",
				html.EscapeString(ev.ImagemURL), orNA(ev.Categoria))
		}
	}
	return b.String()
}

func renderEvidenciasSection(evidencias []models.Evidencia, coletores map[string]string) string {
	var b strings.Builder
	b.WriteString(`
  <h2>Evidências</h2>
  <table>
    <tr><th>Categoria</th><th>Tipo</th><th>Conteúdo</th><th>Data de upload</th><th>Coletada por</th></tr>`)
	for _, ev := range evidencias {
		conteudo := ev.Texto
		if ev.Tipo == models.EvidenciaTipoImagem {
			conteudo = ev.ImagemURL
		}
		coletor := coletores[ev.ColetadoPor]
		if coletor == "" {
			coletor = ev.ColetadoPor
		}
		fmt.Fprintf(&b, `
    <tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			orNA(ev.Categoria), orNA(ev.Tipo), orNA(conteudo),
			fmtData(ev.DataUpload), orNA(coletor))
	}
	b.WriteString(`
  </table>`)
	return b.String()
}

func renderAssinaturaBlock(assinante string, assinadoEm time.Time) string {
	return fmt.Sprintf(`
  <div class="assinatura">
    Assinado digitalmente por <strong>%s</strong><br>
    em %s
  </div>`, html.EscapeString(assinante), assinadoEm.Format("02/01/2006 15:04"))
}

func orNAIdade(idade int) string {
	if idade <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", idade)
}

func simNao(v bool) string {
	if v {
		return "Sim"
	}
	return "Não"
}
