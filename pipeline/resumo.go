package pipeline

import (
	"fmt"
	"strings"

	"github.com/odontolegal/odontolegal-api/models"
)

// ResumoLaudo builds the fixed-format natural-language summary sent to the
// narrative enricher for a laudo.
func ResumoLaudo(snap *LaudoSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Caso: %s (referência %s, status %s, %s/%s)\n",
		snap.Caso.Titulo, snap.Caso.CasoReferencia, snap.Caso.Status, snap.Caso.Cidade, snap.Caso.Estado)
	fmt.Fprintf(&b, "Descrição do caso: %s\n", snap.Caso.Descricao)
	fmt.Fprintf(&b, "Vítima: %s, sexo %s, idade aproximada %d, estado do corpo %s, identificada: %t\n",
		nomeOuDesconhecida(snap.Vitima), snap.Vitima.Sexo, snap.Vitima.IdadeAproximada,
		snap.Vitima.EstadoCorpo, snap.Vitima.Identificada)
	if snap.Vitima.Lesoes != "" {
		fmt.Fprintf(&b, "Lesões observadas: %s\n", snap.Vitima.Lesoes)
	}
	b.WriteString("Evidências coletadas:\n")
	escreverEvidencias(&b, snap.Evidencias, snap.Coletores)
	return b.String()
}

// ResumoRelatorio builds the case-level summary for a relatorio.
func ResumoRelatorio(snap *RelatorioSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Caso: %s (referência %s, status %s, %s/%s)\n",
		snap.Caso.Titulo, snap.Caso.CasoReferencia, snap.Caso.Status, snap.Caso.Cidade, snap.Caso.Estado)
	fmt.Fprintf(&b, "Descrição do caso: %s\n", snap.Caso.Descricao)
	fmt.Fprintf(&b, "Vítimas relacionadas: %d\n", len(snap.Vitimas))
	for _, v := range snap.Vitimas {
		fmt.Fprintf(&b, "- %s, sexo %s, estado do corpo %s, identificada: %t\n",
			nomeOuDesconhecida(v), v.Sexo, v.EstadoCorpo, v.Identificada)
	}
	fmt.Fprintf(&b, "Laudos já emitidos: %d\n", len(snap.Laudos))
	b.WriteString("Evidências coletadas:\n")
	escreverEvidencias(&b, snap.Evidencias, snap.Coletores)
	return b.String()
}

func escreverEvidencias(b *strings.Builder, evidencias []models.Evidencia, coletores map[string]string) {
	for _, ev := range evidencias {
		conteudo := ev.Texto
		if ev.Tipo == models.EvidenciaTipoImagem {
			conteudo = ev.ImagemURL
		}
		coletor := coletores[ev.ColetadoPor]
		if coletor == "" {
			coletor = ev.ColetadoPor
		}
		fmt.Fprintf(b, "- [%s/%s] %s (coletada em %s por %s)\n",
			ev.Categoria, ev.Tipo, conteudo, ev.DataUpload.Time().Format("02/01/2006"), coletor)
	}
}

func nomeOuDesconhecida(v models.Vitima) string {
	if v.Nome == "" {
		return "não identificada"
	}
	return v.Nome
}
