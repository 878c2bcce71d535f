package handlers

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/odontolegal/odontolegal-api/models"
	templates "github.com/odontolegal/odontolegal-api/templates/html"
)

// sendDocumentoAssinadoEmail notifies an examiner that a document was signed
// under their name. Delivery is best effort: signing never fails because of
// the mail provider.
func sendDocumentoAssinadoEmail(perito models.Perito, tipo, documentoID string) {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" || perito.Email == "" {
		return
	}

	subject := fmt.Sprintf("%s %s assinado", tipo, documentoID)
	from := mail.NewEmail("Plataforma OdontoLegal", "no-reply@odontolegal.app")
	to := mail.NewEmail(perito.Nome, perito.Email)
	plain := fmt.Sprintf("Olá %s,\n\nO documento %s (%s) foi assinado digitalmente em seu nome.\n\nPlataforma OdontoLegal", perito.Nome, tipo, documentoID)
	html := templates.RenderGenericEmail(subject, fmt.Sprintf(
		"<p>Olá %s,</p><p>O documento <strong>%s</strong> (<code>%s</code>) foi assinado digitalmente em seu nome.</p>",
		perito.Nome, tipo, documentoID,
	))
	msg := mail.NewSingleEmail(from, subject, to, plain, html)

	client := sendgrid.NewSendClient(apiKey)
	if _, err := client.Send(msg); err != nil {
		zap.S().Warnw("failed to send signature notification email", "perito", perito.Email, "error", err)
	}
}
