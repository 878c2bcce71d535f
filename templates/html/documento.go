package templates

import (
	"html"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// orNA escapes a free-text field for interpolation, substituting a literal
// "N/A" when the value is absent so the documents never show blank cells.
func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return html.EscapeString(s)
}

// fmtData renders a stored timestamp as dd/mm/yyyy hh:mm, or N/A when unset.
func fmtData(dt primitive.DateTime) string {
	t := dt.Time()
	if t.IsZero() || dt == 0 {
		return "N/A"
	}
	return t.Format("02/01/2006 15:04")
}

// fmtDataCurta renders a stored timestamp as dd/mm/yyyy, or N/A when unset.
func fmtDataCurta(dt primitive.DateTime) string {
	t := dt.Time()
	if t.IsZero() || dt == 0 {
		return "N/A"
	}
	return t.Format("02/01/2006")
}

const documentoCSS = `
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 24px; color: #1f2937; }
    h1 { font-size: 22px; border-bottom: 2px solid #1e3a8a; padding-bottom: 8px; }
    h2 { font-size: 16px; color: #1e3a8a; margin-top: 28px; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { border: 1px solid #d1d5db; padding: 6px 10px; text-align: left; font-size: 13px; vertical-align: top; }
    th { background-color: #eff6ff; width: 220px; }
    img.evidencia { max-width: 400px; margin: 8px 0; border: 1px solid #d1d5db; }
    .assinatura { margin-top: 48px; border-top: 1px solid #1f2937; width: 320px; padding-top: 6px; font-size: 13px; }
    .audio { margin-top: 24px; font-size: 13px; }
`
