package reportservice

import (
	"fmt"
	"html/template"
	"io"

	"stockdesk/internal/domain"
)

var reportTemplate = template.Must(template.New("withdrawal-report").Funcs(template.FuncMap{
	"currency":      FormatCurrency,
	"company":       FormatCompanyName,
	"date":          FormatDate,
	"transliterate": Transliterate,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Withdrawal Report {{.DocumentNumber}}</title>
<style>
  body { font-family: sans-serif; margin: 2cm; }
  .header { text-align: center; margin-bottom: 20px; }
  table { width: 100%; border-collapse: collapse; margin-top: 20px; }
  th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
  th { background-color: #f8f9fa; font-weight: bold; }
  .num { text-align: right; }
  .total { text-align: right; font-weight: bold; margin-top: 20px; }
  .notes { margin-top: 20px; }
  @media print { @page { margin: 2cm; } }
</style>
</head>
<body>
<div class="header"><h2>Withdrawal Report</h2></div>
<div class="document-info">
  <p><strong>Document No:</strong> {{.DocumentNumber}}</p>
  <p><strong>Date:</strong> {{date .Date}}</p>
  <p><strong>Location:</strong> {{company .Location}}</p>
  <p><strong>Withdrawn by:</strong> {{transliterate .Username}}</p>
</div>
<table>
  <thead>
    <tr><th>Product</th><th class="num">Quantity</th><th class="num">Unit Price</th><th class="num">Total</th></tr>
  </thead>
  <tbody>
{{- range .Items}}
    <tr><td>{{.ProductName}}</td><td class="num">{{.Quantity}}</td><td class="num">{{currency .UnitPrice}}</td><td class="num">{{currency .Total}}</td></tr>
{{- end}}
  </tbody>
</table>
<div class="total">Total Amount: {{currency .Total}}</div>
{{- if .Description}}
<div class="notes"><strong>Notes:</strong><p>{{.Description}}</p></div>
{{- end}}
</body>
</html>
`))

// RenderBill escreve o relatório de baixa imprimível (HTML) do documento.
func RenderBill(w io.Writer, bill domain.Bill) error {
	if err := reportTemplate.Execute(w, bill); err != nil {
		return fmt.Errorf("falha ao renderizar o relatório %s: %w", bill.DocumentNumber, err)
	}
	return nil
}
