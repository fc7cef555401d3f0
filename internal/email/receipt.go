package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// ReceiptInfo is the data rendered into a payment receipt.
type ReceiptInfo struct {
	StoreName     string
	OrderID       string
	CustomerName  string
	CustomerEmail string
	Items         []ReceiptItem
	Original      string
	Discount      string
	Total         string
}

type ReceiptItem struct {
	Name     string
	Quantity int
	Options  string
	Amount   string
}

var (
	receiptText = texttemplate.Must(texttemplate.New("receipt_text").Parse(receiptTextTemplate))
	receiptHTML = htmltemplate.Must(htmltemplate.New("receipt_html").Parse(receiptHTMLTemplate))
)

// RenderReceipt builds the receipt email for a captured payment.
func RenderReceipt(info *ReceiptInfo) (*Email, error) {
	if info == nil {
		return nil, fmt.Errorf("receipt info is required")
	}
	var textBuf, htmlBuf bytes.Buffer
	if err := receiptText.Execute(&textBuf, info); err != nil {
		return nil, fmt.Errorf("failed to render text receipt: %w", err)
	}
	if err := receiptHTML.Execute(&htmlBuf, info); err != nil {
		return nil, fmt.Errorf("failed to render HTML receipt: %w", err)
	}
	return &Email{
		To:      info.CustomerEmail,
		Subject: fmt.Sprintf("Payment received - %s", info.StoreName),
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	}, nil
}

const receiptTextTemplate = `Hi {{if .CustomerName}}{{.CustomerName}}{{else}}there{{end}},

Thank you for shopping with {{.StoreName}}. We have received your payment.

Order: {{.OrderID}}
{{range .Items}}
- {{.Name}} (Qty: {{.Quantity}}){{if .Options}} {{.Options}}{{end}}: {{.Amount}}{{end}}

Original Total: {{.Original}}
50% Discount: -{{.Discount}}
Paid: {{.Total}}

We will be in touch about delivery.
`

const receiptHTMLTemplate = `<p>Hi {{if .CustomerName}}{{.CustomerName}}{{else}}there{{end}},</p>
<p>Thank you for shopping with {{.StoreName}}. We have received your payment.</p>
<p><strong>Order:</strong> {{.OrderID}}</p>
<ul>
{{range .Items}}<li>{{.Name}} (Qty: {{.Quantity}}){{if .Options}} {{.Options}}{{end}}: {{.Amount}}</li>
{{end}}</ul>
<p>Original Total: <s>{{.Original}}</s><br>50% Discount: -{{.Discount}}<br><strong>Paid: {{.Total}}</strong></p>
<p>We will be in touch about delivery.</p>
`
