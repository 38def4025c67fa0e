// internal/pkg/receipt/service.go
package receipt

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-backend/internal/config"
)

// Service renders payment receipts as PDF
type Service struct {
	config *config.Config
}

// NewService creates a new receipt service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// LineItem is one purchased cart line on the receipt.
type LineItem struct {
	ProductName string
	Size        string
	Quantity    int
	UnitPrice   int64
	Subtotal    int64
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	Reference     string
	Date          string
	CustomerName  string
	CustomerEmail string
	Items         []LineItem
	Total         int64
	StoreName     string
}

// GenerateReceipt renders a settled payment into a PDF receipt.
func (s *Service) GenerateReceipt(data ReceiptData) (*bytes.Buffer, error) {
	if data.Date == "" {
		data.Date = time.Now().Format("January 2, 2006")
	}
	if data.StoreName == "" {
		data.StoreName = s.config.App.Name
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

func (s *Service) generateHTML(data ReceiptData) (string, error) {
	tmpl := template.Must(template.New("receipt").Parse(receiptTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// Receipt HTML template
const receiptTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.Reference}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
            margin-bottom: 30px;
        }
        .store-name {
            font-size: 28px;
            font-weight: bold;
            color: #2563eb;
        }
        .meta td {
            padding: 4px 12px 4px 0;
        }
        .meta .label {
            font-weight: bold;
        }
        table.items {
            width: 100%;
            border-collapse: collapse;
            margin-top: 20px;
        }
        table.items th {
            text-align: left;
            border-bottom: 1px solid #ccc;
            padding: 8px 4px;
        }
        table.items td {
            padding: 8px 4px;
            border-bottom: 1px solid #eee;
        }
        .total-row td {
            font-weight: bold;
            border-top: 2px solid #ccc;
        }
    </style>
</head>
<body>
    <div class="header">
        <div class="store-name">{{.StoreName}}</div>
        <div>Payment Receipt</div>
    </div>
    <table class="meta">
        <tr><td class="label">Reference</td><td>{{.Reference}}</td></tr>
        <tr><td class="label">Date</td><td>{{.Date}}</td></tr>
        <tr><td class="label">Customer</td><td>{{.CustomerName}} ({{.CustomerEmail}})</td></tr>
    </table>
    <table class="items">
        <tr>
            <th>Product</th>
            <th>Size</th>
            <th>Qty</th>
            <th>Unit Price</th>
            <th>Subtotal</th>
        </tr>
        {{range .Items}}
        <tr>
            <td>{{.ProductName}}</td>
            <td>{{.Size}}</td>
            <td>{{.Quantity}}</td>
            <td>{{.UnitPrice}}</td>
            <td>{{.Subtotal}}</td>
        </tr>
        {{end}}
        <tr class="total-row">
            <td colspan="4">Total</td>
            <td>{{.Total}}</td>
        </tr>
    </table>
</body>
</html>
`
