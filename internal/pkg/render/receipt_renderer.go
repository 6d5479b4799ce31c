package render

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// ReceiptDocument is the data handed to the renderer. Line items are
// pre-grouped by designation for annual receipts; single receipts carry
// one line.
type ReceiptDocument struct {
	ReceiptNumber string
	MemberName    string
	OrgName       string
	TaxYear       int
	IssueDate     time.Time
	Currency      string
	TotalCents    int64
	Lines         []ReceiptLine
}

type ReceiptLine struct {
	Label       string
	AmountCents int64
}

// IRenderer is the document rendering/storage collaborator. Store must be
// idempotent for the same receipt id: resubmission returns the existing
// file instead of writing a duplicate.
type IRenderer interface {
	Store(receiptId string, doc *ReceiptDocument) (string, error)
}

type htmlRenderer struct {
	storageDir string
	tmpl       *template.Template
}

func NewHTMLRenderer(storageDir string) (IRenderer, error) {
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipt storage dir: %w", err)
	}
	tmpl, err := template.New("receipt").Funcs(template.FuncMap{
		"money": func(cents int64) string {
			return fmt.Sprintf("%.2f", float64(cents)/100)
		},
	}).Parse(receiptTemplate)
	if err != nil {
		return nil, err
	}
	return &htmlRenderer{
		storageDir: storageDir,
		tmpl:       tmpl,
	}, nil
}

func (r *htmlRenderer) Store(receiptId string, doc *ReceiptDocument) (string, error) {
	path := filepath.Join(r.storageDir, receiptId+".html")

	// Same receipt id, same document: keep the first stored file.
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := r.tmpl.Execute(f, doc); err != nil {
		return "", err
	}
	return path, nil
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Receipt {{.ReceiptNumber}}</title></head>
<body style="font-family: Georgia, serif; max-width: 640px; margin: 40px auto;">
	<h1>{{.OrgName}}</h1>
	<h2>Official Donation Receipt &mdash; {{.ReceiptNumber}}</h2>
	<p>Issued to <strong>{{.MemberName}}</strong> on {{.IssueDate.Format "January 2, 2006"}}</p>
	<p>Tax year: {{.TaxYear}}</p>
	<table style="width: 100%; border-collapse: collapse;">
		{{range .Lines}}
		<tr>
			<td style="border-bottom: 1px solid #ccc; padding: 6px;">{{.Label}}</td>
			<td style="border-bottom: 1px solid #ccc; padding: 6px; text-align: right;">{{$.Currency}} {{money .AmountCents}}</td>
		</tr>
		{{end}}
		<tr>
			<td style="padding: 6px;"><strong>Total</strong></td>
			<td style="padding: 6px; text-align: right;"><strong>{{.Currency}} {{money .TotalCents}}</strong></td>
		</tr>
	</table>
</body>
</html>
`
