package http

import (
	"embed"
	"html/template"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/i18n"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Active navigation icons
const (
	activeBills   = "bills"
	activeNewBill = "new"
)

// loadTemplates parses the embedded page templates
func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"t": i18n.T,
	}
	return template.Must(template.New("billed").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
}

type page struct {
	Lang   string
	Active string
}

type billsPage struct {
	page
	Bills []*entity.BillView
}

type proofPage struct {
	page
	Modal *entity.ProofModal
}

type newBillPage struct {
	page
	ExpenseTypes []string
	Form         entity.BillForm
	FileInput    entity.FileInputState
	Message      string
}

type errorPage struct {
	page
	Error string
}
