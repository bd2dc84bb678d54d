package document

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meridian-hr/meridian/internal/identity"
	"github.com/meridian-hr/meridian/internal/payroll"
)

// Renderer produces salary slip PDFs.
type Renderer interface {
	SalarySlipPDF(ctx context.Context, slip payroll.Slip, employee identity.User) ([]byte, error)
}

// PDFService renders the slip template and hands it to Gotenberg.
type PDFService struct {
	client  *Client
	company string
	address string
}

func NewPDFService(client *Client, company, address string) *PDFService {
	return &PDFService{client: client, company: company, address: address}
}

var _ Renderer = (*PDFService)(nil)

var currencyPrinter = message.NewPrinter(language.English)

func usd(v float64) string {
	return currencyPrinter.Sprintf("$%.2f", v)
}

type slipPage struct {
	Company      string
	Address      string
	Period       string
	EmployeeID   int64
	Name         string
	Email        string
	Department   string
	Position     string
	PaymentDate  string
	Basic        string
	Allowances   string
	Gross        string
	Deductions   string
	Tax          string
	Net          string
	Notes        string
	Verification string
}

// SalarySlipPDF builds the printable slip and converts it to PDF.
func (s *PDFService) SalarySlipPDF(ctx context.Context, slip payroll.Slip, employee identity.User) ([]byte, error) {
	page := slipPage{
		Company:    s.company,
		Address:    s.address,
		Period:     fmt.Sprintf("%02d/%d", slip.Month, slip.Year),
		EmployeeID: employee.ID,
		Name:       employee.FullName,
		Email:      employee.Email,
		Department: orNA(employee.Department),
		Position:   orNA(employee.Position),
		Basic:      usd(slip.BasicSalary),
		Allowances: usd(slip.Allowances),
		Gross:      usd(slip.BasicSalary + slip.Allowances),
		Deductions: usd(slip.Deductions),
		Tax:        usd(slip.Tax),
		Net:        usd(slip.NetSalary),
		Notes:      slip.Notes,
		Verification: fmt.Sprintf("Slip #%d | %s | Period %d/%d | Net %s",
			slip.ID, employee.Email, slip.Month, slip.Year, usd(slip.NetSalary)),
	}
	if slip.PaymentDate != nil {
		page.PaymentDate = slip.PaymentDate.Format("02/01/2006")
	}

	var buf bytes.Buffer
	if err := slipTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("document: render slip template: %w", err)
	}
	return s.client.RenderHTML(ctx, buf.String())
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

// AdminSlipFilename names downloads fetched by administrators.
func AdminSlipFilename(month, year int, employeeID int64) string {
	return fmt.Sprintf("salary_slip_%d_%d_emp_%d.pdf", month, year, employeeID)
}

// EmployeeSlipFilename names an employee's own download.
func EmployeeSlipFilename(month, year int) string {
	return fmt.Sprintf("salary_slip_%d_%d.pdf", month, year)
}

var slipTemplate = template.Must(template.New("salary_slip").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1f2937; margin: 40px; }
  h1 { text-align: center; font-size: 24px; }
  h2 { color: #3b82f6; font-size: 14px; margin-top: 28px; }
  table { width: 100%; border-collapse: collapse; margin-top: 8px; }
  td, th { padding: 8px; font-size: 11px; border: 0.5px solid #9ca3af; }
  th { background: #e5e7eb; text-align: left; }
  td.amount, th.amount { text-align: right; }
  tr.gross td { background: #dbeafe; font-weight: bold; }
  tr.net td { background: #d1fae5; font-weight: bold; }
  .meta td { border: none; }
  .verify { margin-top: 24px; padding: 10px; border: 1px dashed #9ca3af; font-size: 10px; }
  .footer { margin-top: 28px; text-align: center; color: #6b7280; font-size: 8px; }
</style>
</head>
<body>
<h1>SALARY SLIP</h1>
<table class="meta">
  <tr><td><b>Company:</b></td><td>{{.Company}}</td></tr>
  <tr><td><b>Address:</b></td><td>{{.Address}}</td></tr>
  <tr><td><b>Period:</b></td><td>{{.Period}}</td></tr>
</table>

<h2>Employee Information</h2>
<table>
  <tr><td><b>Employee ID</b></td><td>{{.EmployeeID}}</td></tr>
  <tr><td><b>Name</b></td><td>{{.Name}}</td></tr>
  <tr><td><b>Email</b></td><td>{{.Email}}</td></tr>
  <tr><td><b>Department</b></td><td>{{.Department}}</td></tr>
  <tr><td><b>Position</b></td><td>{{.Position}}</td></tr>
  {{if .PaymentDate}}<tr><td><b>Payment Date</b></td><td>{{.PaymentDate}}</td></tr>{{end}}
</table>

<h2>Salary Breakdown</h2>
<table>
  <tr><th>Description</th><th class="amount">Amount (USD)</th></tr>
  <tr><td>Basic Salary</td><td class="amount">{{.Basic}}</td></tr>
  <tr><td>Allowances</td><td class="amount">{{.Allowances}}</td></tr>
  <tr class="gross"><td>Gross Salary</td><td class="amount">{{.Gross}}</td></tr>
  <tr><td>Deductions</td><td class="amount">-{{.Deductions}}</td></tr>
  <tr><td>Tax</td><td class="amount">-{{.Tax}}</td></tr>
  <tr class="net"><td>Net Salary</td><td class="amount">{{.Net}}</td></tr>
</table>

{{if .Notes}}
<h2>Notes</h2>
<p>{{.Notes}}</p>
{{end}}

<div class="verify">Verification: {{.Verification}}</div>
<div class="footer">This is a computer-generated document. No signature required.</div>
</body>
</html>`))
