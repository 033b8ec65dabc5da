package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WriteBalancesPDF renders the balance summary as a one-table A4 statement.
func WriteBalancesPDF(w io.Writer, s *BalanceSummary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Balance statement", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Balance statement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", s.GeneratedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Employees with negative balance: %d", len(s.Negative)))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Total owed to employees: %s", (-s.NegativeTotal).String()))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Pending compensation: %s", s.PendingTotal.String()))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(30, 8, "ID", "1", 0, "L", false, 0, "")
	pdf.CellFormat(110, 8, "Employee", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Balance", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, b := range s.Balances {
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", b.EmployeeID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(110, 7, tr(b.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, b.Balance.String(), "1", 1, "R", false, 0, "")
	}

	return pdf.Output(w)
}
