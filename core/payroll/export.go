package payroll

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/louisFankam/edumali-sub000/core"
)

// RenderRecap renders the monthly salary recap document handed to the
// operator alongside the export record.
func RenderRecap(schoolName, monthKey string, lines []SalaryLine) (core.Attachment, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 8, tr(schoolName))
	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 7, tr("Récapitulatif des salaires - "+monthKey))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(40, 145, 108)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(70, 8, tr("ENSEIGNANT"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, tr("CONTRAT"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, tr("HEURES"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, tr("MAJORATION"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, tr("MONTANT"), "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(0, 0, 0)
	var total float64
	for _, line := range lines {
		pdf.CellFormat(70, 7, tr(line.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, tr(line.Contract), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.1f", line.HoursWorked), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.0f", line.Majoration), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.0f", line.Amount), "1", 1, "R", false, 0, "")
		total += line.Amount
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(150, 8, tr("TOTAL"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.0f", total), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return core.Attachment{}, err
	}
	return core.Attachment{
		Content:     &buf,
		ContentType: "application/pdf",
		Filename:    "salaires-" + monthKey + ".pdf",
	}, nil
}
