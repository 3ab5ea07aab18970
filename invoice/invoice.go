// Package invoice renders donation receipts as PDF.
package invoice

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/Govind-619/CareFund/models"
	"github.com/jung-kurt/gofpdf"
)

// ErrNotPaid is returned for donations whose payment is not yet in escrow.
var ErrNotPaid = errors.New("donation has not been paid")

// Render returns the PDF receipt for a paid donation. txn may be nil.
func Render(d *models.Donation, txn *models.Transaction) ([]byte, error) {
	if d.PaymentStatus != models.PaymentStatusEscrowCompleted {
		return nil, ErrNotPaid
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "CareFund - Do Good Hub")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, "Email: support@carefund.org")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "DONATION RECEIPT")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(90, 8, "Invoice No: "+d.InvoiceNumber)
	pdf.Cell(90, 8, "Date: "+d.CreatedAt.Format("2006-01-02 15:04:05"))
	pdf.Ln(8)
	pdf.Cell(90, 8, "Payment ID: "+d.TransactionID)
	pdf.Cell(90, 8, "Delivery: "+string(d.ServiceStatus))
	pdf.Ln(8)
	if txn != nil {
		pdf.Cell(90, 8, "Escrow: "+string(txn.Status))
		pdf.Ln(8)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(80, 8, "Package", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Price (INR)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Total (INR)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(80, 8, d.PackageTitle, "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, strconv.Itoa(d.Quantity), "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", d.PackageAmount), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", d.TotalAmount), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 12)
	pdf.MultiCell(0, 8, "Funds are held in escrow and released to the NGO only after delivery is confirmed.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return buf.Bytes(), nil
}
