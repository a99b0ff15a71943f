package invoice

import (
	"bytes"
	"fmt"
	"time"

	bookingModel "cylinder-booking/models/booking"
	paymentModel "cylinder-booking/models/payment"

	"github.com/jung-kurt/gofpdf"
)

// Build renders the delivery invoice PDF for a completed booking. The caller
// is expected to have preloaded User and AddressInfo on the booking.
func Build(b *bookingModel.Booking, p *paymentModel.Payment) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+b.BookingRef, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Gas Cylinder Delivery Invoice")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 7, value, "", "L", false)
	}

	row("Invoice No.", fmt.Sprintf("INV-%s", b.BookingRef))
	row("Invoice Date", time.Now().Format("02 Jan 2006"))
	row("Booking Ref", b.BookingRef)
	row("Customer", b.User.Name)
	row("Phone", b.User.Phone)

	addr := b.AddressInfo.Line1
	if b.AddressInfo.Line2 != nil && *b.AddressInfo.Line2 != "" {
		addr += ", " + *b.AddressInfo.Line2
	}
	addr += fmt.Sprintf(", %s, %s %s", b.AddressInfo.City, b.AddressInfo.State, b.AddressInfo.Pincode)
	row("Delivery Address", addr)

	if b.ReceiverName != nil && *b.ReceiverName != "" {
		row("Received By", *b.ReceiverName)
	}
	if b.DeliveredAt != nil {
		row("Delivered On", b.DeliveredAt.Format("02 Jan 2006 15:04"))
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(90, 8, "LPG Cylinder", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%d", b.Quantity), "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("Rs. %.2f", p.Amount), "1", 1, "R", false, 0, "")

	pdf.Ln(4)
	row("Payment Method", p.Method.String())
	row("Payment Status", p.Status.String())
	if p.UPITransactionID != nil && *p.UPITransactionID != "" {
		row("UPI Txn ID", *p.UPITransactionID)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}

	return buf.Bytes(), nil
}
