// internal/pdf/receipt.go
package pdf

import (
	"bytes"
	"fmt"
	"io"

	"hesabu-service/internal/domain/business"
	"hesabu-service/internal/domain/customer"
	"hesabu-service/internal/domain/invoice"
	"hesabu-service/internal/domain/payment"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GenerateReceipt renders a receipt for a successful payment against an
// invoice, including the M-Pesa reference when present.
func GenerateReceipt(biz *business.Business, cust *customer.Customer, inv *invoice.Invoice, p *payment.Payment) (io.Reader, error) {
	m := newDocument()

	m.AddRow(12,
		text.NewCol(12, "Payment Receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	meta := col.New(6).Add(
		text.New("Invoice number: "+inv.InvoiceNumber, props.Text{Top: 0}),
		text.New("Date paid: "+p.UpdatedAt.Format(dateFormat), props.Text{Top: 4}),
		text.New("Payment method: "+string(p.Method), props.Text{Top: 8}),
	)
	if p.MpesaReference.Valid {
		meta.Add(text.New("Reference: "+p.MpesaReference.String, props.Text{Top: 12}))
	}
	m.AddRow(20, meta, col.New(6))

	m.AddRow(36,
		col.New(6).Add(businessLines(biz)...),
		col.New(6).Add(
			text.New("Received from", props.Text{Style: fontstyle.Bold}),
			text.New(cust.Name, props.Text{Top: 5}),
			text.New(cust.Email, props.Text{Top: 9}),
		),
	)

	m.AddRow(14,
		text.NewCol(12, "Amount paid: KES "+p.Amount.StringFixed(2), props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   3,
		}),
	)

	addTotalRow(m, "Invoice total", inv.GrandTotal.StringFixed(2), false)
	addTotalRow(m, "Balance remaining", inv.Balance.StringFixed(2), true)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt pdf: %w", err)
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
