// internal/pdf/invoice.go
package pdf

import (
	"bytes"
	"fmt"
	"io"

	"hesabu-service/internal/domain/business"
	"hesabu-service/internal/domain/customer"
	"hesabu-service/internal/domain/invoice"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const dateFormat = "02 Jan 2006"

func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	return maroto.New(cfg)
}

// GenerateInvoice renders a customer-facing invoice PDF.
func GenerateInvoice(biz *business.Business, cust *customer.Customer, inv *invoice.WithItems) (io.Reader, error) {
	m := newDocument()

	m.AddRow(12,
		text.NewCol(8, "Invoice "+inv.InvoiceNumber, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, string(inv.Status), props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
			Top:   3,
		}),
	)

	m.AddRow(16,
		col.New(6).Add(
			text.New("Date of issue: "+inv.InvoiceDate.Format(dateFormat), props.Text{Top: 0}),
			text.New("Date due: "+inv.DueDate.Format(dateFormat), props.Text{Top: 4}),
		),
		col.New(6),
	)

	m.AddRow(36,
		col.New(6).Add(businessLines(biz)...),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(cust.Name, props.Text{Top: 5}),
			text.New(cust.Email, props.Text{Top: 9}),
			text.New(cust.Address.String, props.Text{Top: 13}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range inv.Items {
		m.AddRow(8,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, item.Quantity.String(), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.LineTotal.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		)
	}

	addTotalRow(m, "Subtotal", inv.Subtotal.StringFixed(2), false)
	addTotalRow(m, "VAT", inv.VATTotal.StringFixed(2), false)
	addTotalRow(m, "Total", inv.GrandTotal.StringFixed(2), true)
	addTotalRow(m, "Balance due", inv.Balance.StringFixed(2), true)

	if inv.Notes.Valid {
		m.AddRow(20, text.NewCol(12, inv.Notes.String, props.Text{Size: 9, Top: 5}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice pdf: %w", err)
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func addTotalRow(m core.Maroto, label, amount string, bold bool) {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, label, props.Text{Size: 9, Style: style}),
		text.NewCol(2, amount, props.Text{Size: 9, Style: style, Align: align.Right}),
	)
}

func businessLines(biz *business.Business) []core.Component {
	lines := []core.Component{
		text.New(biz.Name, props.Text{Style: fontstyle.Bold}),
	}
	top := 5.0
	for _, s := range []string{biz.Address.String, biz.Phone.String, biz.Email.String} {
		if s == "" {
			continue
		}
		lines = append(lines, text.New(s, props.Text{Top: top}))
		top += 4
	}
	if biz.KRAPin.Valid {
		lines = append(lines, text.New("PIN: "+biz.KRAPin.String, props.Text{Top: top}))
	}
	return lines
}
