// Package pdf renders quote documents with maroto.
package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/wm-metals/trade-api/internal/domain"
)

type QuoteRenderer struct {
	companyName string
}

func NewQuoteRenderer(companyName string) *QuoteRenderer {
	return &QuoteRenderer{companyName: companyName}
}

// Render produces the PDF bytes for a quote. The quote must carry its
// customer and items.
func (r *QuoteRenderer) Render(quote *domain.Quote) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRows(r.headerRows(quote)...)
	m.AddRows(r.itemRows(quote.Items)...)
	m.AddRows(r.totalRows(quote)...)

	if quote.Notes != "" {
		m.AddRows(
			row.New(6),
			row.New(5).Add(
				col.New(12).Add(text.New("Notes", props.Text{Size: 9, Style: fontstyle.Bold})),
			),
			row.New(8).Add(
				col.New(12).Add(text.New(quote.Notes, props.Text{Size: 8})),
			),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to render quote pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func (r *QuoteRenderer) headerRows(quote *domain.Quote) []core.Row {
	customerName := ""
	if quote.Customer != nil {
		customerName = quote.Customer.Name
	}

	rows := []core.Row{
		row.New(10).Add(
			col.New(8).Add(text.New(r.companyName, props.Text{Size: 14, Style: fontstyle.Bold})),
			col.New(4).Add(text.New("Quote "+quote.Number, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right})),
		),
		row.New(6).Add(
			col.New(8).Add(text.New("Customer: "+customerName, props.Text{Size: 9})),
			col.New(4).Add(text.New("Date: "+quote.CreatedAt.Format("2006-01-02"), props.Text{Size: 9, Align: align.Right})),
		),
	}
	if quote.ValidUntil != nil {
		rows = append(rows, row.New(5).Add(
			col.New(12).Add(text.New("Valid until: "+quote.ValidUntil.Format("2006-01-02"), props.Text{Size: 9, Align: align.Right})),
		))
	}
	rows = append(rows, row.New(4), line.NewRow(2), row.New(2))
	return rows
}

func (r *QuoteRenderer) itemRows(items []domain.QuoteItem) []core.Row {
	rows := []core.Row{
		row.New(7).Add(
			col.New(5).Add(text.New("Description", props.Text{Size: 9, Style: fontstyle.Bold})),
			col.New(2).Add(text.New("Material", props.Text{Size: 9, Style: fontstyle.Bold})),
			col.New(2).Add(text.New("Qty", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right})),
			col.New(1).Add(text.New("Unit", props.Text{Size: 9, Style: fontstyle.Bold})),
			col.New(2).Add(text.New("Total", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right})),
		),
		line.NewRow(2),
	}
	for _, item := range items {
		rows = append(rows, row.New(6).Add(
			col.New(5).Add(text.New(item.Description, props.Text{Size: 8})),
			col.New(2).Add(text.New(item.Material, props.Text{Size: 8})),
			col.New(2).Add(text.New(fmt.Sprintf("%.3f", item.Quantity), props.Text{Size: 8, Align: align.Right})),
			col.New(1).Add(text.New(item.Unit, props.Text{Size: 8})),
			col.New(2).Add(text.New(fmt.Sprintf("%.2f", item.LineTotal), props.Text{Size: 8, Align: align.Right})),
		))
	}
	return rows
}

func (r *QuoteRenderer) totalRows(quote *domain.Quote) []core.Row {
	rows := []core.Row{
		row.New(2),
		line.NewRow(2),
		row.New(6).Add(
			col.New(10).Add(text.New("Subtotal", props.Text{Size: 9, Align: align.Right})),
			col.New(2).Add(text.New(fmt.Sprintf("%.2f", quote.Subtotal), props.Text{Size: 9, Align: align.Right})),
		),
	}
	if quote.Discount != 0 {
		rows = append(rows, row.New(6).Add(
			col.New(10).Add(text.New("Discount", props.Text{Size: 9, Align: align.Right})),
			col.New(2).Add(text.New(fmt.Sprintf("-%.2f", quote.Discount), props.Text{Size: 9, Align: align.Right})),
		))
	}
	rows = append(rows, row.New(7).Add(
		col.New(10).Add(text.New("Total", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})),
		col.New(2).Add(text.New(fmt.Sprintf("%.2f", quote.Total), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})),
	))
	return rows
}
