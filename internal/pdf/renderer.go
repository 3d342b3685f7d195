// Package pdf renders invoices with Maroto v2. Three layouts are offered:
//
//	standard: helvetica, navy accents, plain header
//	modern:   helvetica, teal accents, heavier rules
//	elegant:  times, muted gold accents
//
// Layout of the A4 page:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: issuer name + registry  │  invoice number + dates  │
//	│  ───────────────────────────────────────────────────────────│
//	│  BILL TO: client name, registry code, address, contact      │
//	│  ───────────────────────────────────────────────────────────│
//	│  TABLE: Description | Qty | Unit price | Line total         │
//	│  ───────────────────────────────────────────────────────────│
//	│  TOTALS: subtotal / VAT / total due                         │
//	│  FOOTER: payment terms                                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/tkallas/arved/internal/models"
)

// Template is one of the offered invoice layouts.
type Template string

const (
	TemplateStandard Template = "standard"
	TemplateModern   Template = "modern"
	TemplateElegant  Template = "elegant"
)

// Valid reports whether t names a known layout.
func (t Template) Valid() bool {
	switch t {
	case TemplateStandard, TemplateModern, TemplateElegant:
		return true
	}
	return false
}

// ResolveTemplate picks the layout: explicit request first, then the
// company default, then standard.
func ResolveTemplate(requested, companyDefault string) Template {
	if t := Template(requested); t.Valid() {
		return t
	}
	if t := Template(companyDefault); t.Valid() {
		return t
	}
	return TemplateStandard
}

type style struct {
	font      string
	accent    *props.Color
	gray      *props.Color
	ruleWidth float64
}

var styles = map[Template]style{
	TemplateStandard: {
		font:      "helvetica",
		accent:    &props.Color{Red: 0, Green: 51, Blue: 102},
		gray:      &props.Color{Red: 100, Green: 100, Blue: 100},
		ruleWidth: 0.3,
	},
	TemplateModern: {
		font:      "helvetica",
		accent:    &props.Color{Red: 0, Green: 128, Blue: 128},
		gray:      &props.Color{Red: 80, Green: 80, Blue: 80},
		ruleWidth: 0.8,
	},
	TemplateElegant: {
		font:      "times",
		accent:    &props.Color{Red: 140, Green: 110, Blue: 45},
		gray:      &props.Color{Red: 110, Green: 105, Blue: 95},
		ruleWidth: 0.3,
	},
}

// Renderer produces invoice PDFs.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// Render builds the PDF for an invoice. The invoice must come with its
// client and lines resolved; company is the issuer block.
func (r *Renderer) Render(inv *models.Invoice, company *models.CompanySettings, tpl Template) ([]byte, error) {
	st, ok := styles[tpl]
	if !ok {
		st = styles[TemplateStandard]
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: st.font, Size: 9}).
		WithTitle("Invoice "+inv.Number, true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(inv, company, st))
	m.AddRows(line.NewRow(2, props.Line{Color: st.accent, Thickness: st.ruleWidth}))
	m.AddRows(billToRow(inv.Client, st))
	m.AddRows(line.NewRow(2, props.Line{Color: st.accent, Thickness: st.ruleWidth}))

	m.AddRows(tableHeaderRow(st))
	for _, l := range inv.Lines {
		m.AddRows(lineRow(l, st))
	}

	m.AddRows(line.NewRow(2, props.Line{Color: st.accent, Thickness: st.ruleWidth}))
	m.AddRows(totalsRows(inv, st)...)

	if company.InvoiceTerms != "" {
		m.AddRows(line.NewRow(4))
		m.AddRows(row.New(10).Add(
			col.New(12).Add(
				text.New(company.InvoiceTerms, props.Text{Size: 8, Color: st.gray}),
			),
		))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(inv *models.Invoice, company *models.CompanySettings, st style) core.Row {
	issuer := company.Name
	registry := ""
	if company.RegistryCode != "" {
		registry = "Reg. code: " + company.RegistryCode
	}
	if company.VATNumber != "" {
		if registry != "" {
			registry += "  ·  "
		}
		registry += "VAT: " + company.VATNumber
	}

	return row.New(20).Add(
		col.New(7).Add(
			text.New(issuer, props.Text{Style: fontstyle.Bold, Size: 14, Color: st.accent, Top: 1}),
			text.New(registry, props.Text{Size: 8, Top: 9, Color: st.gray}),
			text.New(company.Address, props.Text{Size: 8, Top: 13, Color: st.gray}),
		),
		col.New(5).Add(
			text.New("INVOICE", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: st.accent, Top: 1}),
			text.New(inv.Number, props.Text{Style: fontstyle.Bold, Size: 13, Align: align.Right, Top: 6}),
			text.New("Issued: "+inv.IssueDate.Format("2006-01-02"), props.Text{Size: 8, Align: align.Right, Top: 13, Color: st.gray}),
			text.New("Due: "+inv.DueDate.Format("2006-01-02"), props.Text{Size: 8, Align: align.Right, Top: 17, Color: st.gray}),
		),
	)
}

func billToRow(client *models.Client, st style) core.Row {
	name := ""
	registry := ""
	address := ""
	contact := ""
	if client != nil {
		name = client.Name
		if client.RegistryCode != "" {
			registry = "Reg. code: " + client.RegistryCode
		}
		address = client.Address
		if client.Email != "" {
			contact = client.Email
		}
		if client.Phone != "" {
			if contact != "" {
				contact += "  ·  "
			}
			contact += client.Phone
		}
	}
	return row.New(18).Add(
		col.New(12).Add(
			text.New("BILL TO", props.Text{Style: fontstyle.Bold, Size: 8, Color: st.gray, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 5}),
			text.New(registry, props.Text{Size: 8, Top: 10, Color: st.gray}),
			text.New(address, props.Text{Size: 8, Top: 14, Color: st.gray}),
			text.New(contact, props.Text{Size: 8, Top: 14, Left: 90, Color: st.gray}),
		),
	)
}

func tableHeaderRow(st style) core.Row {
	h := props.Text{Style: fontstyle.Bold, Size: 8, Color: st.accent}
	hr := props.Text{Style: fontstyle.Bold, Size: 8, Color: st.accent, Align: align.Right}
	return row.New(6).Add(
		col.New(6).Add(text.New("Description", h)),
		col.New(2).Add(text.New("Qty", hr)),
		col.New(2).Add(text.New("Unit price", hr)),
		col.New(2).Add(text.New("Total", hr)),
	)
}

func lineRow(l models.InvoiceLine, st style) core.Row {
	c := props.Text{Size: 9}
	cr := props.Text{Size: 9, Align: align.Right}
	return row.New(6).Add(
		col.New(6).Add(text.New(l.Description, c)),
		col.New(2).Add(text.New(l.Qty.String(), cr)),
		col.New(2).Add(text.New(l.UnitPrice.StringFixed(2), cr)),
		col.New(2).Add(text.New(l.LineTotal.StringFixed(2), cr)),
	)
}

func totalsRows(inv *models.Invoice, st style) []core.Row {
	label := props.Text{Size: 9, Align: align.Right, Color: st.gray}
	value := props.Text{Size: 9, Align: align.Right}
	vatLabel := fmt.Sprintf("VAT (%s%%)", inv.EffectiveVatRate().String())
	return []core.Row{
		row.New(5).Add(
			col.New(8),
			col.New(2).Add(text.New("Subtotal", label)),
			col.New(2).Add(text.New(inv.Subtotal.StringFixed(2), value)),
		),
		row.New(5).Add(
			col.New(8),
			col.New(2).Add(text.New(vatLabel, label)),
			col.New(2).Add(text.New(inv.VATAmount().StringFixed(2), value)),
		),
		row.New(7).Add(
			col.New(8),
			col.New(2).Add(text.New("TOTAL DUE", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: st.accent})),
			col.New(2).Add(text.New(inv.Total.StringFixed(2), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: st.accent})),
		),
	}
}
