package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/northwind-admin/northwind-admin/internal/catalogapi"
	"github.com/northwind-admin/northwind-admin/internal/shared"
)

// HTMLRenderer converts HTML to PDF.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html []byte) ([]byte, error)
}

// PriceList renders the product price list document.
type PriceList struct {
	renderer HTMLRenderer
	tmpl     *template.Template
	now      func() time.Time
}

// PriceListRow is one line of the price list.
type PriceListRow struct {
	Product  catalogapi.Product
	Category string
	Supplier string
}

const priceListHTML = `<!doctype html>
<html><head><meta charset="utf-8"><title>Northwind price list</title>
<style>
body{font-family:sans-serif;font-size:11px}
table{width:100%;border-collapse:collapse}
th,td{border-bottom:1px solid #ccc;padding:4px;text-align:left}
td.num{text-align:right}
tr.discontinued td{color:#999}
</style></head>
<body>
<h1>Northwind price list</h1>
<p>Generated {{.GeneratedAt.Format "02 Jan 2006 15:04 MST"}} &middot; {{len .Rows}} products</p>
<table>
<thead><tr><th>#</th><th>Product</th><th>Category</th><th>Supplier</th><th>Quantity per unit</th><th>Unit price</th><th>In stock</th></tr></thead>
<tbody>
{{range .Rows}}<tr{{if .Product.Discontinued}} class="discontinued"{{end}}><td>{{.Product.ID}}</td><td>{{.Product.Name}}</td><td>{{.Category}}</td><td>{{.Supplier}}</td><td>{{.Product.QuantityPerUnit}}</td><td class="num">{{money .Product.UnitPrice}}</td><td class="num">{{.Product.UnitsInStock}}</td></tr>
{{end}}</tbody>
</table>
</body></html>`

// NewPriceList parses the price list template.
func NewPriceList(renderer HTMLRenderer) (*PriceList, error) {
	tmpl, err := template.New("pricelist").Funcs(template.FuncMap{"money": shared.FormatMoney}).Parse(priceListHTML)
	if err != nil {
		return nil, fmt.Errorf("report: parse price list: %w", err)
	}
	return &PriceList{renderer: renderer, tmpl: tmpl, now: time.Now}, nil
}

// HTML renders the document without converting it.
func (p *PriceList) HTML(rows []PriceListRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	data := struct {
		GeneratedAt time.Time
		Rows        []PriceListRow
	}{GeneratedAt: p.now().UTC(), Rows: rows}
	if err := p.tmpl.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("report: execute price list: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF renders the price list as a PDF document.
func (p *PriceList) PDF(ctx context.Context, rows []PriceListRow) ([]byte, error) {
	html, err := p.HTML(rows)
	if err != nil {
		return nil, err
	}
	pdf, err := p.renderer.RenderHTML(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("report: render price list: %w", err)
	}
	return pdf, nil
}

// Rows joins products with their category and supplier names.
func Rows(products []catalogapi.Product, categories []catalogapi.Category, suppliers []catalogapi.Supplier) []PriceListRow {
	categoryNames := make(map[int64]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}
	supplierNames := make(map[int64]string, len(suppliers))
	for _, s := range suppliers {
		supplierNames[s.ID] = s.CompanyName
	}
	rows := make([]PriceListRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, PriceListRow{Product: p, Category: categoryNames[p.CategoryID], Supplier: supplierNames[p.SupplierID]})
	}
	return rows
}
