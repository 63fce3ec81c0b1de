// Package pdf genera el informe de valorización de inventario de una finca.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Finca                    │  Fecha de corte          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Insumo | Sistema | Real | Merma | Promedio | Valor   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: insumos / valor total del inventario              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: método de costeo                                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-ledger/internal/application/ledger"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 90, Blue: 50}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa ledger.ValuationPDFGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	farmName func(farmID string) string
}

// NewMarotoReportGenerator farmName resuelve el nombre a mostrar; nil muestra el ID de la finca.
func NewMarotoReportGenerator(farmName func(farmID string) string) *MarotoReportGenerator {
	if farmName == nil {
		farmName = func(id string) string { return id }
	}
	return &MarotoReportGenerator{farmName: farmName}
}

// GenerateValuationPDF genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateValuationPDF(ctx context.Context, report *ledger.ValuationReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	farm := g.farmName(report.FarmID)
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Valorización de inventario", true).
		WithAuthor(farm, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(farm, report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(report.Lines) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("La finca no tiene insumos con movimientos.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}
	for _, r := range tableDetailRows(report.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: finca (izq) y fecha de corte (der).
func headerRow(farm string, report *ledger.ValuationReport) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(farm, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Finca: "+report.FarmID, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("VALORIZACIÓN DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Corte: "+report.GeneratedAt.Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de insumos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Insumo", 3, align.Left),
		h("Sistema", 2, align.Right),
		h("Real", 2, align.Right),
		h("Merma", 1, align.Right),
		h("Promedio", 2, align.Right),
		h("Valor", 2, align.Right),
	)
}

// tableDetailRows: una fila por insumo; la merma distinta de cero se resalta.
func tableDetailRows(lines []ledger.ValuationLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		st := l.State
		unit := l.Material.Unit
		name := l.Material.Name
		if l.Material.Code != "" {
			name = l.Material.Code + " · " + name
		}
		shrinkColor := colorGray
		if !st.Shrinkage.IsZero() {
			shrinkColor = colorAlert
		}
		result = append(result, row.New(7).Add(
			col.New(3).Add(text.New(name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatQuantity(st.SystemQuantity, unit), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatQuantity(st.RealQuantity, unit), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(formatDecimal(st.Shrinkage, 2), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: shrinkColor})),
			col.New(2).Add(text.New("$"+formatDecimal(st.AveragePrice, 4), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+formatDecimal(st.StockValue, 2), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: cantidad de insumos y valor total.
func totalsRow(report *ledger.ValuationReport) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 6,
		})
	}
	return row.New(16).Add(
		col.New(6),
		col.New(3).Add(
			label(fmt.Sprintf("Insumos: %d", len(report.Lines))),
			text.New("VALOR TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Right: 2, Top: 6,
			}),
		),
		col.New(3).Add(grandValue("$"+formatDecimal(report.TotalStockValue, 2))),
	)
}

func footerRow() core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New(
			"Costo promedio ponderado sobre todas las compras registradas. "+
				"Valor = cantidad real × promedio. Merma = sistema − real.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func formatQuantity(d decimal.Decimal, unit string) string {
	s := formatDecimal(d, 2)
	if unit == "" {
		return s
	}
	return s + " " + unit
}

// formatDecimal redondea a places y usa puntos de miles y coma decimal.
// Ej: 1234567.891 con 2 → "1.234.567,89"; -25000 con 2 → "-25.000,00"
func formatDecimal(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	out := sign + formatMoney(intPart)
	if frac != "" {
		out += "," + frac
	}
	return out
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
