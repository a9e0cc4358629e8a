// Package pdf implementa la generación del comprobante de dispensación.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Sede + Código  │  N° Transacción + Fecha           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PACIENTE: Nombre + Documento + Prescriptor                  │
//	│  MEDICAMENTO: Nombre + Forma + Concentración                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Lote | Cant | Vencimiento | Riesgo                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Solicitado / Dispensado / Faltante                 │
//	│  FOOTER: Advertencias (vencidos / por vencer)                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
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

	"github.com/clinigo/dispensario-api/internal/application/dispensing"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 102, Blue: 84}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 180, Green: 30, Blue: 30}
	colorWarning = &props.Color{Red: 190, Green: 120, Blue: 0}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReceiptGenerator implementa dispensing.ReceiptPDFGenerator usando Maroto v2.
type MarotoReceiptGenerator struct{}

// NewMarotoReceiptGenerator construye el generador.
func NewMarotoReceiptGenerator() *MarotoReceiptGenerator { return &MarotoReceiptGenerator{} }

var _ dispensing.ReceiptPDFGenerator = (*MarotoReceiptGenerator)(nil)

// GenerateReceiptPDF genera el PDF del comprobante y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateReceiptPDF(
	_ context.Context,
	record *entity.DispenseRecord,
	medication *entity.Medication,
	location *entity.Location,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de Dispensación", true).
		WithAuthor(location.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(record, location))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(patientRow(record))
	m.AddRows(medicationRow(medication))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(record.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(record))

	m.AddRows(line.NewRow(3))
	for _, r := range warningRows(record) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: sede (izq) y transacción + fecha (der).
func headerRow(record *entity.DispenseRecord, location *entity.Location) core.Row {
	fecha := record.DispensedAt.Format("02/01/2006 15:04")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(location.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Sede: "+location.Code, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE DISPENSACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(record.TransactionID, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// patientRow: datos del paciente y prescriptor.
func patientRow(record *entity.DispenseRecord) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("PACIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(record.PatientName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Documento: %s   |   Prescriptor: %s",
				nonEmpty(record.PatientDocument, "—"),
				nonEmpty(record.PrescriberName, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// medicationRow: medicamento dispensado.
func medicationRow(medication *entity.Medication) core.Row {
	desc := medication.Name
	if medication.Concentration != "" {
		desc += " " + medication.Concentration
	}
	controlled := ""
	if medication.IsControlled {
		controlled = "   |   MEDICAMENTO CONTROLADO"
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("MEDICAMENTO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Forma: %s   |   Código: %s%s",
				desc, medication.Form, medication.Code, controlled,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de lotes.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Lote", 4, align.Left),
		h("Cantidad", 2, align.Right),
		h("Vencimiento", 3, align.Center),
		h("Riesgo", 3, align.Center),
	)
}

// tableLineRows: una fila por lote descontado.
func tableLineRows(lines []entity.DispenseLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		venc := "Sin fecha"
		if l.ExpirationDate != nil {
			venc = l.ExpirationDate.Format("02/01/2006")
		}
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(
				l.LotNumber,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				l.Quantity.String(),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				venc,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				riskLabel(l.RiskLevel),
				props.Text{Size: 8, Align: align.Center, Top: 1, Color: riskColor(l.RiskLevel)},
			)),
		))
	}
	return result
}

// totalsRow: solicitado / dispensado / faltante alineado a la derecha.
func totalsRow(record *entity.DispenseRecord) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(26).Add(
		col.New(3),
		col.New(3).Add(
			label("Solicitado:"),
			label("Faltante:"),
			grandLabel("DISPENSADO:"),
		),
		col.New(3).Add(
			value(record.QuantityRequested.String()),
			value(record.Shortfall.String()),
			grandValue(record.QuantityDispensed.String()),
		),
		col.New(3),
	)
}

// warningRows: advertencias cuando se usaron lotes vencidos o por vencer.
func warningRows(record *entity.DispenseRecord) []core.Row {
	var rows []core.Row

	if record.ExpiredOverride {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("ADVERTENCIA: esta dispensación incluyó lotes VENCIDOS bajo autorización explícita.",
				props.Text{Style: fontstyle.Bold, Size: 8, Color: colorDanger, Top: 1}),
		)))
	}
	if record.HasExpiringSoon {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Aviso: uno o más lotes dispensados están próximos a vencer. Priorice su uso.",
				props.Text{Size: 8, Color: colorWarning, Top: 1}),
		)))
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Comprobante generado por el sistema de dispensación. "+
				"Conserve este documento como soporte de entrega.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func riskLabel(level entity.RiskLevel) string {
	switch level {
	case entity.RiskExpired:
		return "VENCIDO"
	case entity.RiskExpiringSoon:
		return "POR VENCER"
	default:
		return "OK"
	}
}

func riskColor(level entity.RiskLevel) *props.Color {
	switch level {
	case entity.RiskExpired:
		return colorDanger
	case entity.RiskExpiringSoon:
		return colorWarning
	default:
		return colorGray
	}
}
