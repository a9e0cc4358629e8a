// Package xmlreport serializa el reporte de dispensaciones de medicamentos
// controlados al formato XML que consume la autoridad sanitaria.
package xmlreport

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/clinigo/dispensario-api/internal/application/reports"
)

// Versión del esquema del reporte.
const schemaVersion = "1.0"

// ControlledReportBuilder implementa reports.ControlledReportXMLBuilder usando etree.
type ControlledReportBuilder struct{}

// NewControlledReportBuilder construye el builder.
func NewControlledReportBuilder() *ControlledReportBuilder { return &ControlledReportBuilder{} }

var _ reports.ControlledReportXMLBuilder = (*ControlledReportBuilder)(nil)

// Build serializa el reporte del período. Estructura:
//
//	<ReporteControlados version="1.0">
//	  <Periodo desde="..." hasta="..."/>
//	  <Dispensaciones total="N">
//	    <Dispensacion id="..." transaccion="..." fecha="...">
//	      <Medicamento codigo="..." nombre="..." forma="..."/>
//	      <Paciente nombre="..." documento="..."/>
//	      <Prescriptor nombre="..."/>
//	      <Cantidades solicitada="..." dispensada="..." faltante="..."/>
//	      <Lotes>
//	        <Lote numero="..." cantidad="..." vencimiento="..." riesgo="..."/>
//	      </Lotes>
//	    </Dispensacion>
//	  </Dispensaciones>
//	</ReporteControlados>
func (b *ControlledReportBuilder) Build(period reports.ReportPeriod, entries []reports.ReportEntry) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("ReporteControlados")
	root.CreateAttr("version", schemaVersion)

	periodo := root.CreateElement("Periodo")
	periodo.CreateAttr("desde", period.From.Format("2006-01-02"))
	periodo.CreateAttr("hasta", period.To.Format("2006-01-02"))

	dispensaciones := root.CreateElement("Dispensaciones")
	dispensaciones.CreateAttr("total", fmt.Sprintf("%d", len(entries)))

	for _, entry := range entries {
		record, med := entry.Record, entry.Medication

		d := dispensaciones.CreateElement("Dispensacion")
		d.CreateAttr("id", record.ID)
		d.CreateAttr("transaccion", record.TransactionID)
		d.CreateAttr("fecha", record.DispensedAt.Format("2006-01-02T15:04:05Z07:00"))

		m := d.CreateElement("Medicamento")
		m.CreateAttr("codigo", med.Code)
		m.CreateAttr("nombre", med.Name)
		m.CreateAttr("forma", med.Form)
		if med.Concentration != "" {
			m.CreateAttr("concentracion", med.Concentration)
		}

		p := d.CreateElement("Paciente")
		p.CreateAttr("nombre", record.PatientName)
		if record.PatientDocument != "" {
			p.CreateAttr("documento", record.PatientDocument)
		}

		if record.PrescriberName != "" {
			pr := d.CreateElement("Prescriptor")
			pr.CreateAttr("nombre", record.PrescriberName)
		}

		c := d.CreateElement("Cantidades")
		c.CreateAttr("solicitada", record.QuantityRequested.String())
		c.CreateAttr("dispensada", record.QuantityDispensed.String())
		c.CreateAttr("faltante", record.Shortfall.String())

		lotes := d.CreateElement("Lotes")
		for _, line := range record.Lines {
			l := lotes.CreateElement("Lote")
			l.CreateAttr("numero", line.LotNumber)
			l.CreateAttr("cantidad", line.Quantity.String())
			if line.ExpirationDate != nil {
				l.CreateAttr("vencimiento", line.ExpirationDate.Format("2006-01-02"))
			}
			l.CreateAttr("riesgo", string(line.RiskLevel))
		}
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xmlreport: serializar reporte: %w", err)
	}
	return out, nil
}
