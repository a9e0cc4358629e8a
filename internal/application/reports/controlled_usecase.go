package reports

import (
	"context"
	"time"

	"github.com/clinigo/dispensario-api/internal/domain"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
	"github.com/clinigo/dispensario-api/internal/domain/repository"
)

// ControlledReportXMLBuilder genera el XML del reporte de sustancias
// controladas para la autoridad sanitaria.
type ControlledReportXMLBuilder interface {
	Build(period ReportPeriod, entries []ReportEntry) ([]byte, error)
}

// ReportPeriod rango reportado [From, To).
type ReportPeriod struct {
	From time.Time
	To   time.Time
}

// ReportEntry una dispensación de medicamento controlado con su medicamento
// resuelto, lista para serializar.
type ReportEntry struct {
	Record     *entity.DispenseRecord
	Medication *entity.Medication
}

// ControlledReportUseCase arma el reporte regulatorio de dispensaciones de
// medicamentos controlados en un rango de fechas.
type ControlledReportUseCase struct {
	dispenseRepo repository.DispenseRepository
	medRepo      repository.MedicationRepository
	builder      ControlledReportXMLBuilder
}

// NewControlledReportUseCase construye el caso de uso del reporte.
func NewControlledReportUseCase(
	dispenseRepo repository.DispenseRepository,
	medRepo repository.MedicationRepository,
	builder ControlledReportXMLBuilder,
) *ControlledReportUseCase {
	return &ControlledReportUseCase{
		dispenseRepo: dispenseRepo,
		medRepo:      medRepo,
		builder:      builder,
	}
}

// BuildReport devuelve el XML del reporte para el rango [from, to).
func (uc *ControlledReportUseCase) BuildReport(ctx context.Context, from, to time.Time) ([]byte, error) {
	if !from.Before(to) {
		return nil, domain.ErrInvalidRequest
	}
	records, err := uc.dispenseRepo.ListControlled(ctx, from, to)
	if err != nil {
		return nil, err
	}

	// Resolver medicamentos una sola vez por ID.
	medByID := make(map[string]*entity.Medication)
	entries := make([]ReportEntry, 0, len(records))
	for _, record := range records {
		med, ok := medByID[record.MedicationID]
		if !ok {
			med, err = uc.medRepo.GetByID(ctx, record.MedicationID)
			if err != nil || med == nil {
				return nil, domain.ErrNotFound
			}
			medByID[record.MedicationID] = med
		}
		entries = append(entries, ReportEntry{Record: record, Medication: med})
	}

	return uc.builder.Build(ReportPeriod{From: from, To: to}, entries)
}
