package pharmacy

import (
	"context"
	"sort"
	"time"

	"github.com/clinigo/dispensario-api/internal/application/dto"
	"github.com/clinigo/dispensario-api/internal/domain/fefo"
	"github.com/clinigo/dispensario-api/internal/domain/repository"
)

// Umbrales del reporte de vencimientos (días), según la política de farmacia:
// crítico dentro de 30 días, alerta dentro de 90.
const (
	expiryCriticalDays = 30
	expiryAlertDays    = 90
)

// Niveles de alerta del reporte de vencimientos.
const (
	AlertExpired  = "vencido"
	AlertCritical = "critico"
	AlertWarning  = "alerta"
)

// ExpiryReportUseCase genera el reporte de lotes próximos a vencer para una
// ubicación, priorizado por urgencia.
type ExpiryReportUseCase struct {
	lotRepo repository.LotRepository
	now     func() time.Time
}

// NewExpiryReportUseCase construye el caso de uso del reporte.
func NewExpiryReportUseCase(lotRepo repository.LotRepository) *ExpiryReportUseCase {
	return &ExpiryReportUseCase{lotRepo: lotRepo, now: time.Now}
}

// WithClock reemplaza el reloj del caso de uso (tests).
func (uc *ExpiryReportUseCase) WithClock(now func() time.Time) *ExpiryReportUseCase {
	uc.now = now
	return uc
}

// GenerateExpiringReport devuelve los lotes disponibles que vencen dentro de
// los próximos days días (o ya vencidos), con nivel de alerta y ranking de
// prioridad (1 = más urgente). locationID vacío considera todas las sedes.
func (uc *ExpiryReportUseCase) GenerateExpiringReport(ctx context.Context, locationID string, days int) ([]dto.ExpiringLotDTO, error) {
	if days <= 0 {
		days = expiryAlertDays
	}
	now := uc.now()
	until := now.AddDate(0, 0, days)

	lots, err := uc.lotRepo.ListExpiring(ctx, locationID, until)
	if err != nil {
		return nil, err
	}

	report := make([]dto.ExpiringLotDTO, 0, len(lots))
	for _, lot := range lots {
		if lot.ExpirationDate == nil {
			continue // sin vencimiento rastreado: no entra al reporte
		}
		daysLeft, _ := fefo.DaysUntilExpiry(lot.ExpirationDate, now)
		report = append(report, dto.ExpiringLotDTO{
			LotID:             lot.ID,
			LotNumber:         lot.LotNumber,
			MedicationID:      lot.MedicationID,
			LocationID:        lot.LocationID,
			ExpirationDate:    *lot.ExpirationDate,
			QuantityAvailable: lot.QuantityAvailable,
			DaysToExpiry:      daysLeft,
			AlertLevel:        alertLevel(daysLeft),
		})
	}

	// Más urgente primero: menos días restantes, desempate por número de lote.
	sort.SliceStable(report, func(i, j int) bool {
		if report[i].DaysToExpiry != report[j].DaysToExpiry {
			return report[i].DaysToExpiry < report[j].DaysToExpiry
		}
		return report[i].LotNumber < report[j].LotNumber
	})
	for i := range report {
		report[i].Priority = i + 1
	}
	return report, nil
}

func alertLevel(daysToExpiry int) string {
	switch {
	case daysToExpiry < 0:
		return AlertExpired
	case daysToExpiry <= expiryCriticalDays:
		return AlertCritical
	default:
		return AlertWarning
	}
}
