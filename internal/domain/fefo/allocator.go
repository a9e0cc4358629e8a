// Package fefo implementa el motor de asignación de lotes FEFO
// (First-Expired-First-Out) para la dispensación de medicamentos.
//
// El motor es una transformación pura: recibe una foto de los lotes
// candidatos y devuelve un plan de asignación. No lee ni escribe stock;
// confirmar los descuentos es responsabilidad del flujo de dispensación
// (internal/application/dispensing), que revalida disponibilidad dentro de
// la transacción y puede re-ejecutar el motor de forma idempotente.
package fefo

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clinigo/dispensario-api/internal/domain"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
)

// Request es la entrada del motor de asignación.
type Request struct {
	MedicationID         string
	LocationID           string
	QuantityRequested    decimal.Decimal
	WarningHorizonDays   int  // horizonte de alerta de vencimiento, en días
	AllowExpiredOverride bool // autoriza dispensar lotes vencidos (queda marcado en el plan)
}

// Allocate ordena los candidatos por FEFO y asigna de forma voraz hasta cubrir
// la cantidad solicitada. El faltante no es un error: se reporta en
// Plan.Shortfall y el llamador decide la política (dispensación parcial,
// pedido pendiente, alerta).
//
// Orden de asignación: lotes con vencimiento, ascendente por fecha con
// desempate por número de lote; después los lotes sin vencimiento, por número
// de lote. El orden total garantiza planes idénticos para entradas idénticas.
//
// Falla con domain.ErrInvalidRequest si la cantidad no es positiva o faltan
// identificadores, y con domain.ExpiredLotBlockedError si el plan usa lotes
// vencidos sin autorización.
func Allocate(req Request, candidates []entity.Lot, reference time.Time) (*entity.AllocationPlan, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	ordered := orderCandidates(candidates)

	plan := &entity.AllocationPlan{
		Lines:             []entity.AllocationLine{},
		QuantityRequested: req.QuantityRequested,
	}

	remaining := req.QuantityRequested
	for _, lot := range ordered {
		if remaining.IsZero() {
			break
		}
		take := decimal.Min(remaining, lot.QuantityAvailable)
		plan.Lines = append(plan.Lines, entity.AllocationLine{
			LotID:             lot.ID,
			LotNumber:         lot.LotNumber,
			QuantityAllocated: take,
			ExpirationDate:    lot.ExpirationDate,
			RiskLevel:         Classify(lot.ExpirationDate, reference, req.WarningHorizonDays),
		})
		plan.QuantityAllocatedTotal = plan.QuantityAllocatedTotal.Add(take)
		remaining = remaining.Sub(take)
	}
	plan.Shortfall = remaining

	if err := Validate(plan, req.AllowExpiredOverride); err != nil {
		return nil, err
	}
	return plan, nil
}

func validateRequest(req Request) error {
	if req.MedicationID == "" || req.LocationID == "" {
		return domain.ErrInvalidRequest
	}
	if !req.QuantityRequested.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidRequest
	}
	if req.WarningHorizonDays < 0 {
		return domain.ErrInvalidRequest
	}
	return nil
}

// orderCandidates devuelve los lotes asignables en orden FEFO: con vencimiento
// primero (ascendente por fecha, desempate por número de lote) y sin
// vencimiento al final (por número de lote). Los lotes sin cantidad disponible
// o fuera del estado disponible se excluyen.
func orderCandidates(candidates []entity.Lot) []entity.Lot {
	dated := make([]entity.Lot, 0, len(candidates))
	undated := make([]entity.Lot, 0)
	for _, lot := range candidates {
		if !lot.IsAllocatable() {
			continue
		}
		if lot.ExpirationDate != nil {
			dated = append(dated, lot)
		} else {
			undated = append(undated, lot)
		}
	}

	sort.SliceStable(dated, func(i, j int) bool {
		a, b := dateOnly(*dated[i].ExpirationDate), dateOnly(*dated[j].ExpirationDate)
		if !a.Equal(b) {
			return a.Before(b)
		}
		return dated[i].LotNumber < dated[j].LotNumber
	})
	sort.SliceStable(undated, func(i, j int) bool {
		return undated[i].LotNumber < undated[j].LotNumber
	})

	return append(dated, undated...)
}
