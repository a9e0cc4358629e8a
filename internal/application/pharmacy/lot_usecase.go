package pharmacy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinigo/dispensario-api/internal/application/dto"
	"github.com/clinigo/dispensario-api/internal/domain"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
	"github.com/clinigo/dispensario-api/internal/domain/repository"
)

// LotUseCase administra el ciclo de vida de los lotes: recepción, cuarentena,
// retiro y la cuarentena automática de lotes vencidos.
type LotUseCase struct {
	lotRepo repository.LotRepository
	medRepo repository.MedicationRepository
	locRepo repository.LocationRepository
	now     func() time.Time
}

// NewLotUseCase construye el caso de uso de lotes.
func NewLotUseCase(
	lotRepo repository.LotRepository,
	medRepo repository.MedicationRepository,
	locRepo repository.LocationRepository,
) *LotUseCase {
	return &LotUseCase{lotRepo: lotRepo, medRepo: medRepo, locRepo: locRepo, now: time.Now}
}

// WithClock reemplaza el reloj del caso de uso (tests).
func (uc *LotUseCase) WithClock(now func() time.Time) *LotUseCase {
	uc.now = now
	return uc
}

// ReceiveLot registra la recepción de un lote nuevo en estado disponible.
// La fecha de vencimiento es opcional (ausente = stock sin vencimiento
// rastreado, se consume de último en FEFO).
func (uc *LotUseCase) ReceiveLot(ctx context.Context, in dto.ReceiveLotRequest) (*entity.Lot, error) {
	if in.LotNumber == "" || in.MedicationID == "" || in.LocationID == "" {
		return nil, domain.ErrInvalidRequest
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidRequest
	}

	med, err := uc.medRepo.GetByID(ctx, in.MedicationID)
	if err != nil || med == nil {
		return nil, domain.ErrNotFound
	}
	loc, err := uc.locRepo.GetByID(ctx, in.LocationID)
	if err != nil || loc == nil {
		return nil, domain.ErrNotFound
	}

	var expiration *time.Time
	if in.ExpirationDate != nil && *in.ExpirationDate != "" {
		exp, err := time.Parse("2006-01-02", *in.ExpirationDate)
		if err != nil {
			return nil, domain.ErrInvalidRequest
		}
		expiration = &exp
	}

	unitCost := decimal.Zero
	if in.UnitCost != nil {
		if in.UnitCost.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidRequest
		}
		unitCost = *in.UnitCost
	}

	now := uc.now()
	lot := &entity.Lot{
		ID:                uuid.New().String(),
		LotNumber:         in.LotNumber,
		MedicationID:      in.MedicationID,
		LocationID:        in.LocationID,
		ExpirationDate:    expiration,
		ReceivedDate:      now,
		InitialQuantity:   in.Quantity,
		QuantityAvailable: in.Quantity,
		UnitCost:          unitCost,
		State:             entity.LotStateAvailable,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.lotRepo.Create(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// ListLots lista los lotes de un medicamento, opcionalmente por ubicación.
func (uc *LotUseCase) ListLots(ctx context.Context, medicationID, locationID string, limit, offset int) ([]entity.Lot, error) {
	if medicationID == "" {
		return nil, domain.ErrInvalidRequest
	}
	return uc.lotRepo.ListByMedication(ctx, medicationID, locationID, limit, offset)
}

// Quarantine pasa un lote a cuarentena (control de calidad o vencimiento).
func (uc *LotUseCase) Quarantine(ctx context.Context, lotID string) error {
	lot, err := uc.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return err
	}
	if lot == nil {
		return domain.ErrNotFound
	}
	if lot.State == entity.LotStateRecalled {
		return domain.ErrConflict
	}
	return uc.lotRepo.UpdateState(ctx, lotID, entity.LotStateQuarantined, "")
}

// Recall retira un lote del inventario con el motivo reportado por el
// proveedor o la autoridad sanitaria.
func (uc *LotUseCase) Recall(ctx context.Context, lotID, reason string) error {
	if reason == "" {
		return domain.ErrInvalidRequest
	}
	lot, err := uc.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return err
	}
	if lot == nil {
		return domain.ErrNotFound
	}
	return uc.lotRepo.UpdateState(ctx, lotID, entity.LotStateRecalled, reason)
}

// QuarantineExpired pasa a cuarentena todos los lotes disponibles ya vencidos.
// Pensado para ejecutarse periódicamente; devuelve cuántos lotes afectó.
func (uc *LotUseCase) QuarantineExpired(ctx context.Context) (int, error) {
	return uc.lotRepo.QuarantineExpired(ctx, uc.now())
}
