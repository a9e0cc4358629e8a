package dispensing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinigo/dispensario-api/internal/application/dto"
	"github.com/clinigo/dispensario-api/internal/domain"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
	"github.com/clinigo/dispensario-api/internal/domain/fefo"
	"github.com/clinigo/dispensario-api/internal/domain/repository"
)

// Config parámetros de farmacia para el flujo de dispensación.
type Config struct {
	WarningHorizonDays int // horizonte global de alerta de vencimiento (días)
}

// DispenseUseCase orquesta la dispensación con asignación FEFO: la vista
// previa del plan (solo lectura) y la confirmación transaccional con bloqueo
// de fila (SELECT FOR UPDATE) y Commit/Rollback.
type DispenseUseCase struct {
	txRunner     TxRunner
	lotRepo      repository.LotRepository
	medRepo      repository.MedicationRepository
	locRepo      repository.LocationRepository
	dispenseRepo repository.DispenseRepository
	cfg          Config

	// now inyectable para tests con fecha de referencia fija.
	now func() time.Time
}

// NewDispenseUseCase construye el caso de uso.
func NewDispenseUseCase(
	txRunner TxRunner,
	lotRepo repository.LotRepository,
	medRepo repository.MedicationRepository,
	locRepo repository.LocationRepository,
	dispenseRepo repository.DispenseRepository,
	cfg Config,
) *DispenseUseCase {
	return &DispenseUseCase{
		txRunner:     txRunner,
		lotRepo:      lotRepo,
		medRepo:      medRepo,
		locRepo:      locRepo,
		dispenseRepo: dispenseRepo,
		cfg:          cfg,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj del caso de uso (tests).
func (uc *DispenseUseCase) WithClock(now func() time.Time) *DispenseUseCase {
	uc.now = now
	return uc
}

// PlanDispense calcula el plan FEFO sobre la foto actual de lotes sin mutar
// stock. El plan devuelto puede traer faltante (Shortfall > 0) o señales de
// riesgo; el llamador decide antes de confirmar.
func (uc *DispenseUseCase) PlanDispense(ctx context.Context, in dto.AllocationPlanRequest) (*dto.AllocationPlanResponse, error) {
	req, err := uc.buildRequest(ctx, in)
	if err != nil {
		return nil, err
	}

	candidates, err := uc.lotRepo.GetCandidates(ctx, req.MedicationID, req.LocationID)
	if err != nil {
		return nil, err
	}

	reference := uc.now()
	plan, err := fefo.Allocate(req, candidates, reference)
	if err != nil {
		return nil, err
	}

	return &dto.AllocationPlanResponse{
		MedicationID:  req.MedicationID,
		LocationID:    req.LocationID,
		ReferenceDate: reference.Format("2006-01-02"),
		Plan:          plan,
	}, nil
}

// Dispense confirma la dispensación: dentro de una transacción bloquea los
// lotes candidatos (SELECT FOR UPDATE), re-ejecuta el motor FEFO sobre la
// foto bloqueada (idempotente por determinismo), descuenta cantidades y
// guarda el registro con su desglose por lote.
//
// Si AllowPartial es falso y la foto bloqueada no cubre la cantidad,
// falla con domain.ErrInsufficientStock y no se descuenta nada.
func (uc *DispenseUseCase) Dispense(ctx context.Context, in dto.AllocationPlanRequest, userID string) (*dto.DispenseResponse, error) {
	if in.PatientName == "" {
		return nil, domain.ErrInvalidRequest
	}
	req, err := uc.buildRequest(ctx, in)
	if err != nil {
		return nil, err
	}

	reference := uc.now()
	recordID := uuid.New().String()
	txID := uuid.New().String()

	var plan *entity.AllocationPlan
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		dispenseRepo repository.DispenseRepository,
	) error {
		// Foto bloqueada: ningún otro commit puede descontar estos lotes
		// hasta que esta transacción termine.
		candidates, err := lotRepo.GetCandidatesForUpdate(ctx, req.MedicationID, req.LocationID)
		if err != nil {
			return err
		}
		plan, err = fefo.Allocate(req, candidates, reference)
		if err != nil {
			return err
		}
		if !in.AllowPartial && !plan.IsComplete() {
			return domain.ErrInsufficientStock
		}

		record := &entity.DispenseRecord{
			ID:                recordID,
			TransactionID:     txID,
			MedicationID:      req.MedicationID,
			LocationID:        req.LocationID,
			PatientName:       in.PatientName,
			PatientDocument:   in.PatientDocument,
			PrescriberName:    in.PrescriberName,
			QuantityRequested: plan.QuantityRequested,
			QuantityDispensed: plan.QuantityAllocatedTotal,
			Shortfall:         plan.Shortfall,
			ExpiredOverride:   plan.HasExpiredLotsUsed,
			HasExpiringSoon:   plan.HasExpiringSoonLotsUsed,
			State:             entity.DispenseStateDispensed,
			DispensedAt:       reference,
			DispensedBy:       userID,
		}
		for _, line := range plan.Lines {
			if err := lotRepo.DecrementQuantity(ctx, line.LotID, line.QuantityAllocated); err != nil {
				return err
			}
			record.Lines = append(record.Lines, entity.DispenseLine{
				ID:             uuid.New().String(),
				DispenseID:     record.ID,
				LotID:          line.LotID,
				LotNumber:      line.LotNumber,
				Quantity:       line.QuantityAllocated,
				ExpirationDate: line.ExpirationDate,
				RiskLevel:      line.RiskLevel,
			})
		}
		return dispenseRepo.Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	return &dto.DispenseResponse{
		ID:            recordID,
		TransactionID: txID,
		Plan:          plan,
		DispensedAt:   reference,
	}, nil
}

// buildRequest valida la entrada y resuelve el horizonte de alerta efectivo:
// request > medicamento > configuración global.
func (uc *DispenseUseCase) buildRequest(ctx context.Context, in dto.AllocationPlanRequest) (fefo.Request, error) {
	if in.MedicationID == "" || in.LocationID == "" {
		return fefo.Request{}, domain.ErrInvalidRequest
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return fefo.Request{}, domain.ErrInvalidRequest
	}

	med, err := uc.medRepo.GetByID(ctx, in.MedicationID)
	if err != nil || med == nil {
		return fefo.Request{}, domain.ErrNotFound
	}
	loc, err := uc.locRepo.GetByID(ctx, in.LocationID)
	if err != nil || loc == nil {
		return fefo.Request{}, domain.ErrNotFound
	}

	horizon := in.WarningHorizonDays
	if horizon <= 0 {
		horizon = med.WarningHorizonDays
	}
	if horizon <= 0 {
		horizon = uc.cfg.WarningHorizonDays
	}

	return fefo.Request{
		MedicationID:         in.MedicationID,
		LocationID:           in.LocationID,
		QuantityRequested:    in.Quantity,
		WarningHorizonDays:   horizon,
		AllowExpiredOverride: in.AllowExpiredOverride,
	}, nil
}

// GetRecord devuelve una dispensación confirmada con su desglose.
func (uc *DispenseUseCase) GetRecord(ctx context.Context, id string) (*entity.DispenseRecord, error) {
	record, err := uc.dispenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}
