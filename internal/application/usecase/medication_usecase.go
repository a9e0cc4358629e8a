package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinigo/dispensario-api/internal/application/dto"
	"github.com/clinigo/dispensario-api/internal/domain"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
	"github.com/clinigo/dispensario-api/internal/domain/repository"
)

// MedicationUseCase casos de uso del catálogo de medicamentos.
type MedicationUseCase struct {
	repo repository.MedicationRepository
}

// NewMedicationUseCase construye el caso de uso.
func NewMedicationUseCase(repo repository.MedicationRepository) *MedicationUseCase {
	return &MedicationUseCase{repo: repo}
}

// Create registra un medicamento; el código debe ser único.
func (uc *MedicationUseCase) Create(ctx context.Context, in dto.CreateMedicationRequest) (*entity.Medication, error) {
	if in.Code == "" || in.Name == "" {
		return nil, domain.ErrInvalidRequest
	}
	if in.WarningHorizonDays < 0 {
		return nil, domain.ErrInvalidRequest
	}
	existing, _ := uc.repo.GetByCode(ctx, in.Code)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	form := in.Form
	if form == "" {
		form = entity.MedFormOther
	}
	now := time.Now()
	med := &entity.Medication{
		ID:                  uuid.New().String(),
		Code:                in.Code,
		Name:                in.Name,
		Form:                form,
		Concentration:       in.Concentration,
		IsControlled:        in.IsControlled,
		RequiresLotTracking: in.RequiresLotTracking,
		WarningHorizonDays:  in.WarningHorizonDays,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := uc.repo.Create(ctx, med); err != nil {
		return nil, err
	}
	return med, nil
}

// GetByID devuelve un medicamento por su ID.
func (uc *MedicationUseCase) GetByID(ctx context.Context, id string) (*entity.Medication, error) {
	med, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, domain.ErrNotFound
	}
	return med, nil
}

// List lista el catálogo con paginación.
func (uc *MedicationUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Medication, error) {
	return uc.repo.List(ctx, limit, offset)
}
