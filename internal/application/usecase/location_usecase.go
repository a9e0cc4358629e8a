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

// LocationUseCase casos de uso de ubicaciones (farmacias y bodegas de sede).
type LocationUseCase struct {
	repo repository.LocationRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo}
}

// Create registra una ubicación.
func (uc *LocationUseCase) Create(ctx context.Context, in dto.CreateLocationRequest) (*entity.Location, error) {
	if in.Code == "" || in.Name == "" {
		return nil, domain.ErrInvalidRequest
	}
	loc := &entity.Location{
		ID:        uuid.New().String(),
		Code:      in.Code,
		Name:      in.Name,
		Address:   in.Address,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// GetByID devuelve una ubicación por su ID.
func (uc *LocationUseCase) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	loc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	return loc, nil
}

// List lista todas las ubicaciones.
func (uc *LocationUseCase) List(ctx context.Context) ([]*entity.Location, error) {
	return uc.repo.List(ctx)
}
