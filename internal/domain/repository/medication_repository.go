package repository

import (
	"context"

	"github.com/clinigo/dispensario-api/internal/domain/entity"
)

// MedicationRepository define el puerto de persistencia para Medication (DIP).
type MedicationRepository interface {
	Create(ctx context.Context, med *entity.Medication) error
	GetByID(ctx context.Context, id string) (*entity.Medication, error)
	GetByCode(ctx context.Context, code string) (*entity.Medication, error)
	Update(ctx context.Context, med *entity.Medication) error
	List(ctx context.Context, limit, offset int) ([]*entity.Medication, error)
}
