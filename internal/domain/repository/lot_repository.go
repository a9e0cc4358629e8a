package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clinigo/dispensario-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para lotes de medicamento (DIP).
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)

	// GetCandidates devuelve la foto de lotes asignables para un medicamento en
	// una ubicación: estado disponible y cantidad > 0. Solo lectura; una lista
	// vacía es un resultado válido (se propaga como faltante total en el motor).
	GetCandidates(ctx context.Context, medicationID, locationID string) ([]entity.Lot, error)

	// GetCandidatesForUpdate es GetCandidates con bloqueo de filas
	// (SELECT ... FOR UPDATE); solo tiene sentido dentro de una transacción.
	GetCandidatesForUpdate(ctx context.Context, medicationID, locationID string) ([]entity.Lot, error)

	// DecrementQuantity descuenta cantidad de un lote y actualiza su estado a
	// agotado cuando llega a cero. Falla con domain.ErrInsufficientStock si la
	// cantidad disponible es menor a la descontada.
	DecrementQuantity(ctx context.Context, lotID string, quantity decimal.Decimal) error

	UpdateState(ctx context.Context, lotID, state, reason string) error
	ListByMedication(ctx context.Context, medicationID, locationID string, limit, offset int) ([]entity.Lot, error)

	// ListExpiring devuelve lotes disponibles cuyo vencimiento cae en o antes
	// del límite dado, ordenados por vencimiento y número de lote.
	ListExpiring(ctx context.Context, locationID string, until time.Time) ([]entity.Lot, error)

	// QuarantineExpired pasa a cuarentena todos los lotes disponibles ya
	// vencidos y devuelve cuántos fueron afectados.
	QuarantineExpired(ctx context.Context, reference time.Time) (int, error)
}
