package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/clinigo/dispensario-api/internal/domain"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
	"github.com/clinigo/dispensario-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `
	id, lot_number, medication_id, location_id, expiration_date, received_date,
	initial_quantity, quantity_available, unit_cost, state, recall_reason,
	created_at, updated_at`

// Create persiste un lote recibido. El par (medication_id, lot_number) es único.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO lots (id, lot_number, medication_id, location_id, expiration_date,
		                  received_date, initial_quantity, quantity_available, unit_cost,
		                  state, recall_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.LotNumber, lot.MedicationID, lot.LocationID, lot.ExpirationDate,
		lot.ReceivedDate, lot.InitialQuantity, lot.QuantityAvailable, lot.UnitCost,
		lot.State, nullIfEmpty(lot.RecallReason), lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID; nil si no existe.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	query := `SELECT` + lotColumns + ` FROM lots WHERE id = $1`
	lot, err := r.scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

// GetCandidates devuelve la foto de lotes asignables (disponibles y con
// cantidad) para un medicamento en una ubicación. El orden FEFO final lo
// decide el motor; aquí solo se da un orden estable de lectura.
func (r *LotRepo) GetCandidates(ctx context.Context, medicationID, locationID string) ([]entity.Lot, error) {
	return r.candidates(ctx, medicationID, locationID, false)
}

// GetCandidatesForUpdate es GetCandidates con SELECT ... FOR UPDATE: bloquea
// las filas hasta el cierre de la transacción para que dos dispensaciones
// concurrentes no descuenten el mismo stock.
func (r *LotRepo) GetCandidatesForUpdate(ctx context.Context, medicationID, locationID string) ([]entity.Lot, error) {
	return r.candidates(ctx, medicationID, locationID, true)
}

func (r *LotRepo) candidates(ctx context.Context, medicationID, locationID string, forUpdate bool) ([]entity.Lot, error) {
	query := `
		SELECT` + lotColumns + `
		FROM lots
		WHERE medication_id = $1 AND location_id = $2
		  AND state = $3 AND quantity_available > 0
		ORDER BY expiration_date NULLS LAST, lot_number`
	if forUpdate {
		query += `
		FOR UPDATE`
	}
	rows, err := r.q.Query(ctx, query, medicationID, locationID, entity.LotStateAvailable)
	if err != nil {
		return nil, fmt.Errorf("get candidate lots: %w", err)
	}
	defer rows.Close()
	return r.collectLots(rows)
}

// DecrementQuantity descuenta cantidad de un lote de forma atómica y lo marca
// agotado al llegar a cero. La condición quantity_available >= $2 evita dejar
// el lote en negativo si la foto quedó obsoleta.
func (r *LotRepo) DecrementQuantity(ctx context.Context, lotID string, quantity decimal.Decimal) error {
	query := `
		UPDATE lots
		SET quantity_available = quantity_available - $2,
		    state = CASE WHEN quantity_available - $2 <= 0 THEN $3 ELSE state END,
		    updated_at = now()
		WHERE id = $1 AND quantity_available >= $2`
	tag, err := r.q.Exec(ctx, query, lotID, quantity, entity.LotStateDepleted)
	if err != nil {
		return fmt.Errorf("decrement lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

// UpdateState cambia el estado de un lote (cuarentena, retiro).
func (r *LotRepo) UpdateState(ctx context.Context, lotID, state, reason string) error {
	query := `
		UPDATE lots
		SET state = $2, recall_reason = COALESCE($3, recall_reason), updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, lotID, state, nullIfEmpty(reason))
	if err != nil {
		return fmt.Errorf("update lot state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByMedication lista lotes por medicamento; locationID vacío = todas las sedes.
func (r *LotRepo) ListByMedication(ctx context.Context, medicationID, locationID string, limit, offset int) ([]entity.Lot, error) {
	query := `
		SELECT` + lotColumns + `
		FROM lots
		WHERE medication_id = $1 AND ($2 = '' OR location_id = $2)
		ORDER BY expiration_date NULLS LAST, lot_number
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, medicationID, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	return r.collectLots(rows)
}

// ListExpiring devuelve lotes disponibles con vencimiento en o antes del límite.
func (r *LotRepo) ListExpiring(ctx context.Context, locationID string, until time.Time) ([]entity.Lot, error) {
	query := `
		SELECT` + lotColumns + `
		FROM lots
		WHERE state = $1 AND quantity_available > 0
		  AND expiration_date IS NOT NULL AND expiration_date <= $2
		  AND ($3 = '' OR location_id = $3)
		ORDER BY expiration_date, lot_number`
	rows, err := r.q.Query(ctx, query, entity.LotStateAvailable, until, locationID)
	if err != nil {
		return nil, fmt.Errorf("list expiring lots: %w", err)
	}
	defer rows.Close()
	return r.collectLots(rows)
}

// QuarantineExpired pasa a cuarentena los lotes disponibles ya vencidos.
func (r *LotRepo) QuarantineExpired(ctx context.Context, reference time.Time) (int, error) {
	query := `
		UPDATE lots
		SET state = $1, updated_at = now()
		WHERE state = $2 AND expiration_date IS NOT NULL AND expiration_date < $3`
	tag, err := r.q.Exec(ctx, query, entity.LotStateQuarantined, entity.LotStateAvailable, reference)
	if err != nil {
		return 0, fmt.Errorf("quarantine expired lots: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *LotRepo) collectLots(rows pgx.Rows) ([]entity.Lot, error) {
	var lots []entity.Lot
	for rows.Next() {
		lot, err := r.scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		lots = append(lots, *lot)
	}
	return lots, rows.Err()
}

func (r *LotRepo) scanLot(row pgx.Row) (*entity.Lot, error) {
	var lot entity.Lot
	var recallReason *string
	err := row.Scan(
		&lot.ID, &lot.LotNumber, &lot.MedicationID, &lot.LocationID, &lot.ExpirationDate,
		&lot.ReceivedDate, &lot.InitialQuantity, &lot.QuantityAvailable, &lot.UnitCost,
		&lot.State, &recallReason, &lot.CreatedAt, &lot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if recallReason != nil {
		lot.RecallReason = *recallReason
	}
	return &lot, nil
}
