package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/clinigo/dispensario-api/internal/domain"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
	"github.com/clinigo/dispensario-api/internal/domain/repository"
)

var _ repository.MedicationRepository = (*MedicationRepo)(nil)

// MedicationRepo implementación de MedicationRepository sobre PostgreSQL.
type MedicationRepo struct {
	q Querier
}

// NewMedicationRepository construye el adaptador del catálogo.
func NewMedicationRepository(q Querier) *MedicationRepo {
	return &MedicationRepo{q: q}
}

const medicationColumns = `
	id, code, name, form, concentration, is_controlled, requires_lot_tracking,
	warning_horizon_days, created_at, updated_at`

// Create persiste un medicamento; code es único.
func (r *MedicationRepo) Create(ctx context.Context, med *entity.Medication) error {
	query := `
		INSERT INTO medications (id, code, name, form, concentration, is_controlled,
		                         requires_lot_tracking, warning_horizon_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		med.ID, med.Code, med.Name, med.Form, nullIfEmpty(med.Concentration),
		med.IsControlled, med.RequiresLotTracking, med.WarningHorizonDays,
		med.CreatedAt, med.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert medication: %w", err)
	}
	return nil
}

// GetByID obtiene un medicamento por ID; nil si no existe.
func (r *MedicationRepo) GetByID(ctx context.Context, id string) (*entity.Medication, error) {
	query := `SELECT` + medicationColumns + ` FROM medications WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByCode obtiene un medicamento por código; nil si no existe.
func (r *MedicationRepo) GetByCode(ctx context.Context, code string) (*entity.Medication, error) {
	query := `SELECT` + medicationColumns + ` FROM medications WHERE code = $1`
	return r.getOne(ctx, query, code)
}

// Update actualiza los campos editables del medicamento.
func (r *MedicationRepo) Update(ctx context.Context, med *entity.Medication) error {
	query := `
		UPDATE medications
		SET name = $2, form = $3, concentration = $4, is_controlled = $5,
		    requires_lot_tracking = $6, warning_horizon_days = $7, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		med.ID, med.Name, med.Form, nullIfEmpty(med.Concentration),
		med.IsControlled, med.RequiresLotTracking, med.WarningHorizonDays,
	)
	if err != nil {
		return fmt.Errorf("update medication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista el catálogo paginado, ordenado por nombre.
func (r *MedicationRepo) List(ctx context.Context, limit, offset int) ([]*entity.Medication, error) {
	query := `SELECT` + medicationColumns + ` FROM medications ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()

	var meds []*entity.Medication
	for rows.Next() {
		med, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medication: %w", err)
		}
		meds = append(meds, med)
	}
	return meds, rows.Err()
}

func (r *MedicationRepo) getOne(ctx context.Context, query, arg string) (*entity.Medication, error) {
	med, err := scanMedication(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get medication: %w", err)
	}
	return med, nil
}

func scanMedication(row pgx.Row) (*entity.Medication, error) {
	var med entity.Medication
	var concentration *string
	err := row.Scan(
		&med.ID, &med.Code, &med.Name, &med.Form, &concentration,
		&med.IsControlled, &med.RequiresLotTracking, &med.WarningHorizonDays,
		&med.CreatedAt, &med.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if concentration != nil {
		med.Concentration = *concentration
	}
	return &med, nil
}
