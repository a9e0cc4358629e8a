package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clinigo/dispensario-api/internal/domain"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
	"github.com/clinigo/dispensario-api/internal/domain/repository"
)

var _ repository.DispenseRepository = (*DispenseRepo)(nil)

// DispenseRepo implementación de DispenseRepository sobre PostgreSQL.
// Persiste encabezado + líneas; se espera usarlo dentro de la misma
// transacción que descuenta los lotes.
type DispenseRepo struct {
	q Querier
}

// NewDispenseRepository construye el adaptador de dispensaciones.
func NewDispenseRepository(q Querier) *DispenseRepo {
	return &DispenseRepo{q: q}
}

const dispenseColumns = `
	id, transaction_id, medication_id, location_id, patient_name, patient_document,
	prescriber_name, quantity_requested, quantity_dispensed, shortfall,
	expired_override, has_expiring_soon, state, dispensed_at, dispensed_by`

const dispenseLineColumns = `
	id, dispense_id, lot_id, lot_number, quantity, expiration_date, risk_level`

// Create inserta el encabezado y sus líneas.
func (r *DispenseRepo) Create(ctx context.Context, record *entity.DispenseRecord) error {
	headerQuery := `
		INSERT INTO dispenses (id, transaction_id, medication_id, location_id, patient_name,
		                       patient_document, prescriber_name, quantity_requested,
		                       quantity_dispensed, shortfall, expired_override,
		                       has_expiring_soon, state, dispensed_at, dispensed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, headerQuery,
		record.ID, record.TransactionID, record.MedicationID, record.LocationID,
		record.PatientName, nullIfEmpty(record.PatientDocument), nullIfEmpty(record.PrescriberName),
		record.QuantityRequested, record.QuantityDispensed, record.Shortfall,
		record.ExpiredOverride, record.HasExpiringSoon, record.State,
		record.DispensedAt, nullIfEmpty(record.DispensedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert dispense: %w", err)
	}

	lineQuery := `
		INSERT INTO dispense_lines (id, dispense_id, lot_id, lot_number, quantity,
		                            expiration_date, risk_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i := range record.Lines {
		line := &record.Lines[i]
		_, err := r.q.Exec(ctx, lineQuery,
			line.ID, line.DispenseID, line.LotID, line.LotNumber,
			line.Quantity, line.ExpirationDate, line.RiskLevel,
		)
		if err != nil {
			return fmt.Errorf("insert dispense line %d: %w", i+1, err)
		}
	}
	return nil
}

// GetByID obtiene una dispensación con sus líneas; nil si no existe.
func (r *DispenseRepo) GetByID(ctx context.Context, id string) (*entity.DispenseRecord, error) {
	query := `SELECT` + dispenseColumns + ` FROM dispenses WHERE id = $1`
	record, err := scanDispense(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispense: %w", err)
	}
	if err := r.loadLines(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListControlled devuelve dispensaciones de medicamentos controlados en
// [from, to), con líneas, ordenadas por fecha.
func (r *DispenseRepo) ListControlled(ctx context.Context, from, to time.Time) ([]*entity.DispenseRecord, error) {
	query := `
		SELECT d.id, d.transaction_id, d.medication_id, d.location_id, d.patient_name,
		       d.patient_document, d.prescriber_name, d.quantity_requested,
		       d.quantity_dispensed, d.shortfall, d.expired_override,
		       d.has_expiring_soon, d.state, d.dispensed_at, d.dispensed_by
		FROM dispenses d
		JOIN medications m ON m.id = d.medication_id
		WHERE m.is_controlled AND d.state = $1
		  AND d.dispensed_at >= $2 AND d.dispensed_at < $3
		ORDER BY d.dispensed_at, d.id`
	rows, err := r.q.Query(ctx, query, entity.DispenseStateDispensed, from, to)
	if err != nil {
		return nil, fmt.Errorf("list controlled dispenses: %w", err)
	}
	defer rows.Close()

	var records []*entity.DispenseRecord
	for rows.Next() {
		record, err := scanDispense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dispense: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, record := range records {
		if err := r.loadLines(ctx, record); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (r *DispenseRepo) loadLines(ctx context.Context, record *entity.DispenseRecord) error {
	query := `SELECT` + dispenseLineColumns + ` FROM dispense_lines WHERE dispense_id = $1 ORDER BY lot_number`
	rows, err := r.q.Query(ctx, query, record.ID)
	if err != nil {
		return fmt.Errorf("get dispense lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line entity.DispenseLine
		err := rows.Scan(
			&line.ID, &line.DispenseID, &line.LotID, &line.LotNumber,
			&line.Quantity, &line.ExpirationDate, &line.RiskLevel,
		)
		if err != nil {
			return fmt.Errorf("scan dispense line: %w", err)
		}
		record.Lines = append(record.Lines, line)
	}
	return rows.Err()
}

func scanDispense(row pgx.Row) (*entity.DispenseRecord, error) {
	var record entity.DispenseRecord
	var patientDocument, prescriberName, dispensedBy *string
	err := row.Scan(
		&record.ID, &record.TransactionID, &record.MedicationID, &record.LocationID,
		&record.PatientName, &patientDocument, &prescriberName,
		&record.QuantityRequested, &record.QuantityDispensed, &record.Shortfall,
		&record.ExpiredOverride, &record.HasExpiringSoon, &record.State,
		&record.DispensedAt, &dispensedBy,
	)
	if err != nil {
		return nil, err
	}
	if patientDocument != nil {
		record.PatientDocument = *patientDocument
	}
	if prescriberName != nil {
		record.PrescriberName = *prescriberName
	}
	if dispensedBy != nil {
		record.DispensedBy = *dispensedBy
	}
	return &record, nil
}
