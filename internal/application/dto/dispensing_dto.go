package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/clinigo/dispensario-api/internal/domain/entity"
)

// AllocationPlanRequest body para POST /api/dispensing/plan y /api/dispensing.
// WarningHorizonDays en cero usa el horizonte del medicamento o el global.
type AllocationPlanRequest struct {
	MedicationID         string          `json:"medication_id"`
	LocationID           string          `json:"location_id"`
	Quantity             decimal.Decimal `json:"quantity"`
	WarningHorizonDays   int             `json:"warning_horizon_days,omitempty"`
	AllowExpiredOverride bool            `json:"allow_expired_override,omitempty"`
	AllowPartial         bool            `json:"allow_partial,omitempty"` // acepta dispensación con faltante

	// Datos del paciente/prescriptor, solo requeridos al confirmar.
	PatientName     string `json:"patient_name,omitempty"`
	PatientDocument string `json:"patient_document,omitempty"`
	PrescriberName  string `json:"prescriber_name,omitempty"`
}

// AllocationPlanResponse plan de asignación FEFO devuelto al llamador.
type AllocationPlanResponse struct {
	MedicationID  string                 `json:"medication_id"`
	LocationID    string                 `json:"location_id"`
	ReferenceDate string                 `json:"reference_date"`
	Plan          *entity.AllocationPlan `json:"plan"`
}

// DispenseResponse resultado de una dispensación confirmada.
type DispenseResponse struct {
	ID            string                 `json:"id"`
	TransactionID string                 `json:"transaction_id"`
	Plan          *entity.AllocationPlan `json:"plan"`
	DispensedAt   time.Time              `json:"dispensed_at"`
}
