package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveLotRequest body para POST /api/lots (recepción de stock).
type ReceiveLotRequest struct {
	LotNumber      string           `json:"lot_number"`
	MedicationID   string           `json:"medication_id"`
	LocationID     string           `json:"location_id"`
	ExpirationDate *string          `json:"expiration_date,omitempty"` // YYYY-MM-DD; ausente = sin vencimiento rastreado
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
}

// LotResponse representación de un lote en respuestas.
type LotResponse struct {
	ID                string          `json:"id"`
	LotNumber         string          `json:"lot_number"`
	MedicationID      string          `json:"medication_id"`
	LocationID        string          `json:"location_id"`
	ExpirationDate    *time.Time      `json:"expiration_date,omitempty"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	State             string          `json:"state"`
}

// RecallLotRequest body para POST /api/lots/:id/recall.
type RecallLotRequest struct {
	Reason string `json:"reason"`
}

// ExpiringLotDTO un lote próximo a vencer en el reporte de vencimientos.
type ExpiringLotDTO struct {
	LotID             string          `json:"lot_id"`
	LotNumber         string          `json:"lot_number"`
	MedicationID      string          `json:"medication_id"`
	LocationID        string          `json:"location_id"`
	ExpirationDate    time.Time       `json:"expiration_date"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	DaysToExpiry      int             `json:"days_to_expiry"` // negativo si ya venció
	AlertLevel        string          `json:"alert_level"`    // vencido | critico | alerta
	Priority          int             `json:"priority"`       // 1 = más urgente
}
