package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un registro de dispensación.
const (
	DispenseStateDispensed = "dispensado"
	DispenseStateCancelled = "anulado"
)

// DispenseRecord es la confirmación de un plan de asignación: el descuento de
// stock ya ejecutado, con su desglose por lote.
type DispenseRecord struct {
	ID                 string
	TransactionID      string
	MedicationID       string
	LocationID         string
	PatientName        string
	PatientDocument    string
	PrescriberName     string
	QuantityRequested  decimal.Decimal
	QuantityDispensed  decimal.Decimal
	Shortfall          decimal.Decimal
	ExpiredOverride    bool // se dispensó con lotes vencidos bajo autorización
	HasExpiringSoon    bool
	State              string
	DispensedAt        time.Time
	DispensedBy        string
	Lines              []DispenseLine
}

// DispenseLine es el descuento aplicado a un lote dentro de una dispensación.
type DispenseLine struct {
	ID             string
	DispenseID     string
	LotID          string
	LotNumber      string
	Quantity       decimal.Decimal
	ExpirationDate *time.Time
	RiskLevel      RiskLevel
}
