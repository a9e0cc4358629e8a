package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote de medicamento.
const (
	LotStateAvailable   = "disponible" // asignable por el motor FEFO
	LotStateQuarantined = "cuarentena" // retenido por vencimiento o control de calidad
	LotStateRecalled    = "retirado"   // retirado del mercado por el proveedor/autoridad
	LotStateDepleted    = "agotado"    // cantidad disponible en cero tras dispensación
)

// Lot representa un lote de medicamento con cantidad y vencimiento propios.
// ExpirationDate nil significa que el lote no tiene vencimiento rastreado
// (stock sin fecha); el motor FEFO lo consume de último.
type Lot struct {
	ID                string
	LotNumber         string // identificador de lote del fabricante, único por medicamento
	MedicationID      string
	LocationID        string
	ExpirationDate    *time.Time
	ReceivedDate      time.Time
	InitialQuantity   decimal.Decimal
	QuantityAvailable decimal.Decimal
	UnitCost          decimal.Decimal
	State             string
	RecallReason      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsAllocatable indica si el lote puede entrar como candidato de asignación.
func (l *Lot) IsAllocatable() bool {
	return l.State == LotStateAvailable && l.QuantityAvailable.GreaterThan(decimal.Zero)
}
