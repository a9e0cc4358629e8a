package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskLevel clasifica el riesgo de vencimiento de un lote relativo a una
// fecha de referencia y un horizonte de alerta.
type RiskLevel string

const (
	RiskSafe         RiskLevel = "SAFE"
	RiskExpiringSoon RiskLevel = "EXPIRING_SOON"
	RiskExpired      RiskLevel = "EXPIRED"
)

// AllocationLine es un par (lote, cantidad) dentro del plan de asignación.
type AllocationLine struct {
	LotID             string          `json:"lot_id"`
	LotNumber         string          `json:"lot_number"`
	QuantityAllocated decimal.Decimal `json:"quantity_allocated"`
	ExpirationDate    *time.Time      `json:"expiration_date,omitempty"`
	RiskLevel         RiskLevel       `json:"risk_level"`
}

// AllocationPlan es la salida del motor FEFO: líneas en orden de asignación
// (vencimiento más próximo primero), totales y señales de riesgo.
// Se construye una vez por llamada y es inmutable; el flujo de dispensación
// externo es quien confirma los descuentos de stock.
type AllocationPlan struct {
	Lines                   []AllocationLine `json:"lines"`
	QuantityRequested       decimal.Decimal  `json:"quantity_requested"`
	QuantityAllocatedTotal  decimal.Decimal  `json:"quantity_allocated_total"`
	Shortfall               decimal.Decimal  `json:"shortfall"`
	HasExpiredLotsUsed      bool             `json:"has_expired_lots_used"`
	HasExpiringSoonLotsUsed bool             `json:"has_expiring_soon_lots_used"`
}

// IsComplete indica si la asignación cubrió la cantidad solicitada.
func (p *AllocationPlan) IsComplete() bool {
	return p.Shortfall.IsZero()
}
