package fefo

import (
	"github.com/clinigo/dispensario-api/internal/domain"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
)

// Validate calcula las señales de riesgo del plan y decide si es aceptable.
//
// Si alguna línea usa un lote vencido y no se concedió la autorización,
// falla con ExpiredLotBlockedError listando los lotes ofensores; el llamador
// debe excluirlos o solicitar la autorización y reintentar. Con la
// autorización concedida el plan se devuelve igualmente marcado con
// HasExpiredLotsUsed para que el llamador registre la excepción.
//
// Un faltante (Shortfall > 0) nunca es un error: es un campo del resultado.
func Validate(plan *entity.AllocationPlan, allowExpiredOverride bool) error {
	var expiredLots []string
	for _, line := range plan.Lines {
		switch line.RiskLevel {
		case entity.RiskExpired:
			plan.HasExpiredLotsUsed = true
			expiredLots = append(expiredLots, line.LotNumber)
		case entity.RiskExpiringSoon:
			plan.HasExpiringSoonLotsUsed = true
		}
	}
	if plan.HasExpiredLotsUsed && !allowExpiredOverride {
		return &domain.ExpiredLotBlockedError{LotNumbers: expiredLots}
	}
	return nil
}
