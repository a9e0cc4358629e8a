package fefo_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinigo/dispensario-api/internal/domain"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
	"github.com/clinigo/dispensario-api/internal/domain/fefo"
)

func planWith(levels ...entity.RiskLevel) *entity.AllocationPlan {
	plan := &entity.AllocationPlan{}
	for i, level := range levels {
		plan.Lines = append(plan.Lines, entity.AllocationLine{
			LotNumber: string(rune('A' + i)),
			RiskLevel: level,
		})
	}
	return plan
}

func TestValidate_PlanLimpio(t *testing.T) {
	plan := planWith(entity.RiskSafe, entity.RiskSafe)

	require.NoError(t, fefo.Validate(plan, false))
	assert.False(t, plan.HasExpiredLotsUsed)
	assert.False(t, plan.HasExpiringSoonLotsUsed)
}

func TestValidate_MarcaPorVencer(t *testing.T) {
	plan := planWith(entity.RiskSafe, entity.RiskExpiringSoon)

	require.NoError(t, fefo.Validate(plan, false))
	assert.True(t, plan.HasExpiringSoonLotsUsed,
		"por vencer no bloquea pero queda marcado")
}

func TestValidate_VencidoSinAutorizacionBloquea(t *testing.T) {
	plan := planWith(entity.RiskExpired, entity.RiskSafe, entity.RiskExpired)

	err := fefo.Validate(plan, false)
	require.Error(t, err)

	var blocked *domain.ExpiredLotBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, []string{"A", "C"}, blocked.LotNumbers,
		"debe listar todos los lotes vencidos del plan")
}

func TestValidate_VencidoConAutorizacionPasaMarcado(t *testing.T) {
	plan := planWith(entity.RiskExpired)

	require.NoError(t, fefo.Validate(plan, true))
	assert.True(t, plan.HasExpiredLotsUsed,
		"la autorización no borra la marca de vencidos usados")
}

func TestValidate_FaltanteNoEsError(t *testing.T) {
	plan := planWith()
	plan.Shortfall = decimal.NewFromInt(10)

	assert.NoError(t, fefo.Validate(plan, false),
		"un plan vacío con faltante total es válido")
}
