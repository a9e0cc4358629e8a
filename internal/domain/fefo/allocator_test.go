package fefo_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinigo/dispensario-api/internal/domain"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
	"github.com/clinigo/dispensario-api/internal/domain/fefo"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// Fecha de referencia fija para todos los escenarios.
var refDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

const horizonDays = 30

func baseRequest(qty string) fefo.Request {
	return fefo.Request{
		MedicationID:       "med-1",
		LocationID:         "loc-1",
		QuantityRequested:  decimal.RequireFromString(qty),
		WarningHorizonDays: horizonDays,
	}
}

func lote(number string, exp *time.Time, qty string) entity.Lot {
	return entity.Lot{
		ID:                "lot-" + number,
		LotNumber:         number,
		MedicationID:      "med-1",
		LocationID:        "loc-1",
		ExpirationDate:    exp,
		QuantityAvailable: decimal.RequireFromString(qty),
		State:             entity.LotStateAvailable,
	}
}

func fecha(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de asignación
// ──────────────────────────────────────────────────────────────────────────────

// Escenario: la cantidad se reparte entre dos lotes, el de vencimiento más
// próximo completo primero.
func TestAllocate_RepartoEntreDosLotes(t *testing.T) {
	candidates := []entity.Lot{
		lote("B", fecha(2025, 7, 1), "10"),
		lote("A", fecha(2025, 6, 10), "5"),
	}

	plan, err := fefo.Allocate(baseRequest("8"), candidates, refDate)
	require.NoError(t, err)

	require.Len(t, plan.Lines, 2)
	assert.Equal(t, "A", plan.Lines[0].LotNumber, "el lote que vence primero va primero")
	assert.True(t, plan.Lines[0].QuantityAllocated.Equal(decimal.NewFromInt(5)),
		"A se consume completo")
	assert.Equal(t, "B", plan.Lines[1].LotNumber)
	assert.True(t, plan.Lines[1].QuantityAllocated.Equal(decimal.NewFromInt(3)),
		"B cubre el resto")

	assert.True(t, plan.Shortfall.IsZero(), "no debe haber faltante")
	assert.True(t, plan.IsComplete())
	assert.Equal(t, entity.RiskExpiringSoon, plan.Lines[0].RiskLevel,
		"A vence dentro del horizonte de 30 días")
}

// Escenario: el único lote que cubre la cantidad está vencido y no hay
// autorización → ExpiredLotBlocked listando el lote ofensor.
func TestAllocate_LoteVencidoBloqueaSinAutorizacion(t *testing.T) {
	candidates := []entity.Lot{
		lote("C", fecha(2025, 5, 1), "20"),
	}

	plan, err := fefo.Allocate(baseRequest("5"), candidates, refDate)
	require.Error(t, err)
	assert.Nil(t, plan)

	var blocked *domain.ExpiredLotBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, []string{"C"}, blocked.LotNumbers, "debe listar el lote vencido")
	assert.ErrorIs(t, err, domain.ErrExpiredLotBlocked)
}

// Escenario: mismo caso pero con autorización explícita → asigna y marca la
// excepción en el plan.
func TestAllocate_LoteVencidoConAutorizacion(t *testing.T) {
	candidates := []entity.Lot{
		lote("C", fecha(2025, 5, 1), "20"),
	}
	req := baseRequest("5")
	req.AllowExpiredOverride = true

	plan, err := fefo.Allocate(req, candidates, refDate)
	require.NoError(t, err)

	require.Len(t, plan.Lines, 1)
	assert.True(t, plan.Lines[0].QuantityAllocated.Equal(decimal.NewFromInt(5)))
	assert.True(t, plan.HasExpiredLotsUsed, "el uso de vencidos queda marcado")
	assert.Equal(t, entity.RiskExpired, plan.Lines[0].RiskLevel)
}

// Escenario: los lotes sin vencimiento se consumen de último.
func TestAllocate_SinVencimientoVaAlFinal(t *testing.T) {
	candidates := []entity.Lot{
		lote("D", nil, "3"),
		lote("E", fecha(2025, 6, 5), "2"),
	}

	plan, err := fefo.Allocate(baseRequest("4"), candidates, refDate)
	require.NoError(t, err)

	require.Len(t, plan.Lines, 2)
	assert.Equal(t, "E", plan.Lines[0].LotNumber, "con fecha antes que sin fecha")
	assert.True(t, plan.Lines[0].QuantityAllocated.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "D", plan.Lines[1].LotNumber)
	assert.True(t, plan.Lines[1].QuantityAllocated.Equal(decimal.NewFromInt(2)))

	assert.True(t, plan.Shortfall.IsZero())
	assert.Equal(t, entity.RiskSafe, plan.Lines[1].RiskLevel,
		"sin vencimiento rastreado se clasifica SAFE")
}

// Escenario: sin candidatos el faltante es total y no es un error.
func TestAllocate_SinCandidatos_FaltanteTotal(t *testing.T) {
	plan, err := fefo.Allocate(baseRequest("10"), nil, refDate)
	require.NoError(t, err, "el faltante no es un error")

	assert.Empty(t, plan.Lines)
	assert.True(t, plan.Shortfall.Equal(decimal.NewFromInt(10)),
		"el faltante debe ser la cantidad completa")
	assert.False(t, plan.IsComplete())
}

// Escenario: cantidad cero o negativa se rechaza antes de asignar.
func TestAllocate_CantidadInvalida(t *testing.T) {
	for _, qty := range []string{"0", "-3"} {
		_, err := fefo.Allocate(baseRequest(qty), nil, refDate)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest, "qty=%s", qty)
	}
}

func TestAllocate_IdentificadoresFaltantes(t *testing.T) {
	req := baseRequest("1")
	req.MedicationID = ""
	_, err := fefo.Allocate(req, nil, refDate)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	req = baseRequest("1")
	req.LocationID = ""
	_, err = fefo.Allocate(req, nil, refDate)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	req = baseRequest("1")
	req.WarningHorizonDays = -1
	_, err = fefo.Allocate(req, nil, refDate)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariantes
// ──────────────────────────────────────────────────────────────────────────────

// Invariante de orden: líneas con fecha en orden no decreciente, desempate por
// número de lote, y las sin fecha siempre al final.
func TestAllocate_InvarianteDeOrden(t *testing.T) {
	candidates := []entity.Lot{
		lote("Z", nil, "1"),
		lote("M", fecha(2025, 8, 1), "1"),
		lote("B", fecha(2025, 6, 10), "1"),
		lote("A", fecha(2025, 6, 10), "1"), // misma fecha que B: desempate alfabético
		lote("K", nil, "1"),
	}

	plan, err := fefo.Allocate(baseRequest("5"), candidates, refDate)
	require.NoError(t, err)

	var got []string
	for _, line := range plan.Lines {
		got = append(got, line.LotNumber)
	}
	assert.Equal(t, []string{"A", "B", "M", "K", "Z"}, got)
}

// Invariante de conservación: el total asignado es la suma de las líneas y
// ninguna línea excede lo disponible en su lote.
func TestAllocate_InvarianteDeConservacion(t *testing.T) {
	candidates := []entity.Lot{
		lote("A", fecha(2025, 6, 10), "2.5"),
		lote("B", fecha(2025, 7, 20), "4.25"),
		lote("C", nil, "10"),
	}
	byNumber := map[string]decimal.Decimal{}
	for _, c := range candidates {
		byNumber[c.LotNumber] = c.QuantityAvailable
	}

	plan, err := fefo.Allocate(baseRequest("6"), candidates, refDate)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, line := range plan.Lines {
		sum = sum.Add(line.QuantityAllocated)
		assert.True(t, line.QuantityAllocated.LessThanOrEqual(byNumber[line.LotNumber]),
			"la línea %s no puede exceder lo disponible", line.LotNumber)
	}
	assert.True(t, plan.QuantityAllocatedTotal.Equal(sum))
	assert.True(t, plan.QuantityAllocatedTotal.Add(plan.Shortfall).Equal(plan.QuantityRequested))
}

// Faltante parcial: candidatos insuficientes se consumen completos y el resto
// queda reportado.
func TestAllocate_FaltanteParcial(t *testing.T) {
	candidates := []entity.Lot{
		lote("A", fecha(2025, 6, 10), "3"),
		lote("B", fecha(2025, 7, 20), "4"),
	}

	plan, err := fefo.Allocate(baseRequest("10"), candidates, refDate)
	require.NoError(t, err)

	assert.True(t, plan.QuantityAllocatedTotal.Equal(decimal.NewFromInt(7)),
		"todos los candidatos se consumen completos")
	assert.True(t, plan.Shortfall.Equal(decimal.NewFromInt(3)))
}

// Determinismo: dos corridas con la misma entrada producen planes idénticos.
func TestAllocate_Determinismo(t *testing.T) {
	candidates := []entity.Lot{
		lote("B", fecha(2025, 7, 1), "10"),
		lote("A", fecha(2025, 6, 10), "5"),
		lote("D", nil, "7"),
	}

	plan1, err := fefo.Allocate(baseRequest("15"), candidates, refDate)
	require.NoError(t, err)
	plan2, err := fefo.Allocate(baseRequest("15"), candidates, refDate)
	require.NoError(t, err)

	assert.Equal(t, plan1, plan2, "misma entrada debe dar el mismo plan")
}

// Los lotes no asignables (cuarentena, retirados, agotados) nunca entran al plan.
func TestAllocate_ExcluyeNoAsignables(t *testing.T) {
	quarantined := lote("Q", fecha(2025, 6, 10), "50")
	quarantined.State = entity.LotStateQuarantined
	depleted := lote("Z", fecha(2025, 6, 12), "0")
	ok := lote("A", fecha(2025, 7, 20), "5")

	plan, err := fefo.Allocate(baseRequest("5"), []entity.Lot{quarantined, depleted, ok}, refDate)
	require.NoError(t, err)

	require.Len(t, plan.Lines, 1)
	assert.Equal(t, "A", plan.Lines[0].LotNumber)
}

// El motor no muta la foto de candidatos que recibe.
func TestAllocate_NoMutaCandidatos(t *testing.T) {
	candidates := []entity.Lot{
		lote("A", fecha(2025, 6, 10), "5"),
		lote("B", fecha(2025, 7, 1), "10"),
	}

	_, err := fefo.Allocate(baseRequest("8"), candidates, refDate)
	require.NoError(t, err)

	assert.True(t, candidates[0].QuantityAvailable.Equal(decimal.NewFromInt(5)))
	assert.True(t, candidates[1].QuantityAvailable.Equal(decimal.NewFromInt(10)))
}
