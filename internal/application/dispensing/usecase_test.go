package dispensing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinigo/dispensario-api/internal/application/dispensing"
	"github.com/clinigo/dispensario-api/internal/application/dto"
	"github.com/clinigo/dispensario-api/internal/domain"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
	"github.com/clinigo/dispensario-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeLotRepo struct {
	repository.LotRepository // métodos no usados entran en pánico si se llaman

	lots []entity.Lot
}

func (f *fakeLotRepo) GetCandidates(_ context.Context, medicationID, locationID string) ([]entity.Lot, error) {
	return f.candidates(medicationID, locationID), nil
}

func (f *fakeLotRepo) GetCandidatesForUpdate(_ context.Context, medicationID, locationID string) ([]entity.Lot, error) {
	return f.candidates(medicationID, locationID), nil
}

func (f *fakeLotRepo) candidates(medicationID, locationID string) []entity.Lot {
	var out []entity.Lot
	for _, lot := range f.lots {
		if lot.MedicationID == medicationID && lot.LocationID == locationID && lot.IsAllocatable() {
			out = append(out, lot)
		}
	}
	return out
}

func (f *fakeLotRepo) DecrementQuantity(_ context.Context, lotID string, quantity decimal.Decimal) error {
	for i := range f.lots {
		if f.lots[i].ID != lotID {
			continue
		}
		if f.lots[i].QuantityAvailable.LessThan(quantity) {
			return domain.ErrInsufficientStock
		}
		f.lots[i].QuantityAvailable = f.lots[i].QuantityAvailable.Sub(quantity)
		if f.lots[i].QuantityAvailable.IsZero() {
			f.lots[i].State = entity.LotStateDepleted
		}
		return nil
	}
	return domain.ErrNotFound
}

type fakeMedRepo struct {
	repository.MedicationRepository

	med *entity.Medication
}

func (f *fakeMedRepo) GetByID(_ context.Context, id string) (*entity.Medication, error) {
	if f.med != nil && f.med.ID == id {
		return f.med, nil
	}
	return nil, nil
}

type fakeLocRepo struct {
	repository.LocationRepository

	loc *entity.Location
}

func (f *fakeLocRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	if f.loc != nil && f.loc.ID == id {
		return f.loc, nil
	}
	return nil, nil
}

type fakeDispenseRepo struct {
	repository.DispenseRepository

	created []*entity.DispenseRecord
}

func (f *fakeDispenseRepo) Create(_ context.Context, record *entity.DispenseRecord) error {
	f.created = append(f.created, record)
	return nil
}

func (f *fakeDispenseRepo) GetByID(_ context.Context, id string) (*entity.DispenseRecord, error) {
	for _, r := range f.created {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

// fakeTxRunner pasa los mismos fakes al callback; si el callback falla, los
// cambios quedarían aplicados sobre el fake, por eso cada test valida solo el
// camino que le corresponde.
type fakeTxRunner struct {
	lotRepo      *fakeLotRepo
	dispenseRepo *fakeDispenseRepo
	ran          bool
}

func (f *fakeTxRunner) Run(_ context.Context, fn func(
	lotRepo repository.LotRepository,
	dispenseRepo repository.DispenseRepository,
) error) error {
	f.ran = true
	return fn(f.lotRepo, f.dispenseRepo)
}

// ──────────────────────────────────────────────────────────────────────────────
// Setup
// ──────────────────────────────────────────────────────────────────────────────

var testRef = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func fecha(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func testLot(id, number string, exp *time.Time, qty string) entity.Lot {
	return entity.Lot{
		ID:                id,
		LotNumber:         number,
		MedicationID:      "med-1",
		LocationID:        "loc-1",
		ExpirationDate:    exp,
		QuantityAvailable: decimal.RequireFromString(qty),
		State:             entity.LotStateAvailable,
	}
}

type fixture struct {
	uc       *dispensing.DispenseUseCase
	lots     *fakeLotRepo
	dispense *fakeDispenseRepo
	tx       *fakeTxRunner
}

func newFixture(lots ...entity.Lot) *fixture {
	lotRepo := &fakeLotRepo{lots: lots}
	dispenseRepo := &fakeDispenseRepo{}
	tx := &fakeTxRunner{lotRepo: lotRepo, dispenseRepo: dispenseRepo}
	medRepo := &fakeMedRepo{med: &entity.Medication{ID: "med-1", Code: "AMOX500", Name: "Amoxicilina"}}
	locRepo := &fakeLocRepo{loc: &entity.Location{ID: "loc-1", Code: "SEDE01", Name: "Farmacia Central"}}

	uc := dispensing.NewDispenseUseCase(
		tx, lotRepo, medRepo, locRepo, dispenseRepo,
		dispensing.Config{WarningHorizonDays: 30},
	).WithClock(func() time.Time { return testRef })

	return &fixture{uc: uc, lots: lotRepo, dispense: dispenseRepo, tx: tx}
}

func planRequest(qty string) dto.AllocationPlanRequest {
	return dto.AllocationPlanRequest{
		MedicationID: "med-1",
		LocationID:   "loc-1",
		Quantity:     decimal.RequireFromString(qty),
		PatientName:  "Ana Pérez",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// PlanDispense (vista previa, solo lectura)
// ──────────────────────────────────────────────────────────────────────────────

func TestPlanDispense_NoDescuentaStock(t *testing.T) {
	f := newFixture(
		testLot("l1", "A", fecha(2025, 6, 10), "5"),
		testLot("l2", "B", fecha(2025, 7, 20), "10"),
	)

	out, err := f.uc.PlanDispense(context.Background(), planRequest("8"))
	require.NoError(t, err)

	require.Len(t, out.Plan.Lines, 2)
	assert.Equal(t, "2025-06-01", out.ReferenceDate)
	assert.True(t, out.Plan.IsComplete())

	assert.False(t, f.tx.ran, "la vista previa no abre transacción")
	assert.True(t, f.lots.lots[0].QuantityAvailable.Equal(decimal.NewFromInt(5)),
		"la vista previa no muta stock")
	assert.Empty(t, f.dispense.created)
}

func TestPlanDispense_ReportaFaltante(t *testing.T) {
	f := newFixture(testLot("l1", "A", fecha(2025, 6, 10), "3"))

	out, err := f.uc.PlanDispense(context.Background(), planRequest("10"))
	require.NoError(t, err, "el faltante no es un error")
	assert.True(t, out.Plan.Shortfall.Equal(decimal.NewFromInt(7)))
}

func TestPlanDispense_MedicamentoInexistente(t *testing.T) {
	f := newFixture()
	in := planRequest("1")
	in.MedicationID = "med-otro"

	_, err := f.uc.PlanDispense(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Dispense (confirmación transaccional)
// ──────────────────────────────────────────────────────────────────────────────

func TestDispense_DescuentaYRegistra(t *testing.T) {
	f := newFixture(
		testLot("l1", "A", fecha(2025, 6, 10), "5"),
		testLot("l2", "B", fecha(2025, 7, 20), "10"),
	)

	out, err := f.uc.Dispense(context.Background(), planRequest("8"), "user-1")
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.True(t, f.tx.ran, "la confirmación corre dentro de la transacción")

	// A se agota, B queda con 7.
	assert.True(t, f.lots.lots[0].QuantityAvailable.IsZero())
	assert.Equal(t, entity.LotStateDepleted, f.lots.lots[0].State)
	assert.True(t, f.lots.lots[1].QuantityAvailable.Equal(decimal.NewFromInt(7)))

	require.Len(t, f.dispense.created, 1)
	record := f.dispense.created[0]
	assert.Equal(t, out.ID, record.ID)
	assert.Equal(t, "Ana Pérez", record.PatientName)
	assert.Equal(t, "user-1", record.DispensedBy)
	assert.Equal(t, entity.DispenseStateDispensed, record.State)
	require.Len(t, record.Lines, 2)
	assert.Equal(t, "A", record.Lines[0].LotNumber)
	assert.True(t, record.QuantityDispensed.Equal(decimal.NewFromInt(8)))
	assert.True(t, record.Shortfall.IsZero())
}

func TestDispense_SinPacienteFalla(t *testing.T) {
	f := newFixture(testLot("l1", "A", fecha(2025, 6, 10), "5"))
	in := planRequest("1")
	in.PatientName = ""

	_, err := f.uc.Dispense(context.Background(), in, "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Empty(t, f.dispense.created)
}

func TestDispense_FaltanteSinAllowPartialFalla(t *testing.T) {
	f := newFixture(testLot("l1", "A", fecha(2025, 6, 10), "3"))

	_, err := f.uc.Dispense(context.Background(), planRequest("10"), "user-1")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock,
		"sin allow_partial la cantidad debe cubrirse completa")
	assert.Empty(t, f.dispense.created)
}

func TestDispense_FaltanteConAllowPartial(t *testing.T) {
	f := newFixture(testLot("l1", "A", fecha(2025, 6, 10), "3"))
	in := planRequest("10")
	in.AllowPartial = true

	out, err := f.uc.Dispense(context.Background(), in, "user-1")
	require.NoError(t, err)

	assert.True(t, out.Plan.Shortfall.Equal(decimal.NewFromInt(7)))
	require.Len(t, f.dispense.created, 1)
	assert.True(t, f.dispense.created[0].Shortfall.Equal(decimal.NewFromInt(7)),
		"el faltante queda registrado en la dispensación")
}

func TestDispense_VencidoBloqueadoSinAutorizacion(t *testing.T) {
	f := newFixture(testLot("l1", "C", fecha(2025, 5, 1), "20"))

	_, err := f.uc.Dispense(context.Background(), planRequest("5"), "user-1")

	var blocked *domain.ExpiredLotBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, []string{"C"}, blocked.LotNumbers)
	assert.True(t, f.lots.lots[0].QuantityAvailable.Equal(decimal.NewFromInt(20)),
		"el bloqueo no descuenta nada")
}

func TestDispense_VencidoConAutorizacionQuedaMarcado(t *testing.T) {
	f := newFixture(testLot("l1", "C", fecha(2025, 5, 1), "20"))
	in := planRequest("5")
	in.AllowExpiredOverride = true

	out, err := f.uc.Dispense(context.Background(), in, "user-1")
	require.NoError(t, err)

	assert.True(t, out.Plan.HasExpiredLotsUsed)
	require.Len(t, f.dispense.created, 1)
	assert.True(t, f.dispense.created[0].ExpiredOverride,
		"la excepción de vencidos queda registrada")
}

// El horizonte del medicamento tiene prioridad sobre el global.
func TestDispense_HorizonteDelMedicamento(t *testing.T) {
	f := newFixture(testLot("l1", "A", fecha(2025, 6, 20), "5"))
	// Con horizonte global 30 el lote sería EXPIRING_SOON; con 10 es SAFE.
	fMed := &fakeMedRepo{med: &entity.Medication{ID: "med-1", WarningHorizonDays: 10}}
	uc := dispensing.NewDispenseUseCase(
		f.tx, f.lots, fMed, &fakeLocRepo{loc: &entity.Location{ID: "loc-1"}}, f.dispense,
		dispensing.Config{WarningHorizonDays: 30},
	).WithClock(func() time.Time { return testRef })

	out, err := uc.PlanDispense(context.Background(), planRequest("5"))
	require.NoError(t, err)
	assert.Equal(t, entity.RiskSafe, out.Plan.Lines[0].RiskLevel)
}

func TestGetRecord_NoEncontrado(t *testing.T) {
	f := newFixture()
	_, err := f.uc.GetRecord(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
