package pharmacy_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinigo/dispensario-api/internal/application/dto"
	"github.com/clinigo/dispensario-api/internal/application/pharmacy"
	"github.com/clinigo/dispensario-api/internal/domain"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
	"github.com/clinigo/dispensario-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes para el ciclo de vida de lotes
// ──────────────────────────────────────────────────────────────────────────────

type fakeLotStore struct {
	repository.LotRepository

	byID        map[string]*entity.Lot
	quarantined int
}

func newFakeLotStore(lots ...*entity.Lot) *fakeLotStore {
	s := &fakeLotStore{byID: map[string]*entity.Lot{}}
	for _, lot := range lots {
		s.byID[lot.ID] = lot
	}
	return s
}

func (s *fakeLotStore) Create(_ context.Context, lot *entity.Lot) error {
	s.byID[lot.ID] = lot
	return nil
}

func (s *fakeLotStore) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	return s.byID[id], nil
}

func (s *fakeLotStore) UpdateState(_ context.Context, lotID, state, reason string) error {
	lot, ok := s.byID[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	lot.State = state
	lot.RecallReason = reason
	return nil
}

func (s *fakeLotStore) QuarantineExpired(_ context.Context, reference time.Time) (int, error) {
	count := 0
	for _, lot := range s.byID {
		if lot.State != entity.LotStateAvailable || lot.ExpirationDate == nil {
			continue
		}
		if lot.ExpirationDate.Before(reference) {
			lot.State = entity.LotStateQuarantined
			count++
		}
	}
	s.quarantined = count
	return count, nil
}

type fakeMedStore struct {
	repository.MedicationRepository

	med *entity.Medication
}

func (s *fakeMedStore) GetByID(_ context.Context, id string) (*entity.Medication, error) {
	if s.med != nil && s.med.ID == id {
		return s.med, nil
	}
	return nil, nil
}

type fakeLocStore struct {
	repository.LocationRepository

	loc *entity.Location
}

func (s *fakeLocStore) GetByID(_ context.Context, id string) (*entity.Location, error) {
	if s.loc != nil && s.loc.ID == id {
		return s.loc, nil
	}
	return nil, nil
}

func newLotUseCase(store *fakeLotStore) *pharmacy.LotUseCase {
	return pharmacy.NewLotUseCase(
		store,
		&fakeMedStore{med: &entity.Medication{ID: "med-1", Name: "Ibuprofeno"}},
		&fakeLocStore{loc: &entity.Location{ID: "loc-1", Name: "Farmacia Central"}},
	).WithClock(func() time.Time { return reportRef })
}

func receiveRequest() dto.ReceiveLotRequest {
	exp := "2026-01-31"
	return dto.ReceiveLotRequest{
		LotNumber:      "L-001",
		MedicationID:   "med-1",
		LocationID:     "loc-1",
		Quantity:       decimal.NewFromInt(100),
		ExpirationDate: &exp,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción
// ──────────────────────────────────────────────────────────────────────────────

func TestReceiveLot_Crea(t *testing.T) {
	store := newFakeLotStore()
	uc := newLotUseCase(store)

	lot, err := uc.ReceiveLot(context.Background(), receiveRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, lot.ID)
	assert.Equal(t, entity.LotStateAvailable, lot.State)
	assert.True(t, lot.QuantityAvailable.Equal(decimal.NewFromInt(100)))
	assert.True(t, lot.InitialQuantity.Equal(lot.QuantityAvailable))
	require.NotNil(t, lot.ExpirationDate)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), *lot.ExpirationDate)
	assert.Contains(t, store.byID, lot.ID)
}

func TestReceiveLot_SinVencimiento(t *testing.T) {
	in := receiveRequest()
	in.ExpirationDate = nil
	uc := newLotUseCase(newFakeLotStore())

	lot, err := uc.ReceiveLot(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, lot.ExpirationDate, "sin fecha queda como stock sin vencimiento rastreado")
}

func TestReceiveLot_FechaMalFormada(t *testing.T) {
	in := receiveRequest()
	bad := "31/01/2026"
	in.ExpirationDate = &bad
	uc := newLotUseCase(newFakeLotStore())

	_, err := uc.ReceiveLot(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestReceiveLot_CantidadInvalida(t *testing.T) {
	uc := newLotUseCase(newFakeLotStore())
	for _, qty := range []int64{0, -5} {
		in := receiveRequest()
		in.Quantity = decimal.NewFromInt(qty)
		_, err := uc.ReceiveLot(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest, "qty=%d", qty)
	}
}

func TestReceiveLot_MedicamentoInexistente(t *testing.T) {
	in := receiveRequest()
	in.MedicationID = "med-otro"
	uc := newLotUseCase(newFakeLotStore())

	_, err := uc.ReceiveLot(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cuarentena y retiro
// ──────────────────────────────────────────────────────────────────────────────

func TestQuarantine_CambiaEstado(t *testing.T) {
	lot := &entity.Lot{ID: "l1", State: entity.LotStateAvailable}
	store := newFakeLotStore(lot)

	require.NoError(t, newLotUseCase(store).Quarantine(context.Background(), "l1"))
	assert.Equal(t, entity.LotStateQuarantined, lot.State)
}

func TestQuarantine_RetiradoEsConflicto(t *testing.T) {
	lot := &entity.Lot{ID: "l1", State: entity.LotStateRecalled}
	store := newFakeLotStore(lot)

	err := newLotUseCase(store).Quarantine(context.Background(), "l1")
	assert.ErrorIs(t, err, domain.ErrConflict, "un lote retirado no vuelve a cuarentena")
}

func TestRecall_RequiereMotivo(t *testing.T) {
	lot := &entity.Lot{ID: "l1", State: entity.LotStateAvailable}
	store := newFakeLotStore(lot)
	uc := newLotUseCase(store)

	err := uc.Recall(context.Background(), "l1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	require.NoError(t, uc.Recall(context.Background(), "l1", "alerta sanitaria INVIMA"))
	assert.Equal(t, entity.LotStateRecalled, lot.State)
	assert.Equal(t, "alerta sanitaria INVIMA", lot.RecallReason)
}

func TestRecall_NoEncontrado(t *testing.T) {
	uc := newLotUseCase(newFakeLotStore())
	err := uc.Recall(context.Background(), "nope", "motivo")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cuarentena automática de vencidos
// ──────────────────────────────────────────────────────────────────────────────

func TestQuarantineExpired_SoloVencidosDisponibles(t *testing.T) {
	vencido := &entity.Lot{ID: "v", State: entity.LotStateAvailable, ExpirationDate: fecha(2025, 5, 1)}
	vigente := &entity.Lot{ID: "g", State: entity.LotStateAvailable, ExpirationDate: fecha(2025, 12, 1)}
	sinFecha := &entity.Lot{ID: "s", State: entity.LotStateAvailable}
	store := newFakeLotStore(vencido, vigente, sinFecha)

	count, err := newLotUseCase(store).QuarantineExpired(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Equal(t, entity.LotStateQuarantined, vencido.State)
	assert.Equal(t, entity.LotStateAvailable, vigente.State)
	assert.Equal(t, entity.LotStateAvailable, sinFecha.State)
}
