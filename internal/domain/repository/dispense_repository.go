package repository

import (
	"context"
	"time"

	"github.com/clinigo/dispensario-api/internal/domain/entity"
)

// DispenseRepository define el puerto de persistencia para registros de
// dispensación y su desglose por lote.
type DispenseRepository interface {
	Create(ctx context.Context, record *entity.DispenseRecord) error
	GetByID(ctx context.Context, id string) (*entity.DispenseRecord, error)

	// ListControlled devuelve las dispensaciones de medicamentos controlados en
	// el rango [from, to), con sus líneas, para el reporte regulatorio.
	ListControlled(ctx context.Context, from, to time.Time) ([]*entity.DispenseRecord, error)
}
