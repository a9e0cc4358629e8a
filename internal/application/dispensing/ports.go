package dispensing

import (
	"context"

	"github.com/clinigo/dispensario-api/internal/domain/entity"
	"github.com/clinigo/dispensario-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el bloqueo de lotes, el
// descuento de stock y el registro de dispensación sean atómicos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		dispenseRepo repository.DispenseRepository,
	) error) error
}

// ReceiptPDFGenerator genera el comprobante PDF de una dispensación.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(
		ctx context.Context,
		record *entity.DispenseRecord,
		medication *entity.Medication,
		location *entity.Location,
	) ([]byte, error)
}
