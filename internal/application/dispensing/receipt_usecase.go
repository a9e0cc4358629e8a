package dispensing

import (
	"context"

	"github.com/clinigo/dispensario-api/internal/domain"
	"github.com/clinigo/dispensario-api/internal/domain/repository"
)

// ReceiptUseCase genera el comprobante PDF de una dispensación confirmada.
type ReceiptUseCase struct {
	dispenseRepo repository.DispenseRepository
	medRepo      repository.MedicationRepository
	locRepo      repository.LocationRepository
	generator    ReceiptPDFGenerator
}

// NewReceiptUseCase construye el caso de uso del comprobante.
func NewReceiptUseCase(
	dispenseRepo repository.DispenseRepository,
	medRepo repository.MedicationRepository,
	locRepo repository.LocationRepository,
	generator ReceiptPDFGenerator,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		dispenseRepo: dispenseRepo,
		medRepo:      medRepo,
		locRepo:      locRepo,
		generator:    generator,
	}
}

// GenerateReceipt arma los datos del comprobante y delega el render al
// generador PDF.
func (uc *ReceiptUseCase) GenerateReceipt(ctx context.Context, dispenseID string) ([]byte, error) {
	record, err := uc.dispenseRepo.GetByID(ctx, dispenseID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	med, err := uc.medRepo.GetByID(ctx, record.MedicationID)
	if err != nil || med == nil {
		return nil, domain.ErrNotFound
	}
	loc, err := uc.locRepo.GetByID(ctx, record.LocationID)
	if err != nil || loc == nil {
		return nil, domain.ErrNotFound
	}
	return uc.generator.GenerateReceiptPDF(ctx, record, med, loc)
}
