package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/clinigo/dispensario-api/internal/application/dispensing"
	"github.com/clinigo/dispensario-api/internal/application/dto"
	"github.com/clinigo/dispensario-api/internal/domain"
)

// DispensingHandler maneja el flujo de dispensación FEFO: vista previa del
// plan, confirmación transaccional, consulta y comprobante PDF (protegido).
type DispensingHandler struct {
	uc      *dispensing.DispenseUseCase
	receipt *dispensing.ReceiptUseCase
}

// NewDispensingHandler construye el handler.
func NewDispensingHandler(uc *dispensing.DispenseUseCase, receipt *dispensing.ReceiptUseCase) *DispensingHandler {
	return &DispensingHandler{uc: uc, receipt: receipt}
}

// Plan godoc
// @Summary      Vista previa del plan FEFO
// @Description  Calcula la asignación por lotes (vencimiento más próximo primero)
//
//	sin descontar stock. El plan puede traer faltante (shortfall) y
//	señales de riesgo; el llamador decide antes de confirmar.
//
// @Tags         dispensing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocationPlanRequest  true  "medication_id, location_id, quantity"
// @Success      200   {object}  dto.AllocationPlanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/dispensing/plan [post]
func (h *DispensingHandler) Plan(c *fiber.Ctx) error {
	var in dto.AllocationPlanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.PlanDispense(c.Context(), in)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(out)
}

// Dispense godoc
// @Summary      Confirmar dispensación
// @Description  Bloquea los lotes candidatos, re-ejecuta la asignación FEFO sobre
//
//	la foto bloqueada, descuenta cantidades y registra la dispensación
//	con su desglose por lote. Todo o nada (transacción).
//
// @Tags         dispensing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocationPlanRequest  true  "medication_id, location_id, quantity, patient_name"
// @Success      201   {object}  dto.DispenseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/dispensing [post]
func (h *DispensingHandler) Dispense(c *fiber.Ctx) error {
	var in dto.AllocationPlanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Dispense(c.Context(), in, GetUserID(c))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetRecord godoc
// @Summary      Consultar dispensación
// @Tags         dispensing
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la dispensación"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dispensing/{id} [get]
func (h *DispensingHandler) GetRecord(c *fiber.Ctx) error {
	record, err := h.uc.GetRecord(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(record)
}

// Receipt godoc
// @Summary      Comprobante PDF de una dispensación
// @Tags         dispensing
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la dispensación"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dispensing/{id}/receipt [get]
func (h *DispensingHandler) Receipt(c *fiber.Ctx) error {
	pdfBytes, err := h.receipt.GenerateReceipt(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="comprobante-`+c.Params("id")+`.pdf"`)
	return c.Send(pdfBytes)
}

// mapError traduce errores de dominio a respuestas HTTP. El bloqueo por lotes
// vencidos devuelve 409 con la lista de lotes ofensores para que la UI pueda
// pedir la autorización explícita.
func (h *DispensingHandler) mapError(c *fiber.Ctx, err error) error {
	var expiredErr *domain.ExpiredLotBlockedError
	if errors.As(err, &expiredErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "EXPIRED_LOT_BLOCKED",
			Message: "el plan incluye lotes vencidos; requiere allow_expired_override",
			Lots:    expiredErr.LotNumbers,
		})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente para la cantidad solicitada"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
