package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/clinigo/dispensario-api/internal/application/dto"
	"github.com/clinigo/dispensario-api/internal/application/pharmacy"
	"github.com/clinigo/dispensario-api/internal/domain"
)

// LotHandler maneja el ciclo de vida de lotes y el reporte de vencimientos (protegido).
type LotHandler struct {
	uc     *pharmacy.LotUseCase
	expiry *pharmacy.ExpiryReportUseCase
}

// NewLotHandler construye el handler.
func NewLotHandler(uc *pharmacy.LotUseCase, expiry *pharmacy.ExpiryReportUseCase) *LotHandler {
	return &LotHandler{uc: uc, expiry: expiry}
}

// Receive godoc
// @Summary      Recibir lote
// @Description  Registra la entrada de un lote en estado disponible. expiration_date
//
//	(YYYY-MM-DD) es opcional: sin fecha el lote se consume de último en FEFO.
//
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveLotRequest  true  "lot_number, medication_id, location_id, quantity"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lot, err := h.uc.ReceiveLot(c.Context(), in)
	if err != nil {
		if err == domain.ErrInvalidRequest {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos del lote inválidos"})
		}
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "medicamento o ubicación no encontrado"})
		}
		if err == domain.ErrDuplicate {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el número de lote ya existe para ese medicamento"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(lot)
}

// List godoc
// @Summary      Listar lotes de un medicamento
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        medication_id  query  string  true   "ID del medicamento"
// @Param        location_id    query  string  false  "Filtrar por ubicación"
// @Param        limit          query  int     false  "máximo de filas (default 20)"
// @Param        offset         query  int     false  "desplazamiento"
// @Success      200  {array}   map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/lots [get]
func (h *LotHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	page.DefaultPage()
	lots, err := h.uc.ListLots(c.Context(), c.Query("medication_id"), c.Query("location_id"), page.Limit, page.Offset)
	if err != nil {
		if err == domain.ErrInvalidRequest {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "medication_id es requerido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(lots), "lots": lots})
}

// Quarantine godoc
// @Summary      Pasar lote a cuarentena
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/quarantine [post]
func (h *LotHandler) Quarantine(c *fiber.Ctx) error {
	err := h.uc.Quarantine(c.Context(), c.Params("id"))
	if err != nil {
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote no encontrado"})
		}
		if err == domain.ErrConflict {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "un lote retirado no puede pasar a cuarentena"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "lote en cuarentena"})
}

// Recall godoc
// @Summary      Retirar lote (recall)
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del lote"
// @Param        body  body  dto.RecallLotRequest  true  "reason"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/recall [post]
func (h *LotHandler) Recall(c *fiber.Ctx) error {
	var in dto.RecallLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.uc.Recall(c.Context(), c.Params("id"), in.Reason)
	if err != nil {
		if err == domain.ErrInvalidRequest {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reason es requerido"})
		}
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "lote retirado"})
}

// QuarantineExpired godoc
// @Summary      Cuarentena automática de lotes vencidos
// @Description  Pasa a cuarentena todos los lotes disponibles cuya fecha de
//
//	vencimiento ya pasó. Pensado para ejecución periódica.
//
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/lots/quarantine-expired [post]
func (h *LotHandler) QuarantineExpired(c *fiber.Ctx) error {
	n, err := h.uc.QuarantineExpired(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"quarantined": n})
}

// ExpiringReport godoc
// @Summary      Reporte de lotes próximos a vencer
// @Description  Lotes disponibles que vencen dentro de los próximos N días (o ya
//
//	vencidos), con nivel de alerta (vencido|critico|alerta) y prioridad.
//
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación. Vacío = todas."
// @Param        days         query  int     false  "Horizonte en días (default 90)"
// @Success      200  {array}  dto.ExpiringLotDTO
// @Router       /api/lots/expiring [get]
func (h *LotHandler) ExpiringReport(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days"))
	report, err := h.expiry.GenerateExpiringReport(c.Context(), c.Query("location_id"), days)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(report), "lots": report})
}
