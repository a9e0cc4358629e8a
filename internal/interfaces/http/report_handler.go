package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/clinigo/dispensario-api/internal/application/dto"
	"github.com/clinigo/dispensario-api/internal/application/reports"
	"github.com/clinigo/dispensario-api/internal/domain"
)

// ReportHandler maneja los reportes regulatorios (protegido, solo admin).
type ReportHandler struct {
	controlled *reports.ControlledReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(controlled *reports.ControlledReportUseCase) *ReportHandler {
	return &ReportHandler{controlled: controlled}
}

// ControlledXML godoc
// @Summary      Reporte XML de medicamentos controlados
// @Description  Dispensaciones de medicamentos controlados en [from, to), en el
//
//	formato XML de la autoridad sanitaria. Fechas YYYY-MM-DD.
//
// @Tags         reports
// @Security     Bearer
// @Produce      application/xml
// @Param        from  query  string  true  "Inicio del período (YYYY-MM-DD)"
// @Param        to    query  string  true  "Fin del período, exclusivo (YYYY-MM-DD)"
// @Success      200   {file}    binary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports/controlled [get]
func (h *ReportHandler) ControlledXML(c *fiber.Ctx) error {
	from, err1 := time.Parse("2006-01-02", c.Query("from"))
	to, err2 := time.Parse("2006-01-02", c.Query("to"))
	if err1 != nil || err2 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from y to deben ser fechas YYYY-MM-DD"})
	}
	xmlBytes, err := h.controlled.BuildReport(c.Context(), from, to)
	if err != nil {
		if err == domain.ErrInvalidRequest {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser anterior a to"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(xmlBytes)
}
