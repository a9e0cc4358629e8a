package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinigo/dispensario-api/internal/application/auth"
	"github.com/clinigo/dispensario-api/internal/application/dispensing"
	"github.com/clinigo/dispensario-api/internal/application/pharmacy"
	"github.com/clinigo/dispensario-api/internal/application/reports"
	"github.com/clinigo/dispensario-api/internal/application/usecase"
	"github.com/clinigo/dispensario-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	MedicationUC *usecase.MedicationUseCase
	LocationUC   *usecase.LocationUseCase
	LotUC        *pharmacy.LotUseCase
	ExpiryUC     *pharmacy.ExpiryReportUseCase
	DispenseUC   *dispensing.DispenseUseCase
	ReceiptUC    *dispensing.ReceiptUseCase
	ControlledUC *reports.ControlledReportUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Quién puede dispensar y quién puede administrar catálogo/lotes.
	dispensers := RequireRole(entity.RoleAdmin, entity.RoleFarmaceutico)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Catálogo de medicamentos (protegido; escritura solo farmacéutico/admin)
	medications := protected.Group("/medications")
	medicationHandler := NewMedicationHandler(deps.MedicationUC)
	medications.Post("/", dispensers, medicationHandler.Create)
	medications.Get("/", medicationHandler.List)
	medications.Get("/:id", medicationHandler.GetByID)

	// Ubicaciones (protegido; escritura solo admin)
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Post("/", adminOnly, locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)

	// Lotes (protegido; mutaciones solo farmacéutico/admin)
	lots := protected.Group("/lots")
	lotHandler := NewLotHandler(deps.LotUC, deps.ExpiryUC)
	lots.Post("/", dispensers, lotHandler.Receive)
	lots.Get("/", lotHandler.List)
	lots.Get("/expiring", lotHandler.ExpiringReport)
	lots.Post("/quarantine-expired", dispensers, lotHandler.QuarantineExpired)
	lots.Post("/:id/quarantine", dispensers, lotHandler.Quarantine)
	lots.Post("/:id/recall", dispensers, lotHandler.Recall)

	// Dispensación (protegido; confirmar solo farmacéutico/admin)
	dispensingGroup := protected.Group("/dispensing")
	dispensingHandler := NewDispensingHandler(deps.DispenseUC, deps.ReceiptUC)
	dispensingGroup.Post("/plan", dispensingHandler.Plan)
	dispensingGroup.Post("/", dispensers, dispensingHandler.Dispense)
	dispensingGroup.Get("/:id", dispensingHandler.GetRecord)
	dispensingGroup.Get("/:id/receipt", dispensingHandler.Receipt)

	// Reportes regulatorios (protegido, solo admin)
	reportsGroup := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ControlledUC)
	reportsGroup.Get("/controlled", adminOnly, reportHandler.ControlledXML)
}
