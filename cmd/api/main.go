package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/clinigo/dispensario-api/docs"
	"github.com/clinigo/dispensario-api/internal/application/auth"
	"github.com/clinigo/dispensario-api/internal/application/dispensing"
	"github.com/clinigo/dispensario-api/internal/application/pharmacy"
	"github.com/clinigo/dispensario-api/internal/application/reports"
	"github.com/clinigo/dispensario-api/internal/application/usecase"
	infrapdf "github.com/clinigo/dispensario-api/internal/infrastructure/pdf"
	"github.com/clinigo/dispensario-api/internal/infrastructure/postgres"
	"github.com/clinigo/dispensario-api/internal/infrastructure/xmlreport"
	httpRouter "github.com/clinigo/dispensario-api/internal/interfaces/http"
	"github.com/clinigo/dispensario-api/pkg/config"
	"github.com/clinigo/dispensario-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	medicationRepo := postgres.NewMedicationRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	dispenseRepo := postgres.NewDispenseRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	medicationUC := usecase.NewMedicationUseCase(medicationRepo)
	locationUC := usecase.NewLocationUseCase(locationRepo)
	lotUC := pharmacy.NewLotUseCase(lotRepo, medicationRepo, locationRepo)
	expiryUC := pharmacy.NewExpiryReportUseCase(lotRepo)

	dispenseUC := dispensing.NewDispenseUseCase(
		txRunner, lotRepo, medicationRepo, locationRepo, dispenseRepo,
		dispensing.Config{WarningHorizonDays: cfg.Pharmacy.WarningHorizonDays},
	)

	// PDF: comprobante de dispensación
	receiptGenerator := infrapdf.NewMarotoReceiptGenerator()
	receiptUC := dispensing.NewReceiptUseCase(dispenseRepo, medicationRepo, locationRepo, receiptGenerator)

	// XML: reporte regulatorio de medicamentos controlados
	xmlBuilder := xmlreport.NewControlledReportBuilder()
	controlledUC := reports.NewControlledReportUseCase(dispenseRepo, medicationRepo, xmlBuilder)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Dispensario API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		MedicationUC: medicationUC,
		LocationUC:   locationUC,
		LotUC:        lotUC,
		ExpiryUC:     expiryUC,
		DispenseUC:   dispenseUC,
		ReceiptUC:    receiptUC,
		ControlledUC: controlledUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
