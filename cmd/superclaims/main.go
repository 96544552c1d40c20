package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"superclaims/internal/api"
	"superclaims/internal/api/handlers"
	"superclaims/internal/decision"
	"superclaims/internal/service"
	"superclaims/internal/validation"
	"superclaims/pkg/config"
	"superclaims/pkg/logger"

	"go.uber.org/zap"
)

// @title SuperClaims API
// @version 1.0
// @description Medical insurance claim processing: document reading, cross-document validation and claim decisions.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting SuperClaims service")

	policy, err := validation.NewPolicy(cfg.Policy.RequiredTypes, cfg.Policy.DateGraceDays, cfg.Policy.CheckIdentifiers)
	if err != nil {
		appLogger.Fatal("Invalid validation policy", zap.Error(err))
	}

	llmService, err := service.NewLLMService(&cfg.GigaChat, logger.Named("llm"))
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	ocrService := service.NewOCRService(logger.Named("ocr"))
	classifierService := service.NewClassifierService(llmService, logger.Named("classifier"))
	extractionService := service.NewExtractionService(llmService, logger.Named("extractor"))

	validator := validation.NewValidator(policy, logger.Named("validator"))
	engine := decision.NewEngine(decision.DefaultPolicy(), logger.Named("decision"))

	claimService := service.NewClaimService(
		ocrService,
		classifierService,
		extractionService,
		validator,
		engine,
		service.ClaimOptions{
			MaxConcurrency: cfg.Claims.MaxConcurrency,
			RequestTimeout: cfg.Claims.RequestTimeout,
		},
		logger.Named("claims"),
	)

	claimHandler := handlers.NewClaimHandler(claimService, handlers.UploadLimits{
		MaxFiles:    cfg.Claims.MaxFiles,
		MaxFileSize: cfg.Claims.MaxFileSize,
	}, appLogger)
	healthHandler := handlers.NewHealthHandler(map[string]string{
		"llm":              cfg.GigaChat.Model,
		"validation_rules": strings.Join(validator.Rules(), ","),
	})

	// Multipart overhead on top of the file payload.
	bodyLimit := int(cfg.Claims.MaxFileSize)*cfg.Claims.MaxFiles + 1024*1024
	app := api.SetupRouter(claimHandler, healthHandler, api.RouterConfig{
		BodyLimit:    bodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(cfg.Server.WriteTimeout); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
