package api

import (
	"time"

	"superclaims/docs"
	"superclaims/internal/api/handlers"
	"superclaims/internal/dto"
	"superclaims/pkg/middleware"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type RouterConfig struct {
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func SetupRouter(
	claimHandler *handlers.ClaimHandler,
	healthHandler *handlers.HealthHandler,
	cfg RouterConfig,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      handlers.ServiceName,
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(dto.ErrorResponse{
				Error: err.Error(),
			})
		},
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))
	app.Use(middleware.RequestLogger(appLogger))

	_ = docs.SwaggerInfo // registers the API docs
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Health)

	v1 := app.Group("/api/v1")
	claims := v1.Group("/claims")
	claims.Post("/process", claimHandler.ProcessClaim)

	return app
}
