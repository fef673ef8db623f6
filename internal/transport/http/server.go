package http

import (
	"log"
	"strings"

	"standup-service/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type AppConfig struct {
	AllowedOrigins string
	// AppToken guards /api when set
	AppToken string
	// DisableAccessLog silences the request logger (tests)
	DisableAccessLog bool
}

// NewApp builds the fiber app with middleware, /health, and the /api routes.
func NewApp(cfg AppConfig, h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "standup-service",
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())

	origins := cfg.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	// fiber refuses credentials with a wildcard origin
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With,Cache-Control",
		ExposeHeaders:    "Content-Disposition,Content-Type",
		AllowCredentials: !strings.Contains(origins, "*"),
		MaxAge:           86400,
	}))

	if !cfg.DisableAccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${ua}\n",
		}))
	}

	app.Get("/health", h.Health)
	log.Println("✅ [ROUTES] Registered /health")

	api := app.Group("/api", middleware.TokenAuth(cfg.AppToken))
	h.Register(api)
	if cfg.AppToken == "" {
		log.Println("⚠️ [ROUTES] APP_TOKEN not set, /api is open")
	}
	log.Println("✅ [ROUTES] Registered /api/*")

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var errMsg string
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		errMsg = e.Message
	} else {
		errMsg = err.Error()
	}
	log.Printf("🔥 [ERROR] [%d] %s %s → %v | IP=%s | UA=%s",
		code,
		c.Method(),
		c.Path(),
		errMsg,
		c.IP(),
		c.Get("User-Agent"),
	)
	if code != fiber.StatusInternalServerError {
		return c.Status(code).JSON(fiber.Map{"error": errMsg})
	}
	return c.Status(code).JSON(fiber.Map{
		"error":      "something went wrong",
		"request_id": c.Get("X-Request-ID"),
	})
}
