package main

import (
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"storyforge/interfaces/api/handlers"
	"storyforge/interfaces/api/middleware"
	"storyforge/interfaces/api/routes"
	"storyforge/pkg/config"
	"storyforge/pkg/di"
	"storyforge/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	container := di.NewContainer()

	// Initialize all dependencies (including logger)
	if err := container.Initialize(); err != nil {
		// logger อาจยังไม่ได้ init
		panic("Failed to initialize container: " + err.Error())
	}
	cfg := container.GetConfig()

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
		AppName:      cfg.App.Name,
		// multipart overhead นอกเหนือจากตัวไฟล์
		BodyLimit: int(cfg.Storage.MaxUploadSize) + 1<<20,
	})

	// Setup middleware (order matters!)
	app.Use(middleware.RequestIDMiddleware()) // ต้องมาก่อน logger
	app.Use(middleware.LoggerMiddleware("/health"))
	app.Use(middleware.CorsMiddleware(cfg.App.CORSOrigins))

	mountLocalFiles(app, cfg)

	h := handlers.NewHandlers(container.GetHandlerServices())
	routes.SetupRoutes(app, h, cfg.JWT.Secret)

	done := setupGracefulShutdown(app, container)

	port := cfg.App.Port
	logger.Info("Server starting",
		"port", port,
		"env", cfg.App.Env,
		"app", cfg.App.Name,
		"auth", cfg.JWT.Secret != "",
	)

	if err := app.Listen(":" + port); err != nil {
		logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
	<-done
}

// mountLocalFiles serve ไฟล์ของ local storage ที่ path ของ STORAGE_BASE_URL
func mountLocalFiles(app *fiber.App, cfg *config.Config) {
	if cfg.Storage.Type != "local" && cfg.Storage.Type != "" {
		return
	}

	prefix := "/files"
	if u, err := url.Parse(cfg.Storage.BaseURL); err == nil && u.Path != "" && u.Path != "/" {
		prefix = u.Path
	}

	app.Static(prefix, cfg.Storage.BasePath, fiber.Static{
		ByteRange: true,
		MaxAge:    3600,
	})
	logger.Info("Serving local storage", "prefix", prefix, "path", cfg.Storage.BasePath)
}

// setupGracefulShutdown หยุดรับ request ก่อน แล้วค่อยปิด pool และ connections
func setupGracefulShutdown(app *fiber.App, container *di.Container) <-chan struct{} {
	done := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer close(done)
		<-sig
		logger.Info("Gracefully shutting down...")

		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("Error shutting down server", "error", err)
		}

		if err := container.Cleanup(); err != nil {
			logger.Error("Error during cleanup", "error", err)
		}

		logger.Info("Shutdown complete")
	}()

	return done
}
