package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"formcraft-backend-go/internal/api"
	"formcraft-backend-go/internal/app"
	"formcraft-backend-go/internal/config"
	"formcraft-backend-go/internal/logging"
	"formcraft-backend-go/internal/middleware"
)

func main() {
	// --- 1. Initialize Logger (Zap) ---
	zapLogger, err := logging.New(os.Getenv("GIN_MODE"), os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck
	zapLogger.Info("Zap logger initialized successfully.")

	// --- 2. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 3. Initialize Firebase, repositories, cache, mail queue and services ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	application, err := app.New(initCtx, appConfig, zapLogger)
	cancelInitCtx()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := application.Close(); err != nil {
			zapLogger.Error("Failed to close resources", zap.Error(err))
		}
	}()

	// --- 4. Setup Gin HTTP Engine ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	zapLogger.Info("Gin mode set", zap.String("mode", gin.Mode()))
	router := gin.New()

	// --- 5. Apply Global Middleware (Order is important) ---
	router.Use(middleware.RequestID())                   // Tag the request before anything logs it.
	router.Use(middleware.RequestLogger(zapLogger))      // Log every request.
	router.Use(middleware.RecoveryMiddleware(zapLogger)) // Recover from panics, before other handlers.
	router.Use(middleware.CORSMiddleware(appConfig))
	zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))

	// --- 6. Setup API Routes ---
	authMW := middleware.NewAuthMiddleware(application.Firebase.Auth, appConfig.AdminEmail, zapLogger)
	limiter := middleware.NewRateLimiter(appConfig.RateLimitPerMinute, zapLogger)
	api.SetupRoutes(router, zapLogger, authMW, limiter, application.Services)

	// --- 7. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// AI generation can take a while.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))

	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- 8. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quitChannel:
		zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serverErr:
		zapLogger.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	zapLogger.Info("Attempting graceful shutdown of HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
