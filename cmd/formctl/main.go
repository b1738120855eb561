// Command formctl is the operator CLI: role management, response export and
// the template catalogue.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"formcraft-backend-go/internal/app"
	"formcraft-backend-go/internal/config"
	"formcraft-backend-go/internal/logging"
)

func main() {
	root := newRootCmd(loadServices)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadServices initializes the full application against the configured project.
func loadServices(ctx context.Context) (*services, func(), error) {
	logger, err := logging.New("release", os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, nil, err
	}
	appConfig, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	application, err := app.New(initCtx, appConfig, logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := application.Close(); err != nil {
			logger.Warn("Failed to close resources", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return &services{
		Users:       application.Services.Users,
		Submissions: application.Services.Submissions,
		AdminEmail:  appConfig.AdminEmail,
	}, closeFn, nil
}
