// Package cli implements donorctl, the operator command line for the blood
// drive backend.
package cli

import (
	"context"
	"fmt"

	"blooddrive-backend/internal/app"
	"blooddrive-backend/internal/config"
	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// operator is the actor CLI commands run as. It is not a stored user.
var operator = domain.Actor{UserID: 0, Role: domain.UserRoleAdmin}

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("!")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// openApp loads the config named by --config and wires the services.
// Callers must Close the returned app.
func openApp(cmd *cobra.Command) (*app.App, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := app.OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a, err := app.Build(ctx, cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// AddConfigFlag registers the persistent --config flag on the root command.
func AddConfigFlag(root *cobra.Command) {
	root.PersistentFlags().String("config", "config/config.dev.yaml", "Path to configuration file")
}
