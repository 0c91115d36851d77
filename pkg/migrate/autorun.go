package migrate

import (
	"context"
	"fmt"

	"github.com/erancho/erancho-backend/pkg/config"
	"github.com/erancho/erancho-backend/pkg/db"
	"github.com/erancho/erancho-backend/pkg/logger"
)

// MaybeRun applies migrations at boot. The in-memory sqlite backend always
// needs them; postgres only when auto-migrate is enabled.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.DB.IsSQLite() && !cfg.DB.AutoMigrate {
		return nil
	}
	return Up(logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": client.Driver()}), logg, client)
}

// Up applies every pending migration for the client's driver.
func Up(ctx context.Context, logg *logger.Logger, client *db.Client) error {
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "migrate.start")
	}
	if err := Run(ctx, sqlDB, client.Driver(), "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "migrate.complete")
	}
	return nil
}
