package migrate

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/kayalabs/studiocart-backend/pkg/config"
	"github.com/kayalabs/studiocart-backend/pkg/db"
	"github.com/kayalabs/studiocart-backend/pkg/db/models"
	"github.com/kayalabs/studiocart-backend/pkg/logger"
)

// Models lists every table the schema migrator manages.
func Models() []any {
	return []any{
		&models.UserDocument{},
	}
}

// Run applies the schema for all managed models. Each model migrates
// independently so one failure does not block the rest.
func Run(ctx context.Context, client *db.Client) error {
	if client == nil {
		return fmt.Errorf("db client is required")
	}
	var errs []error
	for _, model := range Models() {
		if err := client.DB().WithContext(ctx).AutoMigrate(model); err != nil {
			errs = append(errs, fmt.Errorf("auto migrating %T: %w", model, err))
		}
	}
	return multierr.Combine(errs...)
}

// MaybeRunDev applies migrations automatically when the app is running in dev mode
// and the feature flag is enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "running schema migrations (dev auto-run)")

	if err := Run(ctx, client); err != nil {
		return err
	}

	logg.Info(ctx, "schema migrations completed")
	return nil
}
