package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	validation "github.com/jellydator/validation"

	"github.com/allisson/finstore/internal/app"
	"github.com/allisson/finstore/internal/config"
	appvalidation "github.com/allisson/finstore/internal/validation"
)

// exportPasswordRule is the minimum strength required for export passwords.
var exportPasswordRule = appvalidation.PasswordStrength{
	MinLength:     8,
	RequireNumber: true,
}

// RunExport opens the store, serializes the whole decrypted state, seals it
// under the password, and writes the blob to the output file.
func RunExport(ctx context.Context, password, output string) error {
	if err := validation.Validate(password, validation.Required, exportPasswordRule); err != nil {
		return appvalidation.WrapValidationError(err)
	}

	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	dataStore, err := container.Store()
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	if err := dataStore.Open(ctx); err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	blob, err := dataStore.ExportState(ctx, password)
	if err != nil {
		return fmt.Errorf("failed to export state: %w", err)
	}

	if err := os.WriteFile(output, blob, 0o600); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	logger.Info("export written",
		slog.String("output", output),
		slog.Int("bytes", len(blob)),
	)
	return nil
}
