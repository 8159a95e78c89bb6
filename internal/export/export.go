// Package export mirrors ledger rows to an external backend. The sync
// worker feeds it one expense at a time as change events arrive.
package export

import (
	"context"
	"fmt"

	"tripmate/internal/config"
	"tripmate/internal/core"
	"tripmate/internal/export/google"
	"tripmate/internal/export/memory"
	"tripmate/internal/log"
)

// LedgerWriter is the outbound port for expense rows. Append returns a
// backend-specific row reference.
type LedgerWriter interface {
	AppendExpense(ctx context.Context, trip core.Trip, e core.Expense) (rowRef string, err error)
}

// Discard is the disabled backend. Rows are dropped.
type Discard struct{}

func (Discard) AppendExpense(context.Context, core.Trip, core.Expense) (string, error) {
	return "discarded", nil
}

// New builds the writer selected by EXPORT_BACKEND.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (LedgerWriter, error) {
	logger = logger.WithComponent(log.ComponentExport)

	switch cfg.ExportBackend {
	case config.ExportDisabled:
		logger.Info("Export disabled")
		return Discard{}, nil
	case config.ExportMemory:
		logger.Info("Initialized memory export backend")
		return memory.New(), nil
	case config.ExportSheets:
		client, err := google.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets backend: %w", err)
		}
		logger.Info("Initialized Google Sheets export backend",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported export backend: %s", cfg.ExportBackend)
	}
}
