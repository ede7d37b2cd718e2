// Package sheets defines the spreadsheet export ports.
package sheets

import (
	"context"

	"finboard/internal/core"
)

// Ports for outbound adapters.
type (
	// YearExporter writes a year's dashboard and ledger to a spreadsheet.
	YearExporter interface {
		ExportYear(ctx context.Context, summary core.AnnualSummary, txs []core.Transaction) (ref string, err error)
	}

	// DashboardReader reads back a previously exported dashboard.
	DashboardReader interface {
		ReadDashboard(ctx context.Context, year int) (core.AnnualSummary, error)
	}
)
