package sheets

import (
	"context"

	"kitty/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportExporter publishes a computed month report somewhere humans read
	// it. Exporting the same month twice replaces the earlier copy.
	ReportExporter interface {
		ExportReport(ctx context.Context, r core.Report) (ref string, err error)
	}
)
