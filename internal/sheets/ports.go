// Package sheets defines the outbound port for pushing cash flows to a
// spreadsheet service.
package sheets

import (
	"context"

	"cashflow/internal/core"
)

// Exporter overwrites a remote sheet with records and returns the range
// that was written.
type Exporter interface {
	Export(ctx context.Context, records []core.CashFlow) (string, error)
}
