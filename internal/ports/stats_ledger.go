package ports

import (
	"context"

	"github.com/bnema/layeredge-farmer/internal/domain"
)

// StatsLedger receives worker stats snapshots. Record failures must never be
// treated as fatal by callers; a broken ledger degrades reporting only.
type StatsLedger interface {
	Record(ctx context.Context, stats domain.WorkerStats) error
}
