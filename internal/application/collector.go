package application

import (
	"context"
	"sort"
	"sync"

	"github.com/bnema/layeredge-farmer/internal/domain"
	"github.com/bnema/layeredge-farmer/internal/ports"
	"github.com/rs/zerolog"
)

// Collector keeps the fleet's latest stats snapshots in memory and forwards
// them to an optional persistent ledger. It is the only point where worker
// snapshots converge, guarded by its own mutex; workers themselves never
// touch each other's state.
type Collector struct {
	mu    sync.Mutex
	stats map[domain.NetworkPath]domain.WorkerStats

	next ports.StatsLedger
	log  zerolog.Logger
}

var _ ports.StatsLedger = (*Collector)(nil)

func NewCollector(next ports.StatsLedger, log zerolog.Logger) *Collector {
	return &Collector{
		stats: make(map[domain.NetworkPath]domain.WorkerStats),
		next:  next,
		log:   log,
	}
}

func (c *Collector) Record(ctx context.Context, stats domain.WorkerStats) error {
	c.mu.Lock()
	c.stats[stats.Proxy] = stats
	c.mu.Unlock()

	if c.next != nil {
		if err := c.next.Record(ctx, stats); err != nil && ctx.Err() == nil {
			c.log.Warn().Str("proxy", stats.Proxy.String()).Err(err).Msg("persist worker stats")
		}
	}

	return nil
}

// Snapshot returns the latest stats per proxy, ordered by proxy for stable
// rendering.
func (c *Collector) Snapshot() []domain.WorkerStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]domain.WorkerStats, 0, len(c.stats))
	for _, stats := range c.stats {
		snapshot = append(snapshot, stats)
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Proxy < snapshot[j].Proxy
	})

	return snapshot
}
