package toml

import (
	"fmt"
	"time"

	"github.com/bnema/layeredge-farmer/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Workers []workerSchema `toml:"workers"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported ledger schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type workerSchema struct {
	Proxy              string    `toml:"proxy"`
	State              string    `toml:"state"`
	Activations        int64     `toml:"activations"`
	ActivationFailures int64     `toml:"activation_failures"`
	ReportsAccepted    int64     `toml:"reports_accepted"`
	ReportsFailed      int64     `toml:"reports_failed"`
	Points             float64   `toml:"points"`
	UpdatedAt          time.Time `toml:"updated_at"`
}

func toSchema(stats domain.WorkerStats) workerSchema {
	return workerSchema{
		Proxy:              string(stats.Proxy),
		State:              string(stats.State),
		Activations:        stats.Activations,
		ActivationFailures: stats.ActivationFailures,
		ReportsAccepted:    stats.ReportsAccepted,
		ReportsFailed:      stats.ReportsFailed,
		Points:             stats.Points,
		UpdatedAt:          stats.UpdatedAt,
	}
}

func fromSchema(entry workerSchema) domain.WorkerStats {
	return domain.WorkerStats{
		Proxy:              domain.NetworkPath(entry.Proxy),
		State:              domain.WorkerState(entry.State),
		Activations:        entry.Activations,
		ActivationFailures: entry.ActivationFailures,
		ReportsAccepted:    entry.ReportsAccepted,
		ReportsFailed:      entry.ReportsFailed,
		Points:             entry.Points,
		UpdatedAt:          entry.UpdatedAt,
	}
}
