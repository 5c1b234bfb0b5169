package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/layeredge-farmer/internal/domain"
	"github.com/bnema/layeredge-farmer/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	ledgerFileMode  = 0o600
	ledgerDirMode   = 0o700
	tempFilePattern = ".ledger-*.toml.tmp"
)

// Ledger persists per-proxy worker stats to a TOML file so operators can
// inspect accrued points between runs. Writes are atomic (temp file +
// rename) and serialized per path, since every worker in the fleet records
// through the same file.
type Ledger struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.StatsLedger = (*Ledger)(nil)

func NewLedger(path string) (*Ledger, error) {
	if path == "" {
		return nil, errors.New("ledger path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve ledger path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Ledger{path: absPath, mu: lockForPath(absPath)}, nil
}

func (l *Ledger) Record(ctx context.Context, stats domain.WorkerStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := l.readSchema()
	if err != nil {
		return err
	}
	file.applyDefaults()

	encoded := toSchema(stats)
	updated := false
	for i := range file.Workers {
		if file.Workers[i].Proxy == encoded.Proxy {
			file.Workers[i] = encoded
			updated = true
			break
		}
	}

	if !updated {
		file.Workers = append(file.Workers, encoded)
	}

	return l.writeSchema(file)
}

// List returns the last recorded snapshot for every proxy. A missing ledger
// file is an empty ledger, not an error.
func (l *Ledger) List(ctx context.Context) ([]domain.WorkerStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	file, err := l.readSchema()
	if err != nil {
		return nil, err
	}
	file.applyDefaults()

	stats := make([]domain.WorkerStats, 0, len(file.Workers))
	for _, entry := range file.Workers {
		stats = append(stats, fromSchema(entry))
	}

	return stats, nil
}

func (l *Ledger) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read ledger file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode ledger file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (l *Ledger) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(l.path), ledgerDirMode); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode ledger file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(l.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("write temp ledger file: %w", err)
	}
	if err := tempFile.Chmod(ledgerFileMode); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("chmod temp ledger file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("close temp ledger file: %w", err)
	}

	if err := os.Rename(tempPath, l.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("replace ledger file: %w", err)
	}

	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
