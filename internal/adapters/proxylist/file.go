package proxylist

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/layeredge-farmer/internal/adapters/dashboard"
	"github.com/bnema/layeredge-farmer/internal/domain"
	"github.com/bnema/layeredge-farmer/internal/ports"
	"github.com/rs/zerolog"
)

// File reads proxy endpoints from a newline-delimited text file: one
// endpoint per line, blank lines and #-comments skipped. Malformed lines are
// logged and dropped rather than failing the load; duplicates are collapsed
// so one egress route is never bound to two workers.
type File struct {
	path string
	log  zerolog.Logger
}

var _ ports.ProxySource = (*File)(nil)

func NewFile(path string, log zerolog.Logger) *File {
	return &File{path: path, log: log}
}

func (f *File) Load(ctx context.Context) ([]domain.NetworkPath, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open proxy list %q: %w", f.path, err)
	}
	defer func() { _ = file.Close() }()

	seen := map[string]struct{}{}
	var paths []domain.NetworkPath

	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		entry := strings.TrimSpace(scanner.Text())
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}

		endpoint, err := dashboard.ParseEndpoint(entry)
		if err != nil {
			f.log.Warn().Int("line", line).Err(err).Msg("skipping malformed proxy entry")
			continue
		}

		canonical := endpoint.String()
		if _, dup := seen[canonical]; dup {
			f.log.Warn().Int("line", line).Str("proxy", canonical).Msg("skipping duplicate proxy entry")
			continue
		}
		seen[canonical] = struct{}{}
		paths = append(paths, domain.NetworkPath(canonical))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read proxy list %q: %w", f.path, err)
	}

	return paths, nil
}
