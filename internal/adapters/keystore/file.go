package keystore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/layeredge-farmer/internal/ports"
)

const maxKeyFileBytes = 4096

// File loads the signing key from a local file. The file must not be
// readable by group or others; a loose mode fails the load instead of
// silently farming with an exposed key.
type File struct {
	path string
}

var _ ports.KeyStore = (*File)(nil)

func NewFile(path string) (*File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("key file path is empty")
	}

	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve key file path: %w", err)
	}

	return &File{path: filepath.Clean(absPath)}, nil
}

func (f *File) PrivateKey(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(f.path)
	if err != nil {
		return "", fmt.Errorf("stat key file %q: %w", f.path, err)
	}
	if info.Size() > maxKeyFileBytes {
		return "", fmt.Errorf("key file %q is implausibly large", f.path)
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		return "", fmt.Errorf("key file %q has mode %04o, want at most 0600", f.path, mode)
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("read key file %q: %w", f.path, err)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("key file %q is empty", f.path)
	}

	return key, nil
}

// Static wraps a key that arrived through the environment.
type Static string

var _ ports.KeyStore = Static("")

func (s Static) PrivateKey(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := strings.TrimSpace(string(s))
	if key == "" {
		return "", errors.New("private key is empty")
	}
	return key, nil
}
