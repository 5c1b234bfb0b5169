package ports

import (
	"context"

	"github.com/bnema/layeredge-farmer/internal/domain"
)

// ProxySource yields the set of network paths the fleet should farm over.
// An empty result is a valid "nothing to do" outcome, not an error.
type ProxySource interface {
	Load(ctx context.Context) ([]domain.NetworkPath, error)
}
