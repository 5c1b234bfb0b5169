package ports

import (
	"context"

	"github.com/bnema/layeredge-farmer/internal/domain"
)

// DashboardAPI is one worker's view of the rewards dashboard. Every
// implementation is bound to a single NetworkPath for its whole lifetime.
//
// Activate returns a fresh SessionHandle or an error wrapping
// domain.ErrActivationFailed; all activation failures are retryable.
//
// ReportLiveness returns an error only for context cancellation or request
// construction failures. Transport-level failures are reported as a
// LivenessUnreachable outcome, not as an error.
type DashboardAPI interface {
	Activate(ctx context.Context, wallet domain.WalletAddress) (domain.SessionHandle, error)
	ReportLiveness(ctx context.Context, wallet domain.WalletAddress, handle domain.SessionHandle) (domain.LivenessOutcome, error)
}
