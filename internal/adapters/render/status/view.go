package status

import (
	"fmt"
	"time"

	"github.com/bnema/layeredge-farmer/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now        time.Time
	StaleAfter time.Duration
}

// Render formats a fleet stats snapshot for the terminal.
func Render(stats []domain.WorkerStats, opts RenderOptions) string {
	return renderView(stats, opts, newStyles())
}

func renderView(stats []domain.WorkerStats, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("LayerEdge Farming Fleet"),
		s.header.Render(fmt.Sprintf("proxies: %d, points: %s", len(stats), totalPointsLabel(stats))),
	}

	if len(stats) == 0 {
		lines = append(lines, s.empty.Render("No worker activity recorded."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, worker := range stats {
		lines = append(lines, s.section.Render(renderWorker(worker, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderWorker(stats domain.WorkerStats, opts RenderOptions, s styles) string {
	parts := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			s.proxy.Render(stats.Proxy.String()),
			" ",
			stateLabel(stats.State, s),
		),
		s.detail.Render(fmt.Sprintf("activations: %d ok / %d failed", stats.Activations, stats.ActivationFailures)),
		s.detail.Render(fmt.Sprintf("reports: %d accepted / %d failed", stats.ReportsAccepted, stats.ReportsFailed)),
		s.detail.Render("points: " + pointsLabel(stats)),
	}

	if stale(stats, opts) {
		parts = append(parts, s.warning.Render(fmt.Sprintf("stale: no update since %s", stats.UpdatedAt.Format(time.RFC3339))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func stateLabel(state domain.WorkerState, s styles) string {
	switch state {
	case domain.WorkerFarming:
		return s.farming.Render("farming")
	case domain.WorkerActivating:
		return s.activating.Render("activating")
	case domain.WorkerStopped:
		return s.stopped.Render("stopped")
	default:
		return s.stopped.Render(string(state))
	}
}

func pointsLabel(stats domain.WorkerStats) string {
	if stats.ReportsAccepted == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.0f", stats.Points)
}

func totalPointsLabel(stats []domain.WorkerStats) string {
	var total float64
	known := false
	for _, worker := range stats {
		if worker.ReportsAccepted > 0 {
			total += worker.Points
			known = true
		}
	}
	if !known {
		return "n/a"
	}
	return fmt.Sprintf("%.0f", total)
}

func stale(stats domain.WorkerStats, opts RenderOptions) bool {
	if opts.StaleAfter <= 0 || opts.Now.IsZero() || stats.UpdatedAt.IsZero() {
		return false
	}
	return opts.Now.Sub(stats.UpdatedAt) > opts.StaleAfter
}
