package ports

import (
	"context"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
)

// UsageSource fetches an authoritative usage report for the active
// account. When available its counters take priority over every heuristic
// in the engine.
type UsageSource interface {
	Fetch(ctx context.Context) (domain.UsageReport, error)
}
