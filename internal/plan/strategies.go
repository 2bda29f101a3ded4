package plan

import (
	"context"
	"strings"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/ports"
)

// MapPlanType normalizes a plan-type string reported by the service
// ("claude_pro", "Max plan", ...) onto a catalog id.
func MapPlanType(planType string) (domain.PlanID, bool) {
	lowered := strings.ToLower(strings.TrimSpace(planType))
	switch {
	case lowered == "":
		return "", false
	case strings.Contains(lowered, "enterprise"):
		return domain.PlanEnterprise, true
	case strings.Contains(lowered, "team"):
		return domain.PlanTeam, true
	case strings.Contains(lowered, "max"):
		return domain.PlanMax, true
	case strings.Contains(lowered, "pro"):
		return domain.PlanPro, true
	case strings.Contains(lowered, "free"):
		return domain.PlanFree, true
	default:
		return "", false
	}
}

type apiStrategy struct {
	source ports.UsageSource
}

// NewAPIStrategy detects the plan from the authoritative usage endpoint.
// It ranks first: when the endpoint names a plan type, no guessing is
// needed.
func NewAPIStrategy(source ports.UsageSource) Strategy {
	return apiStrategy{source: source}
}

func (apiStrategy) Name() string { return "usage_api" }

func (s apiStrategy) Detect(ctx context.Context) (domain.PlanID, bool) {
	if s.source == nil {
		return "", false
	}
	report, err := s.source.Fetch(ctx)
	if err != nil {
		return "", false
	}
	return MapPlanType(report.PlanType)
}

// pageMarkers are checked most-specific first so that "Claude Team"
// never reads as "Pro". An upgrade prompt implies the free tier.
var pageMarkers = []struct {
	marker string
	id     domain.PlanID
}{
	{marker: "enterprise", id: domain.PlanEnterprise},
	{marker: "claude team", id: domain.PlanTeam},
	{marker: "team plan", id: domain.PlanTeam},
	{marker: "claude max", id: domain.PlanMax},
	{marker: "max plan", id: domain.PlanMax},
	{marker: "claude pro", id: domain.PlanPro},
	{marker: "pro plan", id: domain.PlanPro},
	{marker: "upgrade to pro", id: domain.PlanFree},
	{marker: "upgrade plan", id: domain.PlanFree},
}

type pageTextStrategy struct {
	sample func() string
}

// NewPageTextStrategy detects the plan from the latest rendered-content
// snapshot. The sample callback returns an empty string when no snapshot
// has been fed yet.
func NewPageTextStrategy(sample func() string) Strategy {
	return pageTextStrategy{sample: sample}
}

func (pageTextStrategy) Name() string { return "page_text" }

func (s pageTextStrategy) Detect(context.Context) (domain.PlanID, bool) {
	text := strings.ToLower(s.sample())
	if text == "" {
		return "", false
	}
	for _, candidate := range pageMarkers {
		if strings.Contains(text, candidate.marker) {
			return candidate.id, true
		}
	}
	return "", false
}

type urlStrategy struct {
	sample func() string
}

// NewURLStrategy detects the plan from the last observed request URL.
func NewURLStrategy(sample func() string) Strategy {
	return urlStrategy{sample: sample}
}

func (urlStrategy) Name() string { return "url" }

func (s urlStrategy) Detect(context.Context) (domain.PlanID, bool) {
	url := strings.ToLower(s.sample())
	switch {
	case url == "":
		return "", false
	case strings.Contains(url, "enterprise"):
		return domain.PlanEnterprise, true
	case strings.Contains(url, "team"):
		return domain.PlanTeam, true
	default:
		return "", false
	}
}

type storedPlanStrategy struct {
	store ports.StateStore
}

// NewStoredPlanStrategy falls back to whatever plan a previous detection
// persisted, however stale. It ranks last before the free default.
func NewStoredPlanStrategy(store ports.StateStore) Strategy {
	return storedPlanStrategy{store: store}
}

func (storedPlanStrategy) Name() string { return "stored" }

func (s storedPlanStrategy) Detect(ctx context.Context) (domain.PlanID, bool) {
	var id domain.PlanID
	found, err := s.store.Get(ctx, DetectedKey, &id)
	if err != nil || !found || id == "" {
		return "", false
	}
	return id, true
}
