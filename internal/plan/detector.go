// Package plan infers which subscription plan the monitored session is
// on. Detection methods are ranked: an authoritative usage endpoint is
// trusted over page heuristics, heuristics over stale caches, and an
// explicit user override beats everything.
package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/ports"
)

// Store keys for the plan selection and the detection cache.
const (
	OverrideKey   = "userSelectedPlan"
	DetectedKey   = "detectedPlan"
	DetectTimeKey = "planDetectTime"
)

// RedetectInterval is how long a cached auto-detection stays fresh. Plans
// can change mid-session, so detection re-runs on this cadence when no
// override is set.
const RedetectInterval = 30 * time.Minute

// Strategy is one ranked detection method. A false result is not an
// error, just a signal for the detector to try the next method.
type Strategy interface {
	Name() string
	Detect(ctx context.Context) (domain.PlanID, bool)
}

type Detector struct {
	store      ports.StateStore
	clock      ports.Clock
	catalog    domain.Catalog
	strategies []Strategy
	logger     zerolog.Logger

	provenance string
}

func NewDetector(store ports.StateStore, clock ports.Clock, catalog domain.Catalog, logger zerolog.Logger, strategies ...Strategy) *Detector {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Detector{
		store:      store,
		clock:      clock,
		catalog:    catalog,
		strategies: strategies,
		logger:     logger,
	}
}

// CurrentPlan resolves the active plan: an explicit override first, then
// a fresh cached detection, then a full re-detection. It always yields a
// usable plan id.
func (d *Detector) CurrentPlan(ctx context.Context) domain.PlanID {
	var override domain.PlanID
	if found, err := d.store.Get(ctx, OverrideKey, &override); err == nil && found && d.catalog.Known(override) {
		d.provenance = "override"
		return override
	}

	var cached domain.PlanID
	var detectedAt time.Time
	foundPlan, errPlan := d.store.Get(ctx, DetectedKey, &cached)
	foundTime, errTime := d.store.Get(ctx, DetectTimeKey, &detectedAt)
	if errPlan == nil && errTime == nil && foundPlan && foundTime &&
		d.catalog.Known(cached) && d.clock.Now().Sub(detectedAt) < RedetectInterval {
		d.provenance = "cache"
		return cached
	}

	return d.Redetect(ctx)
}

// Redetect runs the strategy chain in rank order and persists the first
// conclusive result. Inconclusive chains fall back to the free plan.
func (d *Detector) Redetect(ctx context.Context) domain.PlanID {
	for _, strategy := range d.strategies {
		id, ok := strategy.Detect(ctx)
		if !ok || !d.catalog.Known(id) {
			continue
		}

		d.provenance = strategy.Name()
		d.logger.Debug().Str("plan", string(id)).Str("method", strategy.Name()).Msg("plan detected")
		if err := d.store.Set(ctx, DetectedKey, id); err == nil {
			_ = d.store.Set(ctx, DetectTimeKey, d.clock.Now())
		}
		return id
	}

	d.provenance = "default"
	return domain.PlanFree
}

// NoteDetected records a plan observed out of band, e.g. carried on a
// usage report the caller already fetched. Unknown ids are ignored.
func (d *Detector) NoteDetected(ctx context.Context, id domain.PlanID, method string) {
	if !d.catalog.Known(id) {
		return
	}
	if err := d.store.Set(ctx, DetectedKey, id); err != nil {
		d.logger.Warn().Err(err).Msg("persist detected plan")
		return
	}
	_ = d.store.Set(ctx, DetectTimeKey, d.clock.Now())
	d.provenance = method
}

// SetPlan persists an explicit user override. The override outranks all
// auto-detection until cleared.
func (d *Detector) SetPlan(ctx context.Context, id domain.PlanID) error {
	if !d.catalog.Known(id) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownPlan, id)
	}
	if err := d.store.Set(ctx, OverrideKey, id); err != nil {
		return fmt.Errorf("persist plan override: %w", err)
	}
	d.provenance = "override"
	return nil
}

// ClearOverride removes the explicit override, re-enabling auto-detection.
func (d *Detector) ClearOverride(ctx context.Context) error {
	if err := d.store.Delete(ctx, OverrideKey); err != nil {
		return fmt.Errorf("clear plan override: %w", err)
	}
	return nil
}

// PlanConfig returns the quota row for the active plan, defaulting to the
// free row when the stored id is somehow unknown.
func (d *Detector) PlanConfig(ctx context.Context) domain.PlanConfig {
	return d.catalog.Get(d.CurrentPlan(ctx))
}

// Provenance names the method that produced the current plan selection.
func (d *Detector) Provenance() string {
	return d.provenance
}

func (d *Detector) Catalog() domain.Catalog {
	return d.catalog
}
