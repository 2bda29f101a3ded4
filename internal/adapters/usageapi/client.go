// Package usageapi fetches authoritative usage reports from the
// monitored service's usage endpoint.
package usageapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/ports"
)

const maxResponseBytes = 1 << 20

// MinCacheTTL is the floor for response caching. The endpoint's counters
// move slowly, so hammering it buys nothing.
const MinCacheTTL = 30 * time.Second

type Config struct {
	BaseURL  string
	OrgID    string
	Token    string
	CacheTTL time.Duration
}

type Client struct {
	httpClient *http.Client
	clock      ports.Clock
	logger     zerolog.Logger
	endpoint   string
	token      string
	cacheTTL   time.Duration

	mu        sync.Mutex
	cached    *domain.UsageReport
	fetchedAt time.Time
}

var _ ports.UsageSource = (*Client)(nil)

func NewClient(cfg Config, httpClient *http.Client, clock ports.Clock, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	ttl := cfg.CacheTTL
	if ttl < MinCacheTTL {
		ttl = MinCacheTTL
	}

	endpoint := strings.TrimRight(cfg.BaseURL, "/")
	if cfg.OrgID != "" {
		endpoint += "/organizations/" + cfg.OrgID
	}
	endpoint += "/usage"

	return &Client{
		httpClient: httpClient,
		clock:      clock,
		logger:     logger,
		endpoint:   endpoint,
		token:      cfg.Token,
		cacheTTL:   ttl,
	}
}

type usageWindowPayload struct {
	Utilization float64 `json:"utilization"`
	ResetsAt    string  `json:"resets_at"`
}

type usagePayload struct {
	PlanType     string              `json:"plan_type"`
	FiveHour     *usageWindowPayload `json:"five_hour"`
	SevenDay     *usageWindowPayload `json:"seven_day"`
	SevenDayOpus *usageWindowPayload `json:"seven_day_opus"`
}

// Fetch returns the current usage report, serving a cached copy while it
// is younger than the cache TTL.
func (c *Client) Fetch(ctx context.Context) (domain.UsageReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.cached != nil && now.Sub(c.fetchedAt) < c.cacheTTL {
		c.logger.Debug().Msg("serving cached usage report")
		return *c.cached, nil
	}

	payload, err := c.fetchPayload(ctx)
	if err != nil {
		return domain.UsageReport{}, err
	}

	report := domain.UsageReport{
		PlanType:     strings.TrimSpace(payload.PlanType),
		FiveHour:     toWindow(payload.FiveHour),
		SevenDay:     toWindow(payload.SevenDay),
		SevenDayOpus: toWindow(payload.SevenDayOpus),
		FetchedAt:    now,
	}

	c.cached = &report
	c.fetchedAt = now
	return report, nil
}

func (c *Client) fetchPayload(ctx context.Context) (usagePayload, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return usagePayload{}, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", "cwm/usage")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return usagePayload{}, fmt.Errorf("perform request: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return usagePayload{}, fmt.Errorf("read response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		if response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden {
			return usagePayload{}, fmt.Errorf("%w: status %d", domain.ErrSessionExpired, response.StatusCode)
		}
		return usagePayload{}, fmt.Errorf("status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload usagePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return usagePayload{}, fmt.Errorf("decode payload: %w", err)
	}

	return payload, nil
}

func toWindow(payload *usageWindowPayload) *domain.UsageWindow {
	if payload == nil {
		return nil
	}

	window := &domain.UsageWindow{Utilization: payload.Utilization}
	if payload.ResetsAt != "" {
		if parsed, err := time.Parse(time.RFC3339, payload.ResetsAt); err == nil {
			window.ResetsAt = parsed
		}
	}
	return window
}
