package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	colorable "github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/adapters/notify"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/adapters/plancatalog"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/adapters/render/status"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/adapters/store/jsonfile"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/adapters/usageapi"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/application"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/config"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/history"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/ledger"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/plan"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/ports"
)

type app struct {
	service        *application.Service
	cfg            config.Config
	logger         zerolog.Logger
	statusRenderer func(domain.UsageSnapshot, status.RenderOptions) (string, error)
	now            func() time.Time
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(colorable.NewColorableStderr(), cfg.Debug)

	store, err := jsonfile.New(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("wire state store: %w", err)
	}

	catalog, err := plancatalog.Load(cfg.PlansPath)
	if err != nil {
		return nil, fmt.Errorf("load plan catalog: %w", err)
	}

	clock := ports.SystemClock{}

	var source ports.UsageSource
	if cfg.API.Token != "" {
		source = usageapi.NewClient(usageapi.Config{
			BaseURL:  cfg.API.BaseURL,
			OrgID:    cfg.API.OrgID,
			Token:    cfg.API.Token,
			CacheTTL: cfg.API.CacheTTL,
		}, http.DefaultClient, clock, logger)
	}

	feed := application.NewFeed()

	strategies := make([]plan.Strategy, 0, 4)
	if source != nil {
		strategies = append(strategies, plan.NewAPIStrategy(source))
	}
	strategies = append(strategies,
		plan.NewPageTextStrategy(feed.Text),
		plan.NewURLStrategy(feed.URL),
		plan.NewStoredPlanStrategy(store),
	)
	detector := plan.NewDetector(store, clock, catalog, logger, strategies...)

	var notifier ports.Notifier = ports.NopNotifier{}
	if cfg.Notifications {
		notifier = notify.NewWriterNotifier(os.Stderr)
	}

	service := application.NewService(
		ledger.New(store, clock, notifier, logger),
		detector,
		history.New(store, clock, logger),
		source,
		feed,
		clock,
		logger,
	)

	return &app{
		service:        service,
		cfg:            cfg,
		logger:         logger,
		statusRenderer: status.Render,
		now:            time.Now,
	}, nil
}

func newLogger(out io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}

	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
