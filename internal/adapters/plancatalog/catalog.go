// Package plancatalog loads the plan quota catalog, layering optional
// TOML overrides on top of the shipped defaults. Quota caps are
// estimates that drift over time, so they stay editable without a
// rebuild.
package plancatalog

import (
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
)

type fileSchema struct {
	Plans []domain.PlanConfig `toml:"plans"`
}

// Load reads the catalog from path. A missing file yields the defaults;
// rows in the file overlay the matching default row field by field, and
// unknown ids add new rows.
func Load(path string) (domain.Catalog, error) {
	defaults := domain.DefaultCatalog()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return domain.Catalog{}, fmt.Errorf("read plan catalog: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return domain.Catalog{}, fmt.Errorf("decode plan catalog: %w", err)
	}

	rows := make([]domain.PlanConfig, 0, len(defaults.IDs())+len(file.Plans))
	overridden := map[domain.PlanID]bool{}
	for _, row := range file.Plans {
		if row.ID == "" {
			return domain.Catalog{}, errors.New("plan catalog row without id")
		}
		rows = append(rows, overlay(defaults, row))
		overridden[row.ID] = true
	}
	for _, id := range defaults.IDs() {
		if !overridden[id] {
			rows = append(rows, defaults.Get(id))
		}
	}

	return domain.NewCatalog(rows), nil
}

// overlay fills zero fields of an override row from the default row with
// the same id, so a file can adjust a single cap without restating the
// rest.
func overlay(defaults domain.Catalog, row domain.PlanConfig) domain.PlanConfig {
	if !defaults.Known(row.ID) {
		if row.ResetPeriodHours == 0 {
			row.ResetPeriodHours = 5
		}
		return row
	}

	base := defaults.Get(row.ID)
	if row.DisplayName == "" {
		row.DisplayName = base.DisplayName
	}
	if row.DailyMessageCap == 0 {
		row.DailyMessageCap = base.DailyMessageCap
	}
	if row.WeeklyMessageCap == 0 {
		row.WeeklyMessageCap = base.WeeklyMessageCap
	}
	if row.ResetPeriodHours == 0 {
		row.ResetPeriodHours = base.ResetPeriodHours
	}
	return row
}
