package domain

type PlanID string

const (
	PlanFree       PlanID = "free"
	PlanPro        PlanID = "pro"
	PlanTeam       PlanID = "team"
	PlanMax        PlanID = "max"
	PlanEnterprise PlanID = "enterprise"
)

// PlanConfig is one quota row of the plan catalog. Caps are heuristic
// estimates and treated as configuration data, not fixed behavior.
type PlanConfig struct {
	ID               PlanID `json:"id" toml:"id"`
	DisplayName      string `json:"display_name" toml:"display_name"`
	DailyMessageCap  int    `json:"daily_message_cap" toml:"daily_message_cap"`
	WeeklyMessageCap int    `json:"weekly_message_cap" toml:"weekly_message_cap"`
	ResetPeriodHours int    `json:"reset_period_hours" toml:"reset_period_hours"`
}

// Catalog maps plan identifiers to their quota configuration. Rows are
// immutable at runtime; only the current selection changes.
type Catalog struct {
	plans map[PlanID]PlanConfig
}

func NewCatalog(rows []PlanConfig) Catalog {
	plans := make(map[PlanID]PlanConfig, len(rows))
	for _, row := range rows {
		plans[row.ID] = row
	}
	return Catalog{plans: plans}
}

// DefaultCatalog returns the shipped quota rows. The reset period follows
// the 5-hour cadence observed on the monitored service.
func DefaultCatalog() Catalog {
	return NewCatalog([]PlanConfig{
		{ID: PlanFree, DisplayName: "Free", DailyMessageCap: 20, WeeklyMessageCap: 100, ResetPeriodHours: 5},
		{ID: PlanPro, DisplayName: "Pro", DailyMessageCap: 150, WeeklyMessageCap: 1000, ResetPeriodHours: 5},
		{ID: PlanTeam, DisplayName: "Team", DailyMessageCap: 300, WeeklyMessageCap: 2500, ResetPeriodHours: 5},
		{ID: PlanMax, DisplayName: "Max", DailyMessageCap: 500, WeeklyMessageCap: 5000, ResetPeriodHours: 5},
		{ID: PlanEnterprise, DisplayName: "Enterprise", DailyMessageCap: 1000, WeeklyMessageCap: 10000, ResetPeriodHours: 5},
	})
}

// Known reports whether id names a catalog row.
func (c Catalog) Known(id PlanID) bool {
	_, ok := c.plans[id]
	return ok
}

// Get returns the row for id, falling back to the free row when the id is
// unknown. It never fails.
func (c Catalog) Get(id PlanID) PlanConfig {
	if row, ok := c.plans[id]; ok {
		return row
	}
	return c.plans[PlanFree]
}

// IDs returns all catalog plan identifiers in a stable order.
func (c Catalog) IDs() []PlanID {
	ordered := []PlanID{PlanFree, PlanPro, PlanTeam, PlanMax, PlanEnterprise}
	out := make([]PlanID, 0, len(c.plans))
	for _, id := range ordered {
		if _, ok := c.plans[id]; ok {
			out = append(out, id)
		}
	}
	for id := range c.plans {
		known := false
		for _, seen := range ordered {
			if id == seen {
				known = true
				break
			}
		}
		if !known {
			out = append(out, id)
		}
	}
	return out
}
