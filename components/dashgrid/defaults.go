package dashgrid

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Type:        WidgetLineChart,
		Name:        "Line Chart",
		Description: "Equity curve and P&L over time",
		Category:    "charts",
		DefaultSize: Size{Width: 4, Height: 3},
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"metric"},
			"properties": map[string]any{
				"metric": map[string]any{
					"type": "string",
					"enum": []string{"equity", "pnl", "drawdown", "win_rate"},
				},
				"range": map[string]any{
					"type":    "string",
					"enum":    []string{"7d", "30d", "90d", "1y", "all"},
					"default": "30d",
				},
			},
		},
	},
	{
		Type:        WidgetBarChart,
		Name:        "Bar Chart",
		Description: "P&L grouped by symbol, setup, or weekday",
		Category:    "charts",
		DefaultSize: Size{Width: 4, Height: 3},
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"group_by"},
			"properties": map[string]any{
				"group_by": map[string]any{
					"type": "string",
					"enum": []string{"symbol", "setup", "weekday", "hour"},
				},
			},
		},
	},
	{
		Type:        WidgetTable,
		Name:        "Trade Table",
		Description: "Recent trades with fills and tags",
		Category:    "tables",
		DefaultSize: Size{Width: 6, Height: 4},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{
					"type": "integer", "minimum": 1, "maximum": 100, "default": 20,
				},
				"columns": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
		},
	},
	{
		Type:        WidgetMetricCard,
		Name:        "Metric Card",
		Description: "Single headline statistic",
		Category:    "stats",
		DefaultSize: Size{Width: 2, Height: 2},
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"metric"},
			"properties": map[string]any{
				"metric": map[string]any{"type": "string"},
				"format": map[string]any{
					"type": "string",
					"enum": []string{"currency", "percent", "number"},
				},
			},
		},
	},
	{
		Type:        WidgetGauge,
		Name:        "Gauge",
		Description: "Progress toward a target (win rate, monthly goal)",
		Category:    "stats",
		DefaultSize: Size{Width: 3, Height: 3},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"metric": map[string]any{"type": "string"},
				"target": map[string]any{"type": "number", "minimum": 0},
			},
		},
	},
	{
		Type:        WidgetCalendarHeatmap,
		Name:        "Calendar Heatmap",
		Description: "Daily P&L intensity across the month",
		Category:    "charts",
		DefaultSize: Size{Width: 6, Height: 3},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"months": map[string]any{
					"type": "integer", "minimum": 1, "maximum": 12, "default": 3,
				},
			},
		},
	},
	{
		Type:        WidgetFreeText,
		Name:        "Notes",
		Description: "Free-form journal notes",
		Category:    "notes",
		DefaultSize: Size{Width: 3, Height: 2},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
		},
	},
}

// DefaultWidgetDefinitions returns the built-in widget type catalog.
func DefaultWidgetDefinitions() []WidgetDefinition {
	defs := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(defs, defaultWidgetDefinitions)
	return defs
}

// PlanQuotas is the static widget-count ceiling per subscription tier.
var PlanQuotas = map[string]int{
	"free":       4,
	"pro":        10,
	"enterprise": 999,
}

// QuotaForPlan resolves a tier name to its ceiling. Unknown tiers get the
// free ceiling.
func QuotaForPlan(plan string) int {
	if quota, ok := PlanQuotas[plan]; ok {
		return quota
	}
	return PlanQuotas["free"]
}
