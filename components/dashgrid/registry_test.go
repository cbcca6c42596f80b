package dashgrid

import "testing"

func TestRegistrySeedsBuiltinTypes(t *testing.T) {
	reg := NewRegistry()
	for _, typ := range []WidgetType{
		WidgetLineChart, WidgetBarChart, WidgetTable, WidgetMetricCard,
		WidgetGauge, WidgetCalendarHeatmap, WidgetFreeText,
	} {
		if _, ok := reg.Definition(typ); !ok {
			t.Fatalf("builtin type %s missing from registry", typ)
		}
	}
	if got := len(reg.Definitions()); got != 7 {
		t.Fatalf("definition count = %d", got)
	}
}

func TestRegistryRegisterDefinition(t *testing.T) {
	reg := NewRegistry()
	err := reg.RegisterDefinition(WidgetDefinition{
		Type:        WidgetType("scatter"),
		Name:        "Scatter",
		DefaultSize: Size{Width: 4, Height: 4},
	})
	if err != nil {
		t.Fatalf("RegisterDefinition returned error: %v", err)
	}
	if got := reg.Footprint(WidgetType("scatter")); got != (Size{Width: 4, Height: 4}) {
		t.Fatalf("footprint = %v", got)
	}
}

func TestRegistryRejectsMissingType(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterDefinition(WidgetDefinition{Name: "No Type"}); err == nil {
		t.Fatalf("expected error for missing type")
	}
}

func TestRegistryAppliesTypeHooks(t *testing.T) {
	RegisterTypeHook(func(reg *Registry) error {
		return reg.RegisterDefinition(WidgetDefinition{
			Type:        WidgetType("hooked"),
			Name:        "Hooked",
			DefaultSize: Size{Width: 2, Height: 2},
		})
	})
	reg := NewRegistry()
	if _, ok := reg.Definition(WidgetType("hooked")); !ok {
		t.Fatalf("hook-registered type missing")
	}
}

func TestQuotaForPlan(t *testing.T) {
	cases := map[string]int{
		"free":       4,
		"pro":        10,
		"enterprise": 999,
		"trial":      4,
		"":           4,
	}
	for plan, want := range cases {
		if got := QuotaForPlan(plan); got != want {
			t.Fatalf("QuotaForPlan(%q) = %d, want %d", plan, got, want)
		}
	}
}
