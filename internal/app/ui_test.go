package app

import (
	"context"
	"strings"
	"testing"

	"github.com/mpz/devops/tools/value-distribution/internal/types"
)

func TestBuildView(t *testing.T) {
	app := testApp(t)

	view := app.buildView(types.State{
		TotalValue:    "1234567",
		Distributions: []string{"25", "abc", "100"},
	})

	if !view.ShowDistributions {
		t.Error("expected distributions to be shown for a non-empty total")
	}
	if !view.CanRemove {
		t.Error("expected remove controls with more than one entry")
	}
	if view.TotalPercentage != "NaN" {
		t.Errorf("TotalPercentage = %q, want NaN", view.TotalPercentage)
	}
	if view.OverLimit {
		t.Error("NaN total should not be flagged as over limit")
	}

	first := view.Distributions[0]
	if first.Position != 1 || first.Percentage != "25" {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if first.Amount != "308641.75" {
		t.Errorf("Amount = %q, want 308641.75", first.Amount)
	}
	if first.FormattedAmount != "308.641,75" {
		t.Errorf("FormattedAmount = %q, want 308.641,75", first.FormattedAmount)
	}
	if got := view.Distributions[1].FormattedAmount; got != "NaN" {
		t.Errorf("non-numeric percentage amount = %q, want NaN", got)
	}
	if got := view.Distributions[2].FormattedAmount; got != "1.234.567" {
		t.Errorf("full amount = %q, want 1.234.567", got)
	}
}

func TestBuildView_Initial(t *testing.T) {
	app := testApp(t)
	view := app.GetView()

	if view.ShowDistributions {
		t.Error("distributions should be hidden until a total is entered")
	}
	if view.CanRemove {
		t.Error("the only entry must not be removable")
	}
	if view.TotalPercentage != "100" {
		t.Errorf("TotalPercentage = %q, want 100", view.TotalPercentage)
	}
	if view.Locale != "id" {
		t.Errorf("Locale = %q, want id", view.Locale)
	}
}

func TestGetFormHTML(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()

	html, err := app.getFormHTML()
	if err != nil {
		t.Fatalf("getFormHTML failed: %v", err)
	}
	if !strings.Contains(html, `id="distributions" hidden`) {
		t.Error("expected distribution section to be hidden initially")
	}
	if strings.Contains(html, `value="remove:0"`) {
		t.Error("remove control rendered for a single entry")
	}

	for _, action := range []types.Action{
		types.ChangeTotalValue("1000"),
		types.ChangeDistributionPercentage(0, "60"),
		types.AddDistribution(),
		types.ChangeDistributionPercentage(1, "60"),
	} {
		if _, err := app.Dispatch(ctx, action); err != nil {
			t.Fatalf("Dispatch(%s) failed: %v", action.Type, err)
		}
	}

	html, err = app.getFormHTML()
	if err != nil {
		t.Fatalf("getFormHTML failed: %v", err)
	}

	for _, want := range []string{
		`value="1000"`,
		`placeholder="Percentage #2"`,
		`value="remove:1"`,
		`total-percentage over-limit`,
		`<span id="total-percentage-value">120</span>%`,
		`>600</div>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered form missing %q", want)
		}
	}
	if strings.Contains(html, `id="distributions" hidden`) {
		t.Error("distribution section hidden with a total entered")
	}
}

func TestBuildView_SkipsHoles(t *testing.T) {
	app := testApp(t)

	view := app.buildView(types.State{
		TotalValue:    "1000",
		Distributions: []string{"100", types.Hole, types.Hole, "5"},
	})

	if len(view.Distributions) != 2 {
		t.Fatalf("expected 2 rendered rows, got %d", len(view.Distributions))
	}
	last := view.Distributions[1]
	if last.Index != 3 || last.Position != 4 || last.FormattedAmount != "50" {
		t.Errorf("unexpected row for entry 3: %+v", last)
	}
	if view.TotalPercentage != "105" || !view.OverLimit {
		t.Errorf("total = %s over=%v, want 105 and over", view.TotalPercentage, view.OverLimit)
	}
	if !view.CanRemove {
		t.Error("remove controls follow the list length, holes included")
	}

	view = app.buildView(types.State{
		TotalValue:    "1000",
		Distributions: []string{"100", types.Unset},
	})
	if got := view.Distributions[1]; got.Percentage != "" || got.FormattedAmount != "NaN" {
		t.Errorf("unset row = %+v, want empty input and NaN amount", got)
	}
	if view.TotalPercentage != "NaN" {
		t.Errorf("TotalPercentage = %q, want NaN", view.TotalPercentage)
	}
}
