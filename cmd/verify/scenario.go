package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/mpz/devops/tools/value-distribution/internal/app"
	"github.com/mpz/devops/tools/value-distribution/internal/config"
	"github.com/mpz/devops/tools/value-distribution/internal/jsonutil"
	"github.com/mpz/devops/tools/value-distribution/internal/machine"
	"github.com/mpz/devops/tools/value-distribution/internal/types"
)

// TestScenario defines a sequence of actions and the state they should produce.
type TestScenario struct {
	Name            string            `yaml:"name" json:"name"`
	Description     string            `yaml:"description,omitempty" json:"description,omitempty"`
	ConfigOverrides map[string]string `yaml:"config_overrides,omitempty" json:"config_overrides,omitempty"`
	Actions         []types.Action    `yaml:"actions" json:"actions"`
	// ExpectStatus is the status the final action must be answered with. Zero means 200.
	ExpectStatus int         `yaml:"expect_status,omitempty" json:"expect_status,omitempty"`
	Expect       Expectation `yaml:"expect" json:"expect"`
}

// Expectation describes the view after all actions ran. Empty fields are not checked.
type Expectation struct {
	TotalValue      *string  `yaml:"total_value,omitempty" json:"total_value,omitempty"`
	Distributions   []string `yaml:"distributions,omitempty" json:"distributions,omitempty"`
	TotalPercentage string   `yaml:"total_percentage,omitempty" json:"total_percentage,omitempty"`
	OverLimit       *bool    `yaml:"over_limit,omitempty" json:"over_limit,omitempty"`
	Amounts         []string `yaml:"amounts,omitempty" json:"amounts,omitempty"`
}

// scenarioConfig builds the app config for a scenario.
func scenarioConfig(overrides map[string]string) *config.Config {
	cfg := &config.Config{Locale: "id"}
	for key, value := range overrides {
		switch key {
		case "locale":
			cfg.Locale = value
		case "base_path":
			cfg.BasePath = value
		}
	}
	return cfg
}

// runScenario replays a scenario against a fresh in-process app.
func runScenario(ctx context.Context, scenario TestScenario, verbose bool, logger *slog.Logger) error {
	startTime := time.Now()

	fmt.Printf("\n> Running: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("  %s\n", scenario.Description)
	}

	cfg := scenarioConfig(scenario.ConfigOverrides)
	a := app.NewWithStore(cfg, machine.NewStore(machine.StoreConfig{Logger: logger}))
	a.Logger = logger

	for i, action := range scenario.Actions {
		body := jsonutil.MarshalLogged(logger, action)
		if body == nil {
			return fmt.Errorf("action %d: failed to encode", i)
		}

		resp := a.HandleRequest(ctx, app.Request{
			Type:   app.RequestTypeHTTP,
			Method: "POST",
			Path:   cfg.BasePath + "/api/actions",
			Body:   body,
		})

		wantStatus := 200
		if i == len(scenario.Actions)-1 && scenario.ExpectStatus != 0 {
			wantStatus = scenario.ExpectStatus
		}
		if resp.StatusCode != wantStatus {
			return fmt.Errorf("action %d (%s): got status %d, want %d: %s",
				i, action.Type, resp.StatusCode, wantStatus, string(resp.Body))
		}
		if verbose {
			fmt.Printf("    %s -> %d\n", string(body), resp.StatusCode)
		}
	}

	resp := a.HandleRequest(ctx, app.Request{Type: app.RequestTypeHTTP, Method: "GET", Path: cfg.BasePath + "/api/state"})
	var view app.View
	if err := json.Unmarshal(resp.Body, &view); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	if err := checkExpectation(scenario.Expect, view); err != nil {
		return err
	}

	fmt.Printf("  PASSED (%s)\n", time.Since(startTime).Round(time.Microsecond))
	return nil
}

// checkExpectation compares the final view with the expectation.
func checkExpectation(expect Expectation, view app.View) error {
	var problems []string

	if expect.TotalValue != nil && view.TotalValue != *expect.TotalValue {
		problems = append(problems, fmt.Sprintf("total_value = %q, want %q", view.TotalValue, *expect.TotalValue))
	}

	if expect.Distributions != nil {
		got := make([]string, len(view.Distributions))
		for i, d := range view.Distributions {
			got[i] = d.Percentage
		}
		if !slices.Equal(got, expect.Distributions) {
			problems = append(problems, fmt.Sprintf("distributions = %v, want %v", got, expect.Distributions))
		}
	}

	if expect.TotalPercentage != "" && view.TotalPercentage != expect.TotalPercentage {
		problems = append(problems, fmt.Sprintf("total_percentage = %s, want %s", view.TotalPercentage, expect.TotalPercentage))
	}

	if expect.OverLimit != nil && view.OverLimit != *expect.OverLimit {
		problems = append(problems, fmt.Sprintf("over_limit = %v, want %v", view.OverLimit, *expect.OverLimit))
	}

	if expect.Amounts != nil {
		got := make([]string, len(view.Distributions))
		for i, d := range view.Distributions {
			got[i] = d.FormattedAmount
		}
		if !slices.Equal(got, expect.Amounts) {
			problems = append(problems, fmt.Sprintf("amounts = %v, want %v", got, expect.Amounts))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}
