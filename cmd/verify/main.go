// Package main replays YAML scenarios against the calculator's request router.
// Every scenario runs against a fresh in-process app, no server is started.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mpz/devops/tools/value-distribution/internal/config"
)

// summary counts scenario outcomes.
type summary struct {
	passed, failed, skipped int
}

func (s summary) print() {
	separator := strings.Repeat("=", 60)
	fmt.Printf("\n%s\n", separator)
	if s.failed > 0 {
		fmt.Printf("  Scenarios: %d passed, %d failed, %d skipped\n", s.passed, s.failed, s.skipped)
	} else {
		fmt.Printf("  Scenarios: all %d passed, %d skipped\n", s.passed, s.skipped)
	}
	fmt.Printf("%s\n", separator)
}

func loadScenarios(path string) ([]TestScenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	var scenarios []TestScenario
	if err := yaml.Unmarshal(raw, &scenarios); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	return scenarios, nil
}

func main() {
	scenarioFile := flag.String("scenarios", "cmd/verify/fixtures/scenarios.yaml", "path to the scenarios file")
	verbose := flag.Bool("verbose", false, "print every dispatched action")
	filter := flag.String("filter", "", "run only scenarios whose name contains this text")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	if err := config.LoadDotEnv(filepath.Join("cmd", "verify", ".env")); err != nil {
		logger.Warn("ignoring .env file", slog.String("error", err.Error()))
	}

	scenarios, err := loadScenarios(*scenarioFile)
	if err != nil {
		logger.Error("cannot load scenarios", slog.String("file", *scenarioFile), slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	var result summary
	for _, scenario := range scenarios {
		if *filter != "" && !strings.Contains(scenario.Name, *filter) {
			result.skipped++
			continue
		}
		if err := runScenario(ctx, scenario, *verbose, logger); err != nil {
			fmt.Printf("  FAILED: %v\n", err)
			result.failed++
			continue
		}
		result.passed++
	}

	result.print()
	if result.failed > 0 {
		os.Exit(1)
	}
}
