// Package app provides the core application logic for the value distribution calculator.
package app

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mpz/devops/tools/value-distribution/internal/config"
	"github.com/mpz/devops/tools/value-distribution/internal/constants"
	internalerrors "github.com/mpz/devops/tools/value-distribution/internal/errors"
	"github.com/mpz/devops/tools/value-distribution/internal/machine"
	"github.com/mpz/devops/tools/value-distribution/internal/numeric"
	"github.com/mpz/devops/tools/value-distribution/internal/numfmt"
	"github.com/mpz/devops/tools/value-distribution/internal/types"
)

// App is the main application instance.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     *machine.Store
	Formatter *numfmt.Formatter
}

// New creates a new App instance.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := config.NewLogger()

	formatter, err := numfmt.New(cfg.Locale)
	if err != nil {
		return nil, errors.Wrap(err, "create number formatter")
	}
	logger.Info("formatting amounts", slog.String("locale", formatter.Locale()))

	store := machine.NewStore(machine.StoreConfig{
		Logger:    logger,
		MaxEvents: cfg.MaxEvents,
	})

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Formatter: formatter,
	}, nil
}

// NewWithStore creates an App with a pre-configured store (for testing).
// An invalid locale falls back to the default one.
func NewWithStore(cfg *config.Config, store *machine.Store) *App {
	logger := config.NewLogger()

	formatter, err := numfmt.New(cfg.Locale)
	if err != nil {
		logger.Warn("invalid locale, using default",
			slog.String("locale", cfg.Locale),
			slog.String("error", err.Error()))
		formatter = numfmt.Default()
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Formatter: formatter,
	}
}

// StatusResponse contains application status.
type StatusResponse struct {
	Status          string `json:"status"`
	Locale          string `json:"locale"`
	Distributions   int    `json:"distributions"`
	TotalPercentage string `json:"total_percentage"`
	OverLimit       bool   `json:"over_limit"`
	Events          int    `json:"events"`
}

// GetStatus returns the current application status.
func (a *App) GetStatus() StatusResponse {
	state := a.Store.State()

	return StatusResponse{
		Status:          "ok",
		Locale:          a.Formatter.Locale(),
		Distributions:   len(state.Distributions),
		TotalPercentage: numeric.FormatNumber(machine.TotalPercentage(state.Distributions)),
		OverLimit:       machine.IsOverLimit(state.Distributions),
		Events:          len(a.Store.Events()),
	}
}

// GetView returns the render-ready view of the current state.
func (a *App) GetView() View {
	return a.buildView(a.Store.State())
}

// Dispatch validates and applies one action, returning the resulting view.
func (a *App) Dispatch(ctx context.Context, action types.Action) (View, error) {
	if err := action.Validate(); err != nil {
		return View{}, err
	}

	state, err := a.Store.Dispatch(ctx, action)
	if err != nil {
		return View{}, err
	}
	return a.buildView(state), nil
}

// ListEvents returns the activity log.
func (a *App) ListEvents() []types.Event {
	return a.Store.Events()
}

// SubmitForm applies a form posted without script support. The typed total
// and percentages are applied first, as they would have been keystroke by
// keystroke, and then the submitted control's action. The whole form is
// applied as one batch.
func (a *App) SubmitForm(ctx context.Context, form url.Values) error {
	_, err := a.Store.DispatchAll(ctx, func(current types.State) ([]types.Action, error) {
		actions, err := formActions(current, form)
		if err != nil {
			return nil, err
		}
		for _, action := range actions {
			if err := action.Validate(); err != nil {
				return nil, err
			}
		}
		return actions, nil
	})
	return err
}

// formActions translates a submitted form into the actions it implies. The
// submitted percentages line up with the rendered rows, which skip holes.
func formActions(current types.State, form url.Values) ([]types.Action, error) {
	submitted := form["distribution"]
	if len(submitted) > constants.MaxDistributions {
		return nil, errors.Wrapf(internalerrors.ErrInvalidForm, "too many distributions: %d", len(submitted))
	}

	var rows []int
	for i, d := range current.Distributions {
		if d != types.Hole {
			rows = append(rows, i)
		}
	}

	var actions []types.Action
	if form.Has("total_value") && form.Get("total_value") != current.TotalValue {
		actions = append(actions, types.ChangeTotalValue(form.Get("total_value")))
	}
	for i, v := range submitted {
		index := len(current.Distributions) + i - len(rows)
		if i < len(rows) {
			index = rows[i]
			if machine.InputValue(current.Distributions[index]) == v {
				continue
			}
		}
		actions = append(actions, types.ChangeDistributionPercentage(index, v))
	}

	switch cmd := form.Get("action"); {
	case cmd == "" || cmd == "update":
	case cmd == "add":
		actions = append(actions, types.AddDistribution())
	case cmd == "reset":
		actions = append(actions, types.Reset())
	case strings.HasPrefix(cmd, "remove:"):
		index, err := strconv.Atoi(strings.TrimPrefix(cmd, "remove:"))
		if err != nil {
			return nil, errors.Wrapf(internalerrors.ErrInvalidForm, "invalid remove index %q", cmd)
		}
		actions = append(actions, types.RemoveDistribution(index))
	default:
		return nil, errors.Wrapf(internalerrors.ErrInvalidForm, "unknown form action %q", cmd)
	}

	return actions, nil
}
