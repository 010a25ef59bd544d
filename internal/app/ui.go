package app

import (
	"bytes"

	"github.com/mpz/devops/tools/value-distribution/internal/app/templates"
	"github.com/mpz/devops/tools/value-distribution/internal/machine"
	"github.com/mpz/devops/tools/value-distribution/internal/numeric"
	"github.com/mpz/devops/tools/value-distribution/internal/types"
)

// View is the render-ready projection of the form state. Numbers are carried
// as strings because they may be NaN.
type View struct {
	TotalValue        string             `json:"total_value"`
	Distributions     []DistributionView `json:"distributions"`
	TotalPercentage   string             `json:"total_percentage"`
	OverLimit         bool               `json:"over_limit"`
	ShowDistributions bool               `json:"show_distributions"`
	CanRemove         bool               `json:"can_remove"`
	Locale            string             `json:"locale"`
}

// DistributionView is one rendered entry of the distribution list. Index
// addresses the entry in the state and may skip over holes.
type DistributionView struct {
	Index           int    `json:"index"`
	Position        int    `json:"position"`
	Percentage      string `json:"percentage"`
	Amount          string `json:"amount"`
	FormattedAmount string `json:"formatted_amount"`
}

// FormData contains data passed to the form template.
type FormData struct {
	BasePath string
	View     View
}

func (a *App) buildView(state types.State) View {
	view := View{
		TotalValue:        state.TotalValue,
		Distributions:     make([]DistributionView, 0, len(state.Distributions)),
		TotalPercentage:   numeric.FormatNumber(machine.TotalPercentage(state.Distributions)),
		OverLimit:         machine.IsOverLimit(state.Distributions),
		ShowDistributions: state.TotalValue != "",
		CanRemove:         len(state.Distributions) > 1,
		Locale:            a.Formatter.Locale(),
	}

	for i, pct := range state.Distributions {
		if pct == types.Hole {
			continue
		}
		amount := machine.Amount(state.TotalValue, pct)
		view.Distributions = append(view.Distributions, DistributionView{
			Index:           i,
			Position:        i + 1,
			Percentage:      machine.InputValue(pct),
			Amount:          numeric.FormatNumber(amount),
			FormattedAmount: a.Formatter.Format(amount),
		})
	}

	return view
}

// renderForm renders the form template with the given data.
func renderForm(data FormData) (string, error) {
	var buf bytes.Buffer
	if err := templates.Execute(&buf, "form.html", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// getFormHTML returns the HTML for the current state of the form.
func (a *App) getFormHTML() (string, error) {
	return renderForm(FormData{
		BasePath: a.Config.BasePath,
		View:     a.GetView(),
	})
}
