// Package machine provides the state store for the value distribution form.
//
// Every change to the form goes through Reduce, a pure function from the
// current state and one action to the next state. Store holds the single
// live state of the process and serializes dispatches against it.
package machine

import (
	"math"

	"github.com/mpz/devops/tools/value-distribution/internal/constants"
	"github.com/mpz/devops/tools/value-distribution/internal/numeric"
	"github.com/mpz/devops/tools/value-distribution/internal/types"
)

// InitialState returns the state of a fresh form: no total and a single
// distribution holding the full percentage.
func InitialState() types.State {
	return types.State{
		TotalValue:    "",
		Distributions: []string{constants.InitialPercentage},
	}
}

// Reduce applies action to state and returns the resulting state. The input
// state is never modified. Unknown action types return the state unchanged.
//
// Indices are not bounds checked against the current list: writing past the
// end leaves holes in the gap, a negative write is ignored, a negative removal
// counts from the end and removing past the end is a no-op. Holes are skipped
// by sums and renders until an add, change or remove copies the list, which
// turns them into unset entries.
func Reduce(state types.State, action types.Action) types.State {
	switch action.Type {
	case types.ActionChangeTotalValue:
		next := state.Clone()
		next.TotalValue = string(action.Value)
		return next

	case types.ActionAddDistribution:
		total := TotalPercentage(state.Distributions)
		var remaining float64
		if total > constants.FullPercentage {
			remaining = 0
		} else {
			remaining = constants.FullPercentage - total
		}
		next := copyList(state)
		next.Distributions = append(next.Distributions, numeric.FormatNumber(remaining))
		return next

	case types.ActionReset:
		return InitialState()

	case types.ActionChangeDistributionPercentage:
		next := copyList(state)
		if action.Index == nil || *action.Index < 0 {
			return next
		}
		index := *action.Index
		for len(next.Distributions) <= index {
			next.Distributions = append(next.Distributions, types.Hole)
		}
		next.Distributions[index] = string(action.NewValue)
		return next

	case types.ActionRemoveDistribution:
		next := copyList(state)
		// A missing index removes the first entry.
		index := 0
		if action.Index != nil {
			index = *action.Index
		}
		if index < 0 {
			index += len(next.Distributions)
			if index < 0 {
				index = 0
			}
		}
		if index >= len(next.Distributions) {
			return next
		}
		next.Distributions = append(next.Distributions[:index], next.Distributions[index+1:]...)
		return next

	default:
		return state
	}
}

// copyList clones state for a transition that rebuilds the list. Holes do not
// survive the rebuild.
func copyList(state types.State) types.State {
	next := state.Clone()
	for i, d := range next.Distributions {
		if d == types.Hole {
			next.Distributions[i] = types.Unset
		}
	}
	return next
}

// TotalPercentage sums the leading integer of every distribution. Holes are
// skipped. The result is NaN when any other entry has no leading integer.
func TotalPercentage(distributions []string) float64 {
	total := 0.0
	for _, d := range distributions {
		switch d {
		case types.Hole:
		case types.Unset:
			total = math.NaN()
		default:
			total += numeric.ParsePercentage(d)
		}
	}
	return total
}

// Amount returns the share of total described by percentage. An unset
// percentage has no amount.
func Amount(total, percentage string) float64 {
	if types.IsBlank(percentage) {
		return math.NaN()
	}
	return numeric.ToNumber(total) * numeric.ToNumber(percentage) / 100
}

// InputValue returns the text a distribution shows in its input.
func InputValue(percentage string) string {
	if types.IsBlank(percentage) {
		return ""
	}
	return percentage
}

// IsOverLimit reports whether the distributed percentage exceeds the total.
func IsOverLimit(distributions []string) bool {
	return TotalPercentage(distributions) > constants.FullPercentage
}
