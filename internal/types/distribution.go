// Package types defines core types for the value distribution calculator.
package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mpz/devops/tools/value-distribution/internal/constants"
	internalerrors "github.com/mpz/devops/tools/value-distribution/internal/errors"
	"github.com/mpz/devops/tools/value-distribution/internal/numeric"
)

// ActionType identifies a state transition of the form.
type ActionType string

const (
	// ActionChangeTotalValue replaces the total value.
	ActionChangeTotalValue ActionType = "change_total_value"
	// ActionAddDistribution appends a distribution holding the remaining percentage.
	ActionAddDistribution ActionType = "add_distribution"
	// ActionChangeDistributionPercentage replaces the percentage at an index.
	ActionChangeDistributionPercentage ActionType = "change_distribution_percentage"
	// ActionRemoveDistribution removes the distribution at an index.
	ActionRemoveDistribution ActionType = "remove_distribution"
	// ActionReset restores the initial state.
	ActionReset ActionType = "reset"
)

// ValidActionTypes contains all action types the form understands.
var ValidActionTypes = map[ActionType]bool{
	ActionChangeTotalValue:             true,
	ActionAddDistribution:              true,
	ActionChangeDistributionPercentage: true,
	ActionRemoveDistribution:           true,
	ActionReset:                        true,
}

// Markers for list positions that hold no typed value. Typed input never
// contains NUL, so they cannot collide with a percentage.
const (
	// Hole is a position skipped over by a write past the end of the list.
	// Sums and renders pass over it.
	Hole = "\x00hole"
	// Unset is a hole that survived a copy of the list. It renders as an
	// empty input and counts as NaN.
	Unset = "\x00unset"
)

// IsBlank reports whether d is one of the markers rather than typed input.
func IsBlank(d string) bool {
	return d == Hole || d == Unset
}

// State is the complete state of the form.
type State struct {
	// TotalValue is the raw total as typed by the user. It may be empty.
	TotalValue string `json:"total_value"`
	// Distributions holds the raw percentage of each entry. Position is the
	// only identity an entry has. Entries may be Hole or Unset.
	Distributions []string `json:"distributions"`
}

// Clone returns a copy of the state that shares no memory with s.
func (s State) Clone() State {
	dists := make([]string, len(s.Distributions))
	copy(dists, s.Distributions)
	return State{
		TotalValue:    s.TotalValue,
		Distributions: dists,
	}
}

// RawValue is user input carried verbatim. It decodes from a JSON string or
// a JSON number so API clients may send either. Numbers are stored in their
// canonical text form, so 1e2 becomes "100".
type RawValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = RawValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrap(err, "raw value must be a string or a number")
	}
	f, err := n.Float64()
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return errors.Wrapf(err, "invalid number %s", n)
	}
	*v = RawValue(numeric.FormatNumber(f))
	return nil
}

// Action is a single state transition request.
type Action struct {
	// Type identifies the transition.
	Type ActionType `json:"type" yaml:"type"`
	// Value is the new total for change_total_value.
	Value RawValue `json:"value,omitempty" yaml:"value,omitempty"`
	// Index addresses an entry for change and remove.
	Index *int `json:"index,omitempty" yaml:"index,omitempty"`
	// NewValue is the new percentage for change_distribution_percentage.
	NewValue RawValue `json:"new_value,omitempty" yaml:"new_value,omitempty"`
}

// ChangeTotalValue returns a change_total_value action.
func ChangeTotalValue(value string) Action {
	return Action{Type: ActionChangeTotalValue, Value: RawValue(value)}
}

// AddDistribution returns an add_distribution action.
func AddDistribution() Action {
	return Action{Type: ActionAddDistribution}
}

// ChangeDistributionPercentage returns a change_distribution_percentage action.
func ChangeDistributionPercentage(index int, newValue string) Action {
	return Action{Type: ActionChangeDistributionPercentage, Index: &index, NewValue: RawValue(newValue)}
}

// RemoveDistribution returns a remove_distribution action.
func RemoveDistribution(index int) Action {
	return Action{Type: ActionRemoveDistribution, Index: &index}
}

// Reset returns a reset action.
func Reset() Action {
	return Action{Type: ActionReset}
}

// Validate checks that the action is well formed for a client request.
// Returns nil if valid, or an error marked with ErrInvalidParameter or
// ErrUnknownAction.
func (a *Action) Validate() error {
	if !ValidActionTypes[a.Type] {
		err := &ValidationError{Field: "type", Message: "unknown action type: " + string(a.Type)}
		return errors.Mark(err, internalerrors.ErrUnknownAction)
	}
	if strings.ContainsRune(string(a.Value), 0) || strings.ContainsRune(string(a.NewValue), 0) {
		err := &ValidationError{Field: "value", Message: "value must not contain NUL"}
		return errors.Mark(err, internalerrors.ErrInvalidParameter)
	}
	switch a.Type {
	case ActionChangeDistributionPercentage, ActionRemoveDistribution:
		if a.Index == nil {
			err := &ValidationError{Field: "index", Message: "index is required for " + string(a.Type)}
			return errors.Mark(err, internalerrors.ErrInvalidParameter)
		}
		if *a.Index >= constants.MaxDistributions || *a.Index <= -constants.MaxDistributions {
			err := &ValidationError{
				Field:   "index",
				Message: "index " + strconv.Itoa(*a.Index) + " is out of range",
			}
			return errors.Mark(err, internalerrors.ErrInvalidParameter)
		}
	}
	return nil
}

// Event records one dispatched action in the activity log.
type Event struct {
	ID            string     `json:"id"`
	Sequence      int64      `json:"sequence"`
	Type          ActionType `json:"type"`
	Index         *int       `json:"index,omitempty"`
	Distributions int        `json:"distributions"`
	Timestamp     time.Time  `json:"timestamp"`
}

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
