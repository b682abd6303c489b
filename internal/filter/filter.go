// Package filter decides which catalog records are visible for a search.
// Apply is pure: same inputs, same output, catalog order preserved.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abelbrown/herbal/internal/catalog"
)

// Mode selects which fields the query is matched against.
type Mode string

const (
	// ModeDisease matches the query against diseases and body systems.
	ModeDisease Mode = "disease"
	// ModePlant matches the query against name, latin name and parts used.
	ModePlant Mode = "plant"
)

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("unknown search mode")

// ParseMode accepts "disease" or "plant" in any case.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDisease:
		return ModeDisease, nil
	case ModePlant:
		return ModePlant, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Other returns the mode a tab switch moves to.
func (m Mode) Other() Mode {
	if m == ModePlant {
		return ModeDisease
	}
	return ModePlant
}

// Placeholder is the query prompt shown for m.
func Placeholder(m Mode) string {
	if m == ModePlant {
		return "Search plant (e.g., Tulsi, Ashwagandha, Neem)…"
	}
	return "Search disease (e.g., diabetes, cold, anxiety)…"
}

// State holds the user's search inputs. The zero value matches everything
// in disease mode.
type State struct {
	Mode   Mode
	Query  string
	System string
}

// Apply returns the records of plants that pass both the system filter and
// the text filter for state. Matching is case-insensitive substring
// containment, so "an" matches both "anxiety" and "pancreas". Inputs are not
// trimmed. The result is never nil.
func Apply(plants []catalog.Plant, state State) []catalog.Plant {
	query := strings.ToLower(state.Query)
	system := strings.ToLower(state.System)

	result := make([]catalog.Plant, 0, len(plants))
	for _, p := range plants {
		if system != "" && !anyContains(p.Systems, system) {
			continue
		}
		if query != "" && !matchesText(p, state.Mode, query) {
			continue
		}
		result = append(result, p)
	}
	return result
}

// matchesText expects query already lower-cased.
func matchesText(p catalog.Plant, mode Mode, query string) bool {
	if mode == ModePlant {
		return contains(p.Name, query) ||
			contains(p.LatinName, query) ||
			contains(p.PartsUsed, query)
	}
	return anyContains(p.Diseases, query) || anyContains(p.Systems, query)
}

func contains(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), needle)
}

func anyContains(fields []string, needle string) bool {
	for _, f := range fields {
		if contains(f, needle) {
			return true
		}
	}
	return false
}
