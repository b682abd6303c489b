package ui

import (
	"strings"
	"testing"

	"github.com/abelbrown/herbal/internal/session"
)

func TestCalcScrollOffset(t *testing.T) {
	tests := []struct {
		cursor, total, perPage, want int
	}{
		{0, 0, 5, 0},
		{3, 10, 5, 0},
		{4, 10, 5, 0},
		{5, 10, 5, 1},
		{9, 10, 5, 5},
		{20, 10, 5, 5},
	}
	for _, tt := range tests {
		if got := calcScrollOffset(tt.cursor, tt.total, tt.perPage); got != tt.want {
			t.Errorf("calcScrollOffset(%d, %d, %d) = %d, want %d", tt.cursor, tt.total, tt.perPage, got, tt.want)
		}
	}
}

func TestRenderCardsEmpty(t *testing.T) {
	out := renderCards(NewStyles(false), nil, 0, 80, 10)
	if !strings.Contains(out, "No plants match") {
		t.Errorf("got %q", out)
	}
}

func TestRenderCardsKeepsCursorVisible(t *testing.T) {
	var cards []session.Card
	for _, n := range []string{"Amla", "Brahmi", "Ginger", "Neem", "Tulsi"} {
		cards = append(cards, session.Card{Name: n})
	}
	// Room for two cards.
	out := renderCards(NewStyles(false), cards, 4, 80, 4)
	if !strings.Contains(out, "Tulsi") || !strings.Contains(out, "Neem") {
		t.Errorf("cursor card not visible:\n%s", out)
	}
	if strings.Contains(out, "Amla") {
		t.Errorf("first card should be scrolled off:\n%s", out)
	}
}

func TestRenderCardShowsChipsAndStar(t *testing.T) {
	c := session.Card{Name: "Tulsi", LatinName: "Ocimum tenuiflorum", Diseases: []string{"cold"}, Systems: []string{"Respiratory"}, Favorite: true}
	out := renderCard(NewStyles(true), c, false, 80)
	for _, want := range []string{"★", "Tulsi", "Ocimum", "cold", "Respiratory"} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q:\n%s", want, out)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Ashwagandha", 20, "Ashwagandha"},
		{"Ashwagandha", 5, "Ashw…"},
		{"Ashwagandha", 1, "…"},
		{"Ashwagandha", 0, ""},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
