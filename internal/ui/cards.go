package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/herbal/internal/filter"
	"github.com/abelbrown/herbal/internal/session"
)

// cardHeight is the number of lines one card takes in the list.
const cardHeight = 2

// emptyMessage is shown when no record passes the filter.
const emptyMessage = "No plants match. Try another search, switch mode with Tab, or press x to reset the system filter."

// renderCards renders the card list, scrolled so the cursor stays visible.
func renderCards(st Styles, cards []session.Card, cursor, width, height int) string {
	if len(cards) == 0 {
		return st.Empty.Render(emptyMessage)
	}

	perPage := height / cardHeight
	if perPage < 1 {
		perPage = 1
	}
	offset := calcScrollOffset(cursor, len(cards), perPage)

	var b strings.Builder
	for i := offset; i < len(cards) && i < offset+perPage; i++ {
		b.WriteString(renderCard(st, cards[i], i == cursor, width))
		b.WriteString("\n")
	}
	return b.String()
}

// calcScrollOffset returns the first card index to draw so that cursor is
// within a page of perPage cards.
func calcScrollOffset(cursor, total, perPage int) int {
	if total == 0 || cursor < 0 {
		return 0
	}
	if cursor >= total {
		cursor = total - 1
	}
	if cursor >= perPage {
		return cursor - perPage + 1
	}
	return 0
}

// renderCard renders the name line and the chip line of one card.
func renderCard(st Styles, c session.Card, selected bool, width int) string {
	star := "  "
	if c.Favorite {
		star = st.Star.Render("★ ")
	}

	nameStyle := st.Name
	if selected {
		nameStyle = st.Selected
	}
	name := nameStyle.Render(c.Name)
	latin := st.Latin.Render(truncateRunes(c.LatinName, width-lipgloss.Width(name)-6))
	top := star + name + " " + latin

	var chips []string
	for _, d := range c.Diseases {
		chips = append(chips, st.Chip.Render(d))
	}
	for _, s := range c.Systems {
		chips = append(chips, st.SystemChip.Render(s))
	}
	bottom := "    " + strings.Join(chips, "")
	if lipgloss.Width(bottom) > width && width > 0 {
		bottom = lipgloss.NewStyle().MaxWidth(width).Render(bottom)
	}
	return top + "\n" + bottom
}

// renderHeader renders the title, mode tabs, system filter and theme.
func renderHeader(st Styles, mode filter.Mode, system, user string, dark bool, width int) string {
	disease := st.Tab.Render("Disease")
	plant := st.Tab.Render("Plant")
	if mode == filter.ModePlant {
		plant = st.ActiveTab.Render("Plant")
	} else {
		disease = st.ActiveTab.Render("Disease")
	}

	if system == "" {
		system = "All"
	}
	theme := "☀ light"
	if dark {
		theme = "☾ dark"
	}

	left := st.Title.Render("🌿 Herbal") + disease + plant
	right := st.HeaderMeta.Render(fmt.Sprintf("System: %s", system)) +
		st.HeaderMeta.Render(theme) +
		st.HeaderMeta.Render(user)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderStatusBar renders the bottom bar: position or status on the left,
// key hints on the right.
func renderStatusBar(st Styles, cursor, total int, listening bool, status string, width int) string {
	var left string
	switch {
	case listening:
		left = st.Listening.Render("● listening") + " "
	case status != "":
		left = status + " "
	case total == 0:
		left = "0/0 "
	default:
		left = fmt.Sprintf("%d/%d ", cursor+1, total)
	}

	keys := []string{
		st.StatusKey.Render("/") + st.StatusText.Render(":search"),
		st.StatusKey.Render("tab") + st.StatusText.Render(":mode"),
		st.StatusKey.Render("s") + st.StatusText.Render(":system"),
		st.StatusKey.Render("enter") + st.StatusText.Render(":details"),
		st.StatusKey.Render("f") + st.StatusText.Render(":fav"),
		st.StatusKey.Render("v") + st.StatusText.Render(":voice"),
		st.StatusKey.Render("t") + st.StatusText.Render(":theme"),
		st.StatusKey.Render("q") + st.StatusText.Render(":quit"),
	}
	keyHints := strings.Join(keys, " ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(keyHints) - 2
	if padding < 0 {
		padding = 0
	}
	return st.StatusBar.Width(width).Render(left + strings.Repeat(" ", padding) + keyHints)
}

// truncateRunes shortens s to max runes, marking the cut with "…".
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
