package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/herbal/internal/catalog"
)

// detailsOverlay renders the details dialog for d.
func detailsOverlay(st Styles, d catalog.DetailView, favorite bool, width, height int) string {
	var lines []string

	title := st.Title.Render(d.Name)
	if favorite {
		title = st.Star.Render("★ ") + title
	}
	lines = append(lines, title, st.Latin.Render(d.LatinName), "")

	section := func(name, body string, style lipgloss.Style) {
		lines = append(lines, st.Section.Render(name))
		if body == "" {
			body = "-"
		}
		lines = append(lines, style.Render(body), "")
	}

	chips := func(items []string, chip lipgloss.Style) string {
		var parts []string
		for _, it := range items {
			parts = append(parts, chip.Render(it))
		}
		return strings.Join(parts, "")
	}

	plain := lipgloss.NewStyle()
	section("Used For", chips(d.Diseases, st.Chip), plain)
	section("Parts Used", d.PartsUsed, plain)
	section("Preparation", d.Preparation, plain)
	section("Dosage", d.Dosage, plain)
	section("Body Systems", chips(d.Systems, st.SystemChip), plain)
	section("Safety Notes", d.Safety, st.Danger)
	lines = append(lines, st.StatusText.Render("Image: "+d.Image))
	lines = append(lines, "", st.StatusText.Render("esc close · f favorite · y copy"))

	boxWidth := 72
	if boxWidth > width-4 {
		boxWidth = width - 4
	}
	if boxWidth < 24 {
		boxWidth = 24
	}
	box := st.Overlay.Width(boxWidth).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// noticeOverlay renders a blocking message dismissed by any key.
func noticeOverlay(st Styles, msg string, width, height int) string {
	body := msg + "\n\n" + st.StatusText.Render("press any key")
	box := st.Overlay.Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
