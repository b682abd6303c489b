package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/herbal/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by the debug
// panel's border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if the DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders session stats and recent events.
// Pure function with no side effects. Returns empty string if ring is nil.
func debugOverlay(st Styles, ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, st.DebugHeader.Render("Session Stats"))
	lines = append(lines, fmt.Sprintf("  Catalog:    %d loads, %d errors, %d duplicates",
		stats[otel.KindCatalogLoad], stats[otel.KindCatalogError], stats[otel.KindCatalogDuplicate]))
	lines = append(lines, fmt.Sprintf("  Favorites:  %d toggles, %d errors",
		stats[otel.KindFavoriteToggle], stats[otel.KindFavoritesError]))
	lines = append(lines, fmt.Sprintf("  Voice:      %d started, %d results, %d errors",
		stats[otel.KindCaptureStart], stats[otel.KindCaptureResult], stats[otel.KindCaptureError]))
	lines = append(lines, fmt.Sprintf("  Store:      %d errors", stats[otel.KindStoreError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, st.DebugHeader.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-20s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Plant != "" {
			line += "  " + truncateRunes(e.Plant, 20)
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		lines = append(lines, line)
	}

	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 76
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return st.DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(st Styles, width int) string {
	keys := st.StatusKey.Render("?") + st.StatusText.Render(":close")
	return st.StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
