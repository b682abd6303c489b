// Package otel records structured events for herbal.
//
// Events are typed structs written as JSONL. The Logger hands them to a
// background writer through a buffered channel so the UI turn never waits on
// disk. An attached RingBuffer keeps the most recent events for the debug panel.
package otel

import (
	"encoding/json"
	"time"
)

// Level is an event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind names an event as "<subsystem>.<action>".
type EventKind string

const (
	// Catalog
	KindCatalogLoad      EventKind = "catalog.load"
	KindCatalogError     EventKind = "catalog.error"
	KindCatalogDuplicate EventKind = "catalog.duplicate"

	// Filtering and favorites
	KindFilterApply     EventKind = "filter.apply"
	KindModeSwitch      EventKind = "filter.mode"
	KindFavoriteToggle  EventKind = "favorites.toggle"
	KindFavoritesError  EventKind = "favorites.error"
	KindDetailsOpen     EventKind = "details.open"
	KindDetailsNotFound EventKind = "details.not_found"

	// Voice capture
	KindCaptureStart       EventKind = "capture.start"
	KindCaptureStop        EventKind = "capture.stop"
	KindCaptureResult      EventKind = "capture.result"
	KindCaptureError       EventKind = "capture.error"
	KindCaptureUnsupported EventKind = "capture.unsupported"

	KindThemeToggle EventKind = "theme.toggle"
	KindStoreError  EventKind = "store.error"

	// UI
	KindKeyPress   EventKind = "ui.key"
	KindViewRender EventKind = "ui.render"

	// API
	KindRequest EventKind = "api.request"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Emitted only when HERBAL_TRACE is set.
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is a single observability record. Kind and Time are always set;
// everything else is optional and omitted when empty.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"` // "ui", "catalog", "api", "main"
	SessionID string         `json:"session_id,omitempty"`
	User      string         `json:"user,omitempty"`
	Plant     string         `json:"plant,omitempty"`
	Mode      string         `json:"mode,omitempty"`
	Query     string         `json:"query,omitempty"`
	System    string         `json:"system,omitempty"`
	Source    string         `json:"source,omitempty"`
	Count     int            `json:"count,omitempty"`
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON writes Dur as fractional milliseconds.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
