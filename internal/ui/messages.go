// Package ui provides the Bubble Tea TUI for herbal.
package ui

import "github.com/abelbrown/herbal/internal/capture"

// CaptureDone carries the single result of a voice capture.
type CaptureDone struct {
	Result capture.Result
}

// Copied is sent when the clipboard write finishes.
type Copied struct {
	Name string
	Err  error
}

// LoggedOut is sent when the stored login has been cleared.
type LoggedOut struct {
	Err error
}
