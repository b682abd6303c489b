// Package capture turns spoken input into query text.
//
// A Recognizer does the speech-to-text work. A Controller sits in front of it
// and guarantees at most one capture is active: toggling while listening
// stops the capture instead of starting a second one, and every terminal
// outcome (transcript, error or a silent end) clears the listening state.
package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/abelbrown/herbal/internal/otel"
)

// ErrUnsupported is returned by Toggle when no recognizer is usable.
var ErrUnsupported = errors.New("voice search is not supported on this system")

// Recognizer produces at most one transcript per call. An empty transcript
// with a nil error means the capture ended without speech.
type Recognizer interface {
	Available() bool
	Recognize(ctx context.Context) (string, error)
}

// Result is the single outcome of one capture.
type Result struct {
	Seq        uint64
	Transcript string
	Err        error
}

// Controller enforces a single active capture. It is driven from one
// goroutine (the UI update loop); only the run functions returned by Toggle
// execute elsewhere.
type Controller struct {
	rec       Recognizer
	log       *otel.Logger
	seq       uint64
	listening bool
	cancel    context.CancelFunc
}

// NewController wraps rec. A nil rec is treated as unavailable.
func NewController(rec Recognizer, log *otel.Logger) *Controller {
	return &Controller{rec: rec, log: log}
}

// Listening reports whether a capture is active.
func (c *Controller) Listening() bool { return c.listening }

// Available reports whether Toggle can start a capture.
func (c *Controller) Available() bool { return c.rec != nil && c.rec.Available() }

// Toggle starts a capture, or stops the active one.
//
// When starting, the returned run function performs the capture and must be
// called exactly once, typically on another goroutine; its Result goes back
// through Finish. When stopping, run is nil; an active capture can always be
// stopped, even if the recognizer has since become unavailable.
// ErrUnsupported is returned without any state change when a capture cannot
// be started.
func (c *Controller) Toggle(ctx context.Context) (run func() Result, err error) {
	if c.listening {
		c.Stop()
		return nil, nil
	}

	if !c.Available() {
		c.log.Warn(otel.KindCaptureUnsupported, "capture", ErrUnsupported.Error())
		return nil, ErrUnsupported
	}

	c.seq++
	seq := c.seq
	capCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.listening = true
	c.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCaptureStart, Comp: "capture", Count: int(seq)})

	rec := c.rec
	return func() Result {
		text, err := rec.Recognize(capCtx)
		return Result{Seq: seq, Transcript: text, Err: err}
	}, nil
}

// Stop cancels the active capture, if any. Its result will be ignored.
func (c *Controller) Stop() {
	if !c.listening {
		return
	}
	c.cancel()
	c.cancel = nil
	c.listening = false
	c.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCaptureStop, Comp: "capture", Count: int(c.seq)})
}

// Finish consumes the result of a run function. It reports the transcript
// and whether it should be applied to the query. err is the failure of the
// current capture; results of stopped or superseded captures are ignored
// entirely, errors included.
func (c *Controller) Finish(r Result) (text string, apply bool, err error) {
	if !c.listening || r.Seq != c.seq {
		return "", false, nil
	}
	c.cancel()
	c.cancel = nil
	c.listening = false

	switch {
	case r.Err != nil:
		err := fmt.Errorf("recognize: %w", r.Err)
		c.log.Error(otel.KindCaptureError, "capture", err)
		return "", false, err
	case r.Transcript == "":
		c.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCaptureStop, Comp: "capture", Count: int(r.Seq), Msg: "ended without speech"})
		return "", false, nil
	default:
		c.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCaptureResult, Comp: "capture", Count: int(r.Seq), Query: r.Transcript})
		return r.Transcript, true, nil
	}
}
