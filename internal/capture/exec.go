package capture

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single capture when none is configured.
const DefaultTimeout = 15 * time.Second

// ExecRecognizer runs an external speech-to-text program and reads the
// transcript from its standard output.
type ExecRecognizer struct {
	Command []string
	Timeout time.Duration

	lookPath func(string) (string, error)
}

// NewExecRecognizer splits command on whitespace. An empty command gives a
// recognizer that is never available.
func NewExecRecognizer(command string, timeout time.Duration) *ExecRecognizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRecognizer{
		Command:  strings.Fields(command),
		Timeout:  timeout,
		lookPath: exec.LookPath,
	}
}

// Available reports whether the command is configured and resolvable.
func (r *ExecRecognizer) Available() bool {
	if r == nil || len(r.Command) == 0 {
		return false
	}
	lookPath := r.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	_, err := lookPath(r.Command[0])
	return err == nil
}

// Recognize runs the command once. Output is trimmed; empty output means
// the capture ended without speech.
func (r *ExecRecognizer) Recognize(ctx context.Context) (string, error) {
	if len(r.Command) == 0 {
		return "", ErrUnsupported
	}
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Command[0], r.Command[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", r.Command[0], err, msg)
		}
		return "", fmt.Errorf("%s: %w", r.Command[0], err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
