package otel

import "testing"

func TestTraceFlag(t *testing.T) {
	orig := TraceEnabled()
	t.Cleanup(func() { setTraceEnabled(orig) })

	for _, want := range []bool{true, false} {
		setTraceEnabled(want)
		if got := TraceEnabled(); got != want {
			t.Errorf("TraceEnabled() = %v, want %v", got, want)
		}
	}
}
