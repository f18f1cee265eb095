package engine_test

import (
	"testing"

	"github.com/northlake-iot/atdrv/engine"
)

type countingSignal struct{ n int }

func (s *countingSignal) Notify() { s.n++ }

func pushString(f *engine.RXFramer, s string) {
	for i := 0; i < len(s); i++ {
		f.PushByte(s[i])
	}
}

func drainLines(t *testing.T, f *engine.RXFramer) []string {
	t.Helper()
	var out []string
	for {
		line, ok := f.PopLine()
		if !ok {
			break
		}
		out = append(out, string(line))
	}
	return out
}

// Testable property 5 — framer round-trip: for any sequence of bytes whose
// delimiters partition it into non-empty lines, PopLine yields exactly
// those lines, in order.
func TestRXFramer_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single CRLF line", "AT\r\n", []string{"AT"}},
		{"multiple CRLF lines", "AT+CSQ\r\n+CSQ: 15,99\r\nOK\r\n", []string{"AT+CSQ", "+CSQ: 15,99", "OK"}},
		{"LF only", "line1\nline2\n", []string{"line1", "line2"}},
		{"NUL delimiter", "line1\x00line2\x00", []string{"line1", "line2"}},
		{"consecutive delimiters drop empty lines", "AT\r\n\r\n\r\nOK\r\n", []string{"AT", "OK"}},
		{"mixed delimiters", "a\rb\nc\x00d\r\n", []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := &countingSignal{}
			f := engine.NewRXFramer(64, '>', sig)
			pushString(f, tt.input)
			got := drainLines(t, f)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d lines %v, want %d lines %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRXFramer_BarePromptLine(t *testing.T) {
	sig := &countingSignal{}
	f := engine.NewRXFramer(64, '>', sig)

	pushString(f, "AT+CMGS=\"123\"\r\n")
	f.PushByte('>') // bare prompt, no delimiter

	got := drainLines(t, f)
	want := []string{"AT+CMGS=\"123\"", ">"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRXFramer_ExceptionalByteOnlyFiresWhenRingHasNotGrown(t *testing.T) {
	sig := &countingSignal{}
	f := engine.NewRXFramer(64, '>', sig)

	// '>' arriving mid-line (ring has grown since the last line-end) is
	// just an ordinary data byte, not a prompt signal.
	pushString(f, "+CSQ: >5,99\r\n")
	got := drainLines(t, f)
	if len(got) != 1 || got[0] != "+CSQ: >5,99" {
		t.Errorf("got %v, want single line %q", got, "+CSQ: >5,99")
	}
}

func TestRXFramer_IsEmpty(t *testing.T) {
	sig := &countingSignal{}
	f := engine.NewRXFramer(16, '>', sig)
	if !f.IsEmpty() {
		t.Error("fresh framer should be empty")
	}
	pushString(f, "AT\r\n")
	if f.IsEmpty() {
		t.Error("framer with a pending line should not be empty")
	}
	f.PopLine()
	if !f.IsEmpty() {
		t.Error("framer should be empty again after draining")
	}
}

func TestRXFramer_SignalsOnceCompletePerLine(t *testing.T) {
	sig := &countingSignal{}
	f := engine.NewRXFramer(16, '>', sig)
	pushString(f, "AT\r\nOK\r\n")
	if sig.n != 2 {
		t.Errorf("signal fired %d times, want 2", sig.n)
	}
}

func TestRXFramer_NonPowerOfTwoCapacityPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-power-of-two capacity")
		}
	}()
	engine.NewRXFramer(17, '>', nil)
}
