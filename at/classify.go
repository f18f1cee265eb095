package at

import "strings"

// Classification is the result of classifying one inbound line against the
// currently awaited command (§3, §4.4).
type Classification int

const (
	Echo Classification = iota
	TerminalOK
	TerminalError
	TerminalCMEError
	Prompt
	DataForAwaited
	Unsolicited
)

func (c Classification) String() string {
	switch c {
	case Echo:
		return "ECHO"
	case TerminalOK:
		return "TERMINAL_OK"
	case TerminalError:
		return "TERMINAL_ERROR"
	case TerminalCMEError:
		return "TERMINAL_CME_ERROR"
	case Prompt:
		return "PROMPT"
	case DataForAwaited:
		return "DATA_FOR_AWAITED"
	case Unsolicited:
		return "UNSOLICITED"
	default:
		return "UNKNOWN"
	}
}

// Policy is returned by an unsolicited handler to say whether it should
// remain registered (§3).
type Policy int

const (
	Keep Policy = iota
	Remove
)

// EndPolicy selects how a prompt reply is terminated (§3, §6).
type EndPolicy int

const (
	EndCRLF EndPolicy = iota
	EndCtrlZ
)

// Accumulator builds the payload of an in-flight command across successive
// DataForAwaited (and TerminalCMEError) segments, joined by CRLF per §3's
// append rule: the first segment is assigned outright, every subsequent one
// is preceded by CRLF. It is owned exclusively by the RX consumer task —
// the engine never shares it across goroutines without its registry lock.
type Accumulator struct {
	b strings.Builder
}

// Append adds segment to the accumulator per the join rule.
func (a *Accumulator) Append(segment string) {
	if a.b.Len() > 0 {
		a.b.WriteString(CRLF)
	}
	a.b.WriteString(segment)
}

// String returns the accumulated payload.
func (a *Accumulator) String() string { return a.b.String() }

// Reset clears the accumulator, done at the start of each new awaited
// command and immediately after a terminal line is published (§3).
func (a *Accumulator) Reset() { a.b.Reset() }

// Classifier applies §4.4's classification rules against a Table.
type Classifier struct {
	Table *Table

	// Strict, when true, treats a bare (no "+"-prefixed) line arriving
	// while an extended command is awaited as Unsolicited instead of
	// DataForAwaited, provided IsKnownBareMessage reports it as a
	// registered unsolicited message. This is an explicit opt-in to
	// resolve the ambiguity the source documents and preserves by default
	// (§9; SPEC_FULL §9) — it does not change behavior unless both Strict
	// is set and IsKnownBareMessage recognizes the line.
	Strict bool

	// IsKnownBareMessage, if set, reports whether line matches a
	// registered bare-message handler. Only consulted when Strict is true.
	IsKnownBareMessage func(line string) bool
}

// Classify classifies line against awaited. For DataForAwaited and
// TerminalCMEError it also returns the payload segment to append to the
// accumulator, already stripped of any command-name prefix (§4.4).
func (c *Classifier) Classify(line string, awaited CommandID) (Classification, string) {
	switch {
	case strings.HasPrefix(line, "AT"):
		return Echo, ""
	case line == OK:
		return TerminalOK, ""
	case line == Error:
		return TerminalError, ""
	case line == PromptLine:
		return Prompt, ""
	case strings.HasPrefix(line, CMEErrorPrefix):
		return TerminalCMEError, strings.TrimPrefix(line, CMEErrorPrefix)
	}

	if awaited != None && c.Table.IsExtended(awaited) {
		if !strings.HasPrefix(line, "+") {
			if c.Strict && c.IsKnownBareMessage != nil && c.IsKnownBareMessage(line) {
				return Unsolicited, ""
			}
			return DataForAwaited, line
		}

		name := c.Table.NameOf(awaited)
		rest := strings.TrimPrefix(line, "+")
		if strings.HasPrefix(rest, name) {
			seg := strings.TrimPrefix(rest, name)
			seg = strings.TrimPrefix(seg, ":")
			seg = strings.TrimPrefix(seg, " ")
			return DataForAwaited, seg
		}
		return Unsolicited, ""
	}

	return Unsolicited, ""
}
