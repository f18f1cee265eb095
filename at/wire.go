package at

// Wire-level constants for the Hayes-AT protocol (§3, §6).
const (
	// CRLF terminates every outbound frame and separates accumulated
	// payload segments (§3's append rule uses the same separator).
	CRLF = "\r\n"

	// CtrlZ is the SMS-style prompt terminator byte (0x1A).
	CtrlZ = byte(0x1A)

	// OK and Error are the two plain terminal response lines.
	OK    = "OK"
	Error = "ERROR"

	// CMEErrorPrefix introduces an extended error reply (§3, §4.4 step 5).
	CMEErrorPrefix = "+CME ERROR"

	// PromptLine is the solitary byte that signals an inline-data prompt
	// (§3: "a line consisting solely of '>' is treated as a distinct line
	// even without a delimiter").
	PromptLine = ">"
)

// IsDelimiter reports whether b terminates a line per §3 (CR, LF, or NUL).
func IsDelimiter(b byte) bool {
	return b == '\r' || b == '\n' || b == 0
}
