package engine

// TXSource is the ordered outbound byte-string queue (C3). PushString and
// Clean run in task context; PopByte runs from the TX-ISR-equivalent. Per
// §5, TXSource holds no lock of its own: the protocol is that Clean only
// runs when no send is in progress (the TX queue is already empty) and
// PushString only runs while the TX interrupt is currently disabled,
// re-enabled by the caller once pushing is done. Callers must preserve that
// discipline; TXSource does not enforce it.
type TXSource struct {
	strings []string
	cur     int // index of the string currently being drained
	off     int // byte offset within strings[cur]
}

// NewTXSource creates an empty TX byte source.
func NewTXSource() *TXSource { return &TXSource{} }

// PushString appends str to the queue. If the cursor was previously at the
// end of the queue (nothing left to drain), it resets to point at the
// newly appended string (§4.3).
func (s *TXSource) PushString(str string) {
	atEnd := s.cur >= len(s.strings)
	s.strings = append(s.strings, str)
	if atEnd {
		s.cur = len(s.strings) - 1
		s.off = 0
	}
}

// PopByte returns the next outbound byte and advances the cursor. ok is
// false once every pushed string has been fully drained (§4.3). ISR-safe.
func (s *TXSource) PopByte() (b byte, ok bool) {
	for s.cur < len(s.strings) {
		cur := s.strings[s.cur]
		if s.off < len(cur) {
			b = cur[s.off]
			s.off++
			return b, true
		}
		s.cur++
		s.off = 0
	}
	return 0, false
}

// IsEmpty reports whether any byte remains to be drained.
func (s *TXSource) IsEmpty() bool {
	for i := s.cur; i < len(s.strings); i++ {
		off := 0
		if i == s.cur {
			off = s.off
		}
		if off < len(s.strings[i]) {
			return false
		}
	}
	return true
}

// Clean releases every string fully consumed before the cursor. Task-
// context only — never call Clean while the TX interrupt may still be
// draining the queue. §9 notes the call site this implementation preserves:
// callers invoke Clean at the top of each new send, when the previous send
// has already completed and the queue is therefore idle.
func (s *TXSource) Clean() {
	if s.cur <= 0 {
		return
	}
	s.strings = s.strings[s.cur:]
	s.cur = 0
}
