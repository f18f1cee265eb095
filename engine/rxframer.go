package engine

import "github.com/northlake-iot/atdrv/at"

// lineEndRingCap is the fixed capacity of the secondary "line-end index"
// ring (§4.2).
const lineEndRingCap = 16

// Signaler receives a non-blocking "lines available" notification. It is
// satisfied by *sync2.Signal.
type Signaler interface {
	Notify()
}

// RXFramer is the line-oriented receive framer (C2). PushByte is called
// from RX-ISR-equivalent context; PopLine and IsEmpty are called from the
// RX consumer task. Exactly one producer and one consumer are assumed —
// the two sides communicate only through head/tail indices, never a lock
// (§5: "lock-free by discipline, exactly one producer and one consumer").
type RXFramer struct {
	buf  []byte
	mask uint32

	head uint32 // next write position, producer-owned
	tail uint32 // next read position, consumer-owned

	ends     [lineEndRingCap]uint32
	endHead  int
	endTail  int
	endCount int

	lastEnd uint32 // head value at the most recently recorded line-end

	exceptional        byte
	exceptionalEnabled bool

	signal Signaler
}

// NewRXFramer creates a framer over a byte ring of the given capacity, which
// must be a power of two (§4.2). exceptional, if non-zero, is the one byte
// (conventionally '>') that completes a line by itself even with no
// delimiter when the ring has not grown since the last line-end — the
// prompt signal described in §3. signal, if non-nil, is notified every time
// PushByte completes a line.
func NewRXFramer(capacity int, exceptional byte, signal Signaler) *RXFramer {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("engine: RXFramer capacity must be a power of two")
	}
	return &RXFramer{
		buf:                make([]byte, capacity),
		mask:               uint32(capacity - 1),
		exceptional:        exceptional,
		exceptionalEnabled: exceptional != 0,
		signal:             signal,
	}
}

// PushByte classifies and stores one received byte (§4.2). Overflow of the
// byte ring — the producer outrunning the consumer — is, per §4.2,
// undefined policy; this implementation silently overwrites the oldest
// unread byte rather than blocking, on the assumption documented in the
// spec that the consumer drains faster than the producer over any
// sustained interval. Overflow of the secondary line-end ring drops the
// oldest recorded line-end (documented choice, same rationale).
func (f *RXFramer) PushByte(b byte) {
	grown := f.head != f.lastEnd

	switch {
	case at.IsDelimiter(b):
		if grown {
			f.recordLineEnd(f.head)
		}
		// Zero-length line (consecutive delimiters): dropped silently.

	case f.exceptionalEnabled && b == f.exceptional && !grown:
		f.store(b)
		f.recordLineEnd(f.head)

	default:
		f.store(b)
	}
}

func (f *RXFramer) store(b byte) {
	f.buf[f.head&f.mask] = b
	f.head++
}

func (f *RXFramer) recordLineEnd(pos uint32) {
	if f.endCount == lineEndRingCap {
		f.endTail = (f.endTail + 1) % lineEndRingCap
		f.endCount--
	}
	f.ends[f.endHead] = pos
	f.endHead = (f.endHead + 1) % lineEndRingCap
	f.endCount++
	f.lastEnd = pos
	if f.signal != nil {
		f.signal.Notify()
	}
}

// PopLine returns the next complete line, or ok=false if none is pending
// (§4.2). Called from task context only.
func (f *RXFramer) PopLine() (line []byte, ok bool) {
	if f.endCount == 0 {
		return nil, false
	}
	end := f.ends[f.endTail]
	f.endTail = (f.endTail + 1) % lineEndRingCap
	f.endCount--

	n := end - f.tail
	line = make([]byte, n)
	for i := uint32(0); i < n; i++ {
		line[i] = f.buf[(f.tail+i)&f.mask]
	}
	f.tail = end
	return line, true
}

// IsEmpty reports whether any complete line is pending.
func (f *RXFramer) IsEmpty() bool {
	return f.endCount == 0
}
