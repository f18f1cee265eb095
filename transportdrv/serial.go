package transportdrv

import (
	"bufio"
	"context"
	"sync/atomic"

	"github.com/northlake-iot/atdrv/engine"
)

// Serial adapts a byte-stream Transport to engine.ByteDriver, simulating the
// RX and TX interrupts a real UART peripheral would raise (§1, §4.7). Run
// plays the part of the RX ISR, reading one byte at a time and handing it to
// the engine; EnableTXInterrupt/DisableTXInterrupt play the part of the TX
// empty interrupt, draining the engine's TX source on a dedicated goroutine
// so a slow write never blocks whatever goroutine called EnableTXInterrupt.
type Serial struct {
	transport Transport
	eng       *engine.Engine
	txEnabled atomic.Bool
}

// NewSerial wraps transport. Bind must be called with the engine this
// driver feeds before Run or any Send is issued.
func NewSerial(transport Transport) *Serial {
	return &Serial{transport: transport}
}

// Bind attaches the engine this driver serves.
func (s *Serial) Bind(e *engine.Engine) { s.eng = e }

// Run reads bytes from the transport and feeds the engine's RX ISR entry
// point until ctx is cancelled or the transport returns an error. It is
// meant to run on its own goroutine for the lifetime of the connection,
// mirroring how modem.Modem.Loop owns the only goroutine reading the
// transport.
func (s *Serial) Run(ctx context.Context) error {
	r := bufio.NewReaderSize(s.transport, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		s.eng.OnRXByte(b)
	}
}

// SendByte writes one byte to the transport. Called only from the
// TX-drain goroutine started by EnableTXInterrupt.
func (s *Serial) SendByte(b byte) {
	s.transport.Write([]byte{b})
}

// EnableTXInterrupt starts draining the engine's TX source on a dedicated
// goroutine, calling back into OnTXByteReady until the engine itself calls
// DisableTXInterrupt.
func (s *Serial) EnableTXInterrupt() {
	s.txEnabled.Store(true)
	go func() {
		for s.txEnabled.Load() {
			s.eng.OnTXByteReady()
		}
	}()
}

// DisableTXInterrupt stops the TX-drain goroutine started above.
func (s *Serial) DisableTXInterrupt() {
	s.txEnabled.Store(false)
}
