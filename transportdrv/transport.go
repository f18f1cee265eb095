// Package transportdrv provides concrete engine.ByteDriver and transport
// implementations: a serial-port driver for real hardware, and an in-memory
// transport for tests. It is the hardware-facing collaborator named in §1 —
// the only package in this module that opens a serial port.
package transportdrv

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
)

//go:generate mockgen -destination=mock_transport.go -package=transportdrv . Transport,Dialer

// Transport is an established, bidirectional byte stream to a peripheral. A
// Transport is assumed to already be connected and ready for use; typical
// implementations are serial ports, TCP connections to an emulator, or the
// in-memory Memory fake used in tests.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport. It abstracts how the connection is created
// (serial port, TCP, test double) and is used only during driver
// construction — once a Transport is obtained the Dialer is no longer
// needed.
type Dialer interface {
	// Dial opens and returns a connected Transport. It must respect ctx's
	// cancellation and deadline.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens a real serial port using go.bug.st/serial.
type SerialDialer struct {
	PortName string
	Mode     *serial.Mode
}

// Dial opens the configured serial port. It fails fast if ctx is already
// done, since serial.Open itself is not context-aware.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("gsm: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("gsm: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		mode = &serial.Mode{BaudRate: 115200, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
	}
	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("transportdrv: open %s: %w", d.PortName, err)
	}
	return port, nil
}
