package engine

import "errors"

var (
	// ErrTimeout is returned when a send's timeout elapses with no
	// matching terminal result delivered (§6, §7).
	ErrTimeout = errors.New("engine: command timed out")

	// ErrModemError is returned as-is (not wrapped) when the peripheral
	// replied with the plain terminal line ERROR.
	ErrModemError = errors.New("engine: modem returned ERROR")

	// ErrCMEError is returned (wrapped, with the error text appended) when
	// the peripheral replied with a +CME ERROR line.
	ErrCMEError = errors.New("engine: modem returned +CME ERROR")

	// ErrAlreadyRunning is returned by Init on an engine whose RX consumer
	// task is already running.
	ErrAlreadyRunning = errors.New("engine: already running")

	// ErrNotRunning is returned by Deinit on an engine that was never
	// initialized, or already torn down.
	ErrNotRunning = errors.New("engine: not running")
)
