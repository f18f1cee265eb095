package transportdrv

import (
	"io"
	"sync"
)

// Memory is an in-memory Transport for tests. Reads block on a channel the
// same way a real serial port's Read would block waiting for bytes,
// adapting the technique modem.TestTransport used for the same purpose.
type Memory struct {
	mu       sync.Mutex
	readChan chan []byte
	written  []byte
	closed   bool
}

// NewMemory creates an empty in-memory transport.
func NewMemory() *Memory {
	return &Memory{readChan: make(chan []byte, 16)}
}

func (m *Memory) Write(p []byte) (int, error) {
	m.mu.Lock()
	m.written = append(m.written, p...)
	m.mu.Unlock()
	return len(p), nil
}

func (m *Memory) Read(p []byte) (int, error) {
	data, ok := <-m.readChan
	if !ok {
		return 0, io.EOF
	}
	return copy(p, data), nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.readChan)
	return nil
}

// Feed queues data to be returned by the next Read calls, simulating bytes
// arriving from the peripheral.
func (m *Memory) Feed(data string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.readChan <- []byte(data)
	}
}

// Written returns a copy of every byte written so far.
func (m *Memory) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.written))
	copy(out, m.written)
	return out
}
