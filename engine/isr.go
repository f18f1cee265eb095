package engine

// OnRXByte is the RX byte ISR entry point (C7). It pushes b into the line
// framer; the framer itself raises the "lines available" signal whenever
// the byte completes a line.
func (e *Engine) OnRXByte(b byte) {
	e.rx.PushByte(b)
}

// OnTXByteReady is the TX byte ISR entry point (C7). If the TX source is
// empty it disables the TX interrupt; otherwise it hands the next byte to
// the hardware driver.
func (e *Engine) OnTXByteReady() {
	b, ok := e.tx.PopByte()
	if !ok {
		e.driver.DisableTXInterrupt()
		return
	}
	e.driver.SendByte(b)
}
