package engine

// ByteDriver is the external hardware byte-level driver collaborator named
// in spec §1: the engine's only dependency on real hardware. Implementations
// typically live in package transportdrv.
type ByteDriver interface {
	// SendByte hands one byte to the hardware transmitter. Called only
	// from the TX-ISR-equivalent (OnTXByteReady).
	SendByte(b byte)
	// EnableTXInterrupt arms the hardware so OnTXByteReady will keep being
	// invoked until the TX source is drained.
	EnableTXInterrupt()
	// DisableTXInterrupt silences the hardware once the TX source is
	// empty (§4.7).
	DisableTXInterrupt()
}
