// busaddr.go - bus-address abstraction for the per-channel sample regions
// (spec.md Design Notes §9).
//
// A hardware-backed DSPExecutor would address sample memory by a bus-visible
// offset rather than a Go pointer, mirroring a coprocessor that cannot
// dereference host pointers directly. The reference executor (executor.go)
// reads ChannelCommand.Samples instead and ignores the bus address.
// Grounded on the teacher's coprocessor command layout, which always passes
// a physical offset into a shared region rather than a language pointer.

package wavemix

// BusAddress is an offset into the single contiguous sample-buffer region
// allocated in engine.go §4.6, expressed in bytes from the region's base.
type BusAddress uint32

// ToBus returns the bus address of offset bytes into region, given the
// region's own base offset within the shared allocation.
func ToBus(regionBase int, offset int) BusAddress {
	return BusAddress(regionBase + offset)
}
