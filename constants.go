// constants.go - contract constants for the wavemix engine.

package wavemix

// ------------------------------------------------------------------------------
// Hardware Configuration
// ------------------------------------------------------------------------------
const (
	MaxChannels  = 32        // Maximum simultaneously configured channels
	WaveformMax  = 1<<29 - 1 // Largest representable waveform length, in samples
	LenUnknown   = WaveformMax
	LoopOverread = 64 // Bytes of repeated loop-start content the executor may prefetch past a loop end
)

// ------------------------------------------------------------------------------
// Fixed-point formats (see fixed.go)
// ------------------------------------------------------------------------------
const (
	FX64Frac = 12 // Fractional bits of a ChannelState position/step
	FX15Frac = 15 // Fractional bits of a per-side gain
	FX16Frac = 16 // Fractional bits of the packed master volume
)

// ------------------------------------------------------------------------------
// Scheduling
// ------------------------------------------------------------------------------
const PollPerSecond = 8 // Throttle replenishment granularity: output_rate/PollPerSecond extra samples per poll

// ------------------------------------------------------------------------------
// Defaults
// ------------------------------------------------------------------------------
const DefaultMaxBits = 16 // Default per-channel bit depth ceiling

// ------------------------------------------------------------------------------
// Reset fade
// ------------------------------------------------------------------------------
const ResetTimeLength = 64 // Samples over which master volume fades during a host-signalled reset

// pos31Mask isolates the low 31 bits the executor contract reconciles per block.
const pos31Mask = 0x7FFFFFFF
