// waveform.go - the Waveform pull contract (spec.md §4.1).
//
// A Waveform is an opaque sample producer: the engine never reads its
// storage directly, only pulls through the AppendCursor defined in
// samplebuffer.go. Grounded on the teacher's music player interfaces
// (music_interfaces.go's narrow Decode-one-block contract) generalized from
// a single fixed format to the bits/channels/length metadata spec.md needs.

package wavemix

// Waveform is a pull-based sample producer bound to a channel's
// SampleBuffer. Implementations must be safe to pull repeatedly and must
// never call back into the mixer.
type Waveform interface {
	// Bits returns the sample bit depth, 8 or 16.
	Bits() int

	// Channels returns 1 (mono) or 2 (interleaved stereo).
	Channels() int

	// Frequency returns the waveform's native sample rate in Hz, the value
	// ChannelState.SetFreq converts into a playback step.
	Frequency() float64

	// Len returns the waveform's length in frames, or LenUnknown if the
	// producer does not know its length in advance (e.g. a live stream).
	Len() int64

	// LoopLen returns the number of trailing frames that repeat once Len is
	// reached, or 0 if the waveform does not loop. Non-zero LoopLen with
	// Len() == LenUnknown is an invariant violation (ErrLoopOnUnknownLength),
	// enforced by the channel that binds this waveform.
	LoopLen() int64

	// Pull appends at least wlen frames starting at absolute frame index
	// wpos into cur, via one or more calls to cur.Append. seeking is true
	// when wpos is not the frame immediately following the producer's
	// previous append, signalling that any internal decode state tied to
	// sequential access must be reestablished at wpos.
	//
	// wlen is a minimum, not a ceiling: overproduction is allowed and the
	// excess is cached in the SampleBuffer for later Get calls, though it
	// may break 8-byte append alignment for the next producer that appends.
	// Pull may append fewer than wlen frames only at end of data. Pull must
	// not retain cur past the call.
	Pull(cur AppendCursor, wpos int64, wlen int, seeking bool)
}

// BitsPerFrame returns the packed frame width in bits for a waveform with
// the given per-sample bit depth and channel count, the value SampleBuffer.SetBPS
// expects.
func BitsPerFrame(bits, channels int) int {
	return bits * channels
}
