// memwave.go - an in-memory Waveform fixture, the reference producer used
// by the package's own tests and a reasonable starting point for hosts with
// fully decoded sample data already in memory.

package wavemix

// MemWaveform is a Waveform backed by a flat in-memory sample buffer.
// Interleaved for stereo. Safe for concurrent Pull calls since it never
// mutates itself.
type MemWaveform struct {
	bits      int
	channels  int
	frequency float64
	data      []byte // raw frame bytes, frameBytes = (bits/8)*channels wide
	loopLen   int64
}

// NewMemWaveform wraps data (raw PCM, bits ∈ {8,16}, channels ∈ {1,2}) as a
// non-looping Waveform sampled at frequency Hz.
func NewMemWaveform(data []byte, bits, channels int, frequency float64) *MemWaveform {
	return &MemWaveform{bits: bits, channels: channels, frequency: frequency, data: data}
}

// WithLoop returns a copy of w that loops its final loopLen frames forever.
func (w *MemWaveform) WithLoop(loopLen int64) *MemWaveform {
	cp := *w
	cp.loopLen = loopLen
	return &cp
}

func (w *MemWaveform) Bits() int          { return w.bits }
func (w *MemWaveform) Channels() int      { return w.channels }
func (w *MemWaveform) Frequency() float64 { return w.frequency }
func (w *MemWaveform) LoopLen() int64     { return w.loopLen }

func (w *MemWaveform) frameBytes() int { return BitsPerFrame(w.bits, w.channels) / 8 }

func (w *MemWaveform) Len() int64 {
	return int64(len(w.data) / w.frameBytes())
}

// Pull copies up to wlen frames starting at wpos into the cursor. wpos is
// assumed to already be within [0, Len()) — callers looping this waveform
// go through a LoopAdapter that guarantees it.
func (w *MemWaveform) Pull(cur AppendCursor, wpos int64, wlen int, seeking bool) {
	fb := w.frameBytes()
	total := w.Len()
	avail := total - wpos
	if avail <= 0 {
		return
	}
	if int64(wlen) > avail {
		wlen = int(avail)
	}
	if wlen <= 0 {
		return
	}
	dst := cur.Append(wlen)
	copy(dst, w.data[wpos*int64(fb):wpos*int64(fb)+int64(wlen*fb)])
}
