// loop_adapter.go - wraps a looping Waveform so the engine sees an
// unbounded, monotonically increasing position (spec.md §4.3).

package wavemix

// LoopAdapter wraps a Waveform whose LoopLen is non-zero, translating pulls
// at unbounded absolute positions into pulls within the wrapped waveform's
// [0, len) range, splitting a pull across the loop boundary when necessary.
type LoopAdapter struct {
	inner   Waveform
	len     int64
	loopLen int64
}

// NewLoopAdapter wraps inner. Panics (ErrBadWaveform) if inner does not
// actually loop.
func NewLoopAdapter(inner Waveform) *LoopAdapter {
	if inner.LoopLen() == 0 {
		fail(ErrBadWaveform, "NewLoopAdapter requires loop_len > 0")
	}
	return &LoopAdapter{inner: inner, len: inner.Len(), loopLen: inner.LoopLen()}
}

func (a *LoopAdapter) Bits() int        { return a.inner.Bits() }
func (a *LoopAdapter) Channels() int    { return a.inner.Channels() }
func (a *LoopAdapter) Frequency() float64 { return a.inner.Frequency() }
func (a *LoopAdapter) Len() int64       { return a.inner.Len() }
func (a *LoopAdapter) LoopLen() int64   { return a.inner.LoopLen() }
func (a *LoopAdapter) Inner() Waveform  { return a.inner }

// Pull implements Waveform by translating wpos into the wrapped waveform's
// range and splitting the request across the loop boundary when it crosses
// len.
func (a *LoopAdapter) Pull(cur AppendCursor, wpos int64, wlen int, seeking bool) {
	if wpos >= a.len {
		wpos = (wpos-a.len)%a.loopLen + (a.len - a.loopLen)
		if wpos == 0 {
			seeking = true
		}
	}

	len1 := wlen
	if remain := a.len - wpos; int64(len1) > remain {
		len1 = int(remain)
	}
	len2 := wlen - len1

	frameBytes := (a.inner.Bits() * a.inner.Channels()) / 8
	maxLen2 := a.loopLen + int64(LoopOverread/frameBytes)
	if int64(len2) > maxLen2 {
		fail(ErrBadWaveform, "loop split len2=%d exceeds loop_len+overread=%d", len2, maxLen2)
	}

	a.inner.Pull(cur, wpos, len1, seeking)
	loopStart := a.len - a.loopLen
	for len2 > 0 {
		n := len2
		if int64(n) > a.loopLen {
			n = int(a.loopLen)
		}
		a.inner.Pull(cur, loopStart, n, true)
		len2 -= n
	}
}
