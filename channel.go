// channel.go - per-channel playback state (spec.md §4.4).
//
// Grounded on audio_chip.go's per-voice register block (frequency, volume,
// phase accumulator) generalized from the teacher's fixed synth waveforms to
// an arbitrary pulled Waveform, and on its convention of rejecting
// out-of-range register writes rather than clamping them silently.

package wavemix

import "math"

// Pro Logic II style downmix constants for SetVolDolby, normalized so the
// center and surround contributions sum consistently with the front pair.
var (
	dolbyKF = 1.0
	dolbyKC = math.Sqrt(0.5)
	dolbyKA = math.Sqrt(0.75)
	dolbyKB = 0.5
	dolbyNorm = dolbyKF + dolbyKC + dolbyKA + dolbyKB
)

// bpsShiftFor returns the bytes-per-frame shift for a packed frame of the
// given bit depth and channel count.
func bpsShiftFor(bits, channels int) uint {
	switch BitsPerFrame(bits, channels) {
	case 8:
		return 0
	case 16:
		return 1
	case 32:
		return 2
	default:
		fail(ErrBadWaveform, "unsupported frame size bits=%d channels=%d", bits, channels)
		return 0
	}
}

// ChannelState is one mixer voice: a SampleBuffer bound to a Waveform, plus
// the fixed-point position/step/volume register set the executor reads each
// block.
type ChannelState struct {
	buf SampleBuffer

	lastWave Waveform // identity of the most recently bound raw waveform
	is16     bool
	bpsShift uint

	pos     FX64 // byte-addressed position
	step    FX64 // byte-addressed step per output sample
	length  int64
	loopLen int64

	lvol, rvol FX15

	stereoPrimary   bool
	stereoSecondary bool

	maxFreq  float64
	maxBits  int
	maxBufSz int // optional per-channel hard cap on carved buffer bytes; 0 = uncapped

	active bool       // true once played and not yet stopped ("ptr != 0")
	base   BusAddress // current base offset into the channel's carved region
}

// Init prepares a freshly carved channel with its configured limits.
func (c *ChannelState) Init(mem []byte, maxFreq float64, maxBits int) {
	c.buf.Init(mem)
	c.maxFreq = maxFreq
	c.maxBits = maxBits
}

// SetLimits records new resource limits for this channel: maximum playback
// frequency, bit depth, and an optional hard cap (0 = uncapped) on this
// channel's own carved buffer size. The caller (MixerEngine) is responsible
// for freeing and reallocating the shared sample-buffer region, since limits
// changing on any one channel affects the whole region's layout (spec.md
// §4.6).
func (c *ChannelState) SetLimits(maxFreq float64, maxBits, maxBufSz int) {
	c.maxFreq = maxFreq
	c.maxBits = maxBits
	c.maxBufSz = maxBufSz
}

// Limits returns the channel's configured maximum frequency, bit depth, and
// hard buffer-size cap (0 = uncapped).
func (c *ChannelState) Limits() (maxFreq float64, maxBits, maxBufSz int) {
	return c.maxFreq, c.maxBits, c.maxBufSz
}

func (c *ChannelState) requireNotSecondary() {
	if c.stereoSecondary {
		fail(ErrStereoSecondary, "")
	}
}

// SetFreq updates the channel's playback step for output sampled at
// outputRate Hz.
func (c *ChannelState) SetFreq(f, outputRate float64) {
	c.requireNotSecondary()
	if f < 0 || f > c.maxFreq*1.01 {
		fail(ErrFrequencyOverLimit, "freq=%g max=%g", f, c.maxFreq)
	}
	c.step = FX64(bytePosFromSamplePos(f/outputRate, c.bpsShift))
}

// SetVolLR stores independent left/right gains.
func (c *ChannelState) SetVolLR(lv, rv float64) {
	c.requireNotSecondary()
	c.lvol = FX15FromFloat(lv)
	c.rvol = FX15FromFloat(rv)
}

// SetVolPan stores a single volume/pan pair, converted to left/right gains.
func (c *ChannelState) SetVolPan(v, p float64) {
	c.requireNotSecondary()
	c.SetVolLR(v*(1-p), v*p)
}

// SetVolDolby stores a Pro Logic II style downmix of a 5-channel bed into
// the channel's left/right gains.
func (c *ChannelState) SetVolDolby(fl, fr, center, sl, sr float64) {
	c.requireNotSecondary()
	kfn, kcn, kan, kbn := dolbyKF/dolbyNorm, dolbyKC/dolbyNorm, dolbyKA/dolbyNorm, dolbyKB/dolbyNorm
	l := fl*kfn + center*kcn - sl*kan - sr*kbn
	r := fr*kfn + center*kcn + sl*kbn + sr*kan
	c.SetVolLR(l, r)
}

// SetPos sets the channel's playback position, in frames.
func (c *ChannelState) SetPos(pos float64) {
	c.requireNotSecondary()
	c.pos = FX64(bytePosFromSamplePos(pos, c.bpsShift))
}

// GetPos returns the channel's current playback position, in frames.
func (c *ChannelState) GetPos() float64 {
	c.requireNotSecondary()
	return samplePosFromBytePos(int64(c.pos), c.bpsShift)
}

// Stop deactivates the channel and releases its bound producer. Stereo
// pairing (clearing the sibling's secondary flag) is the caller's
// responsibility, since ChannelState has no notion of its neighbors.
func (c *ChannelState) Stop() {
	c.requireNotSecondary()
	c.active = false
	c.base = 0
	c.stereoPrimary = false
	c.buf.Bind(nil)
	c.lastWave = nil
}

// Playing reports whether the channel is currently active.
func (c *ChannelState) Playing() bool {
	c.requireNotSecondary()
	return c.active
}

// Play binds wave for playback. If wave is the same producer already bound,
// buffered content is retained and only the position resets — the
// waveform-identity optimization of spec.md §4.4.
func (c *ChannelState) Play(wave Waveform, outputRate float64) {
	if wave.Bits() != 8 && wave.Bits() != 16 {
		fail(ErrBadWaveform, "bits=%d", wave.Bits())
	}
	if wave.Channels() != 1 && wave.Channels() != 2 {
		fail(ErrBadWaveform, "channels=%d", wave.Channels())
	}
	if wave.Len() < 0 || wave.Len() > WaveformMax {
		fail(ErrBadWaveform, "len=%d", wave.Len())
	}
	if wave.LoopLen() != 0 && wave.Len() == LenUnknown {
		fail(ErrLoopOnUnknownLength, "")
	}

	c.stereoPrimary = wave.Channels() == 2

	if wave != c.lastWave {
		c.buf.Flush()
		c.buf.SetBPS(BitsPerFrame(wave.Bits(), wave.Channels()))
		var producer Waveform = wave
		if wave.LoopLen() > 0 {
			producer = NewLoopAdapter(wave)
		}
		c.buf.Bind(producer)
		c.is16 = wave.Bits() == 16
		c.bpsShift = bpsShiftFor(wave.Bits(), wave.Channels())
		c.length = wave.Len()
		c.loopLen = wave.LoopLen()
		c.SetFreq(wave.Frequency(), outputRate)
		c.lastWave = wave
	}

	c.base = 0
	c.pos = 0
	c.active = true
}

// SetStereoSecondary marks or clears this channel as the secondary half of
// a stereo pair, set by the owner when the preceding channel plays or stops
// a stereo waveform.
func (c *ChannelState) SetStereoSecondary(v bool) { c.stereoSecondary = v }

// StereoPrimary reports whether this channel is currently driving a sibling
// as its stereo secondary.
func (c *ChannelState) StereoPrimary() bool { return c.stereoPrimary }

// StereoSecondary reports whether this channel is bound as a stereo
// secondary and must refuse direct configuration calls.
func (c *ChannelState) StereoSecondary() bool { return c.stereoSecondary }
