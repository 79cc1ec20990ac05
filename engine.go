// engine.go - MixerEngine: per-block preparation and the external DSP
// command round-trip (spec.md §4.5, §4.6).
//
// Grounded on the teacher's coprocessor_manager.go submit/sync loop,
// generalized from one fixed CPU workload per tick to a variable-length
// mix block built fresh from live channel state every poll.

package wavemix

import "math"

// MixerEngine owns the channel array, the shared sample-buffer region, and
// the event/throttle scheduling that governs Poll.
type MixerEngine struct {
	channels   []ChannelState
	outputRate float64
	hardMaxBuf int // optional hard cap on a single channel's buffer size, in bytes; 0 = uncapped

	executor  DSPExecutor
	scheduler EventScheduler
	throttle  Throttle
	rootTicks int64

	region      []byte // single shared allocation, carved per channel; nil until first needed
	destScratch []byte // reused s16-stereo byte staging area for Submit's Dest

	resetFade int // samples remaining in a host-signalled reset fadeout; 0 = not resetting
	masterVol FX16
}

// NewMixerEngine allocates an engine for numChannels voices rendering at
// outputRate Hz through executor.
func NewMixerEngine(numChannels int, outputRate float64, executor DSPExecutor) *MixerEngine {
	e := &MixerEngine{
		channels:   make([]ChannelState, numChannels),
		outputRate: outputRate,
		executor:   executor,
		masterVol:  FX16FromFloat(1.0),
	}
	// Channels need a usable max_freq/max_bits before they've ever been
	// configured, since play() sets the initial step from the waveform's
	// own frequency; default to the engine's own rate, DefaultMaxBits, and
	// no per-channel buffer cap until ChSetLimits narrows them.
	for i := range e.channels {
		e.channels[i].SetLimits(outputRate, DefaultMaxBits, 0)
	}
	return e
}

// Close releases the channels, their bound producers, and the shared
// sample-buffer region, per spec.md's close() Facade operation. The engine
// is not usable afterward.
func (e *MixerEngine) Close() {
	for i := range e.channels {
		if e.channels[i].active {
			e.channels[i].Stop()
		}
	}
	e.scheduler = EventScheduler{}
	e.region = nil
	e.destScratch = nil
}

// NumChannels returns the configured channel count.
func (e *MixerEngine) NumChannels() int { return len(e.channels) }

func (e *MixerEngine) requireChannel(ch int) *ChannelState {
	if ch < 0 || ch >= len(e.channels) {
		fail(ErrBadChannelIndex, "ch=%d numChannels=%d", ch, len(e.channels))
	}
	return &e.channels[ch]
}

// SetHardMaxBufferBytes sets an engine-wide fallback ceiling applied to any
// channel that hasn't been given its own cap via SetLimits's maxBufSz. 0
// disables the fallback.
func (e *MixerEngine) SetHardMaxBufferBytes(n int) {
	e.hardMaxBuf = n
	e.region = nil
}

// SetLimits updates a channel's maximum frequency, bit depth, and optional
// hard cap (0 = uncapped) on its own carved buffer size (spec.md §4.6,
// §5's ch_set_limits), freeing the shared region so it is recomputed on
// next use.
func (e *MixerEngine) SetLimits(ch int, maxFreq float64, maxBits, maxBufSz int) {
	c := e.requireChannel(ch)
	if c.active {
		logf("SetLimits(ch=%d) called while playing; buffer region will be reallocated on next use", ch)
	}
	c.SetLimits(maxFreq, maxBits, maxBufSz)
	e.region = nil
}

func roundUp8(n int) int { return (n + 7) / 8 * 8 }

func channelBufSize(maxFreq float64, maxBits, hardMax int) int {
	bytesPerSec := maxFreq * float64(maxBits) / 8
	sz := roundUp8(int(math.Ceil(bytesPerSec / PollPerSecond)))
	if hardMax > 0 && sz > hardMax {
		sz = (hardMax / 8) * 8
	}
	return sz
}

// ensureAllocated lazily carves the shared sample-buffer region if it has
// been freed (or never allocated), per spec.md §4.6.
func (e *MixerEngine) ensureAllocated() {
	if e.region != nil {
		return
	}
	sizes := make([]int, len(e.channels))
	total := 0
	for i := range e.channels {
		maxFreq, maxBits, maxBufSz := e.channels[i].Limits()
		if maxBits == 0 {
			maxBits = DefaultMaxBits
		}
		hardMax := maxBufSz
		if hardMax == 0 {
			hardMax = e.hardMaxBuf
		}
		sizes[i] = channelBufSize(maxFreq, maxBits, hardMax)
		total += sizes[i]
	}
	e.region = make([]byte, total)
	off := 0
	for i := range e.channels {
		maxFreq, maxBits, _ := e.channels[i].Limits()
		e.channels[i].Init(e.region[off:off+sizes[i]], maxFreq, maxBits)
		off += sizes[i]
	}
}

// Play binds wave to channel ch and starts playback, per spec.md §4.4's
// play operation plus the stereo-pairing bookkeeping the channel itself
// cannot perform.
func (e *MixerEngine) Play(ch int, wave Waveform) {
	c := e.requireChannel(ch)
	if wave.Channels() == 2 && ch >= len(e.channels)-1 {
		fail(ErrBadChannelIndex, "stereo waveform on channel %d needs a sibling", ch)
	}
	e.ensureAllocated()
	c.Play(wave, e.outputRate)
	if ch+1 < len(e.channels) {
		e.channels[ch+1].SetStereoSecondary(c.StereoPrimary())
	}
}

// Stop halts channel ch and releases its bound waveform.
func (e *MixerEngine) Stop(ch int) {
	c := e.requireChannel(ch)
	c.Stop()
	if ch+1 < len(e.channels) {
		e.channels[ch+1].SetStereoSecondary(false)
	}
}

func (e *MixerEngine) Playing(ch int) bool     { return e.requireChannel(ch).Playing() }
func (e *MixerEngine) SetFreq(ch int, f float64) { e.requireChannel(ch).SetFreq(f, e.outputRate) }
func (e *MixerEngine) SetVolLR(ch int, lv, rv float64) { e.requireChannel(ch).SetVolLR(lv, rv) }
func (e *MixerEngine) SetVolPan(ch int, v, p float64)  { e.requireChannel(ch).SetVolPan(v, p) }
func (e *MixerEngine) SetVolDolby(ch int, fl, fr, center, sl, sr float64) {
	e.requireChannel(ch).SetVolDolby(fl, fr, center, sl, sr)
}
func (e *MixerEngine) SetPos(ch int, pos float64) { e.requireChannel(ch).SetPos(pos) }
func (e *MixerEngine) GetPos(ch int) float64      { return e.requireChannel(ch).GetPos() }

// SetMasterVol sets the engine's master output gain.
func (e *MixerEngine) SetMasterVol(v float64) { e.masterVol = FX16FromFloat(v) }

// TriggerReset begins a linear master-volume fadeout over ResetTimeLength
// samples, for hosts that need to silence output smoothly before a reset.
func (e *MixerEngine) TriggerReset() { e.resetFade = ResetTimeLength }

// AddEvent schedules cb to fire delay samples from the engine's current
// tick.
func (e *MixerEngine) AddEvent(delay int64, cb EventCallback, ctx any) {
	e.scheduler.Add(e.rootTicks, delay, cb, ctx)
}

// RemoveEvent deregisters a previously scheduled event.
func (e *MixerEngine) RemoveEvent(cb EventCallback, ctx any) {
	e.scheduler.Remove(cb, ctx)
}

// SetThrottle enables or disables the sample-budget gate.
func (e *MixerEngine) SetThrottle(active bool) { e.throttle.Active = active }

// GrantThrottle adds n samples to the throttle's allowance.
func (e *MixerEngine) GrantThrottle(n int64) { e.throttle.Grant(n) }

// Poll renders nsamples (an even count) of stereo s16 output into out,
// which must have length at least nsamples*2. See spec.md §4.5.
func (e *MixerEngine) Poll(out []int16, nsamples int) {
	if nsamples%2 != 0 {
		fail(ErrOddPollLength, "nsamples=%d", nsamples)
	}
	clamped := e.throttle.Clamp(nsamples, e.outputRate)
	for i := clamped * 2; i < nsamples*2 && i < len(out); i++ {
		out[i] = 0
	}

	remaining := clamped
	pos := 0
	for remaining > 0 {
		ticks, ok := e.scheduler.Next()
		delta := int64(remaining)
		if ok {
			d := ticks - e.rootTicks
			if d < delta {
				delta = d
			}
		}
		if delta < 0 {
			delta = 0
		}
		ns := int(delta)
		if ns > 0 {
			e.exec(out[pos*2:], ns)
			pos += ns
			remaining -= ns
			e.rootTicks += int64(ns)
		}
		if ok {
			if t, _ := e.scheduler.Next(); t == e.rootTicks {
				e.scheduler.Fire(e.rootTicks)
				continue
			}
		}
		if ns == 0 {
			break
		}
	}
}

// exec renders ns frames into out (an s16 stereo interleaved window) by
// preparing one ExecCommand per block and submitting it to the executor.
func (e *MixerEngine) exec(out []int16, ns int) {
	needBytes := ns * 4
	if cap(e.destScratch) < needBytes {
		e.destScratch = make([]byte, needBytes)
	}
	dest := e.destScratch[:needBytes]

	cmd := ExecCommand{
		NumSamples:   ns,
		MasterVolume: e.currentMasterVol(ns),
		Dest:         dest,
	}

	type prep struct {
		idx    int
		cmdIdx int
	}
	var preps []prep

	for i := range e.channels {
		c := &e.channels[i]
		if c.stereoSecondary || !c.active {
			continue
		}
		cc, _, ok := e.prepareChannel(c, ns)
		if !ok {
			continue
		}
		cmd.Channels = append(cmd.Channels, cc)
		preps = append(preps, prep{idx: i, cmdIdx: len(cmd.Channels) - 1})
	}

	res := e.executor.Submit(cmd)

	for _, p := range preps {
		c := &e.channels[p.idx]
		oldLow31 := cmd.Channels[p.cmdIdx].Pos
		newLow31 := res.Pos[p.cmdIdx]
		delta := uint64(newLow31) - uint64(oldLow31)
		c.pos += FX64(delta)
	}

	for i := 0; i < ns*2; i++ {
		out[i] = int16(uint16(dest[2*i]) | uint16(dest[2*i+1])<<8)
	}
}

// currentMasterVol returns the master volume, attenuated by a linear reset
// fadeout when one is in progress, and advances the fadeout by ns samples,
// the count this call's block actually renders, so the fade's real-world
// duration is RESET_TIME_LENGTH samples regardless of how the host chunks
// its Poll calls.
func (e *MixerEngine) currentMasterVol(ns int) FX16 {
	if e.resetFade <= 0 {
		return e.masterVol
	}
	frac := float64(e.resetFade) / float64(ResetTimeLength)
	e.resetFade -= ns
	if e.resetFade < 0 {
		e.resetFade = 0
	}
	return FX16FromFloat(e.masterVol.Float() * frac)
}

// prepareChannel computes the per-block window for an active primary
// channel and returns its ChannelCommand, the window position Samples[0]
// corresponds to (the same wpos passed to SampleBuffer.Get, after any
// loop-wrap rebase), and whether the channel has anything to contribute
// this block (false once a non-looping channel has run past its end,
// having just been stopped).
func (e *MixerEngine) prepareChannel(c *ChannelState, ns int) (ChannelCommand, int64, bool) {
	combinedShift := uint(FX64Frac) + c.bpsShift

	wpos := int64(c.pos) >> combinedShift
	wlast := (int64(c.pos) + int64(c.step)*int64(ns-1)) >> combinedShift
	wnext := (int64(c.pos) + int64(c.step)*int64(ns)) >> combinedShift
	wlen := wlast - wpos + 1
	if d := wnext - wpos; d > wlen {
		wlen = d
	}

	overreadFrames := int64(LoopOverread) >> c.bpsShift

	cmdLen, cmdLoopLen := uint32(MaxU31), uint32(0)

	switch {
	case c.loopLen == 0:
		if c.length != LenUnknown && wpos >= c.length {
			c.Stop()
			return ChannelCommand{}, 0, false
		}
		if c.length != LenUnknown {
			if wpos+wlen > c.length {
				wlen = c.length - wpos
			}
		}
		wlen += overreadFrames

	case int64(c.loopLen)<<c.bpsShift < int64(c.buf.ByteCapacity()):
		if wpos >= c.length-c.loopLen {
			c.buf.Discard(c.length - c.loopLen)
		}
		for wpos >= c.length {
			wpos -= c.loopLen
		}
		if wpos+wlen > c.length {
			wlen = c.length - wpos
		}
		wlen += overreadFrames
		cmdLen, cmdLoopLen = uint32(c.length), uint32(c.loopLen)

	default: // unrollable loop: c.loopLen << bpsShift >= byte capacity
		bufWpos := c.buf.WritePos()
		if bufWpos > c.length && wpos > c.length {
			wrapped := (wpos-c.length)%c.loopLen + (c.length - c.loopLen)
			c.buf.Discard(wpos)
			c.buf.RebaseWritePos(bufWpos - (wpos - wrapped))
			c.pos -= FX64((wpos - wrapped) << combinedShift)
			wpos = wrapped
		}
	}

	if wlen < 0 {
		wlen = 0
	}
	wl := int(wlen)
	samples := c.buf.Get(wpos, &wl)

	flags := ChannelFlags(0)
	if c.is16 {
		flags |= ChanIs16
	}
	// A stereo waveform's frame already interleaves L and R (BitsPerFrame
	// folds channel count into frame width), so one command carries both;
	// the sibling channel exists only to hold the isStereoSecondary flag
	// that blocks it from being independently configured or played.
	lvol, rvol := c.lvol, c.rvol

	// Pos must be relative to the same window start Samples[0] covers: the
	// post-rebase wpos computed above, not the pre-wrap value the switch
	// started from.
	posRemainder := int64(c.pos) - (wpos << combinedShift)

	cc := ChannelCommand{
		Pos:      uint32(posRemainder & pos31Mask),
		Step:     uint32(int64(c.step) & pos31Mask),
		BPSShift: uint8(c.bpsShift),
		Flags:    flags,
		Len:      cmdLen,
		LoopLen:  cmdLoopLen,
		LVol:     lvol,
		RVol:     rvol,
		Base:     ToBus(0, 0),
		Samples:  samples,
	}
	return cc, wpos, true
}
