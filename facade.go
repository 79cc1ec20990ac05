// facade.go - the public Mixer API (spec.md §5 External Interfaces).
//
// Mixer is a thin wrapper around MixerEngine that adds the re-entrancy guard
// spec.md's error-handling design requires (Poll must not be called from
// within one of its own event callbacks) and a non-panicking TryPlay for
// hosts that would rather check an error than recover from a panic.

package wavemix

// Mixer is the host-facing entry point: configure channels, play waveforms,
// and poll for output.
type Mixer struct {
	engine  *MixerEngine
	polling bool
}

// NewMixer creates a Mixer for numChannels voices rendered at outputRate Hz.
// A nil executor defaults to the pure-Go reference DSPExecutor.
func NewMixer(numChannels int, outputRate float64, executor DSPExecutor) *Mixer {
	if executor == nil {
		executor = NewSoftExecutor()
	}
	return &Mixer{engine: NewMixerEngine(numChannels, outputRate, executor)}
}

// Close stops every channel, releases their bound waveform producers, and
// frees the shared sample-buffer region, closing out the init-to-close
// lifetime a MixerRoot owns (spec.md §4.1). The Mixer must not be used
// afterward.
func (m *Mixer) Close() { m.engine.Close() }

// SetMasterVol sets the overall output gain, applied after per-channel mix.
func (m *Mixer) SetMasterVol(v float64) { m.engine.SetMasterVol(v) }

// TriggerReset begins a linear master-volume fadeout, for hosts silencing
// output ahead of a hardware or session reset.
func (m *Mixer) TriggerReset() { m.engine.TriggerReset() }

// ChSetLimits sets channel ch's maximum frequency, bit depth, and an
// optional hard cap (0 = uncapped) on its own carved buffer size, freeing
// the shared sample-buffer region for reallocation on next use.
func (m *Mixer) ChSetLimits(ch int, maxFreq float64, maxBits, maxBufSz int) {
	m.engine.SetLimits(ch, maxFreq, maxBits, maxBufSz)
}

// ChPlay binds wave to channel ch and starts playback. Panics with an
// *InvariantViolation if wave or ch violate the playback contract; see
// TryPlay for a non-panicking variant.
func (m *Mixer) ChPlay(ch int, wave Waveform) { m.engine.Play(ch, wave) }

// TryPlay is ChPlay without the panic: invariant violations are returned as
// an error instead.
func (m *Mixer) TryPlay(ch int, wave Waveform) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if iv, ok := r.(*InvariantViolation); ok {
				err = iv
				return
			}
			panic(r)
		}
	}()
	m.engine.Play(ch, wave)
	return nil
}

// ChStop halts channel ch and releases its bound waveform.
func (m *Mixer) ChStop(ch int) { m.engine.Stop(ch) }

// ChPlaying reports whether channel ch is currently active.
func (m *Mixer) ChPlaying(ch int) bool { return m.engine.Playing(ch) }

// ChSetFreq sets channel ch's playback frequency in Hz.
func (m *Mixer) ChSetFreq(ch int, f float64) { m.engine.SetFreq(ch, f) }

// ChSetVol sets channel ch's independent left/right gains.
func (m *Mixer) ChSetVol(ch int, lv, rv float64) { m.engine.SetVolLR(ch, lv, rv) }

// ChSetVolPan sets channel ch's volume and pan.
func (m *Mixer) ChSetVolPan(ch int, v, p float64) { m.engine.SetVolPan(ch, v, p) }

// ChSetVolDolby sets channel ch's gains from a 5-channel Pro Logic II style
// downmix.
func (m *Mixer) ChSetVolDolby(ch int, fl, fr, center, sl, sr float64) {
	m.engine.SetVolDolby(ch, fl, fr, center, sl, sr)
}

// ChSetPos sets channel ch's playback position, in frames.
func (m *Mixer) ChSetPos(ch int, pos float64) { m.engine.SetPos(ch, pos) }

// ChGetPos returns channel ch's playback position, in frames.
func (m *Mixer) ChGetPos(ch int) float64 { return m.engine.GetPos(ch) }

// Throttle enables the sample-budget gate and grants it n samples of
// allowance in one step; hosts that poll faster than real time call this
// once per PollPerSecond-th of a second to avoid rendering ahead of
// playback.
func (m *Mixer) Throttle(n int64) {
	m.engine.SetThrottle(true)
	m.engine.GrantThrottle(n)
}

// Unthrottle disables the sample-budget gate; Poll always renders the full
// requested count.
func (m *Mixer) Unthrottle() { m.engine.SetThrottle(false) }

// AddEvent schedules cb to fire delay samples from now.
func (m *Mixer) AddEvent(delay int64, cb EventCallback, ctx any) {
	m.engine.AddEvent(delay, cb, ctx)
}

// RemoveEvent deregisters a previously scheduled event.
func (m *Mixer) RemoveEvent(cb EventCallback, ctx any) {
	m.engine.RemoveEvent(cb, ctx)
}

// Poll renders nsamples of stereo s16 output into out. Panics with
// ErrReentrantPoll if called from within an event callback's own Poll call.
func (m *Mixer) Poll(out []int16, nsamples int) {
	if m.polling {
		fail(ErrReentrantPoll, "")
	}
	m.polling = true
	defer func() { m.polling = false }()
	m.engine.Poll(out, nsamples)
}
