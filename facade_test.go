package wavemix

import "testing"

func TestMixerCloseStopsChannelsAndFreesRegion(t *testing.T) {
	m := NewMixer(1, 8000, NewSoftExecutor())
	w := &constWave{bits: 8, channels: 1, freq: 8000, length: 1000, fill: 1}
	m.ChPlay(0, w)
	if !m.ChPlaying(0) {
		t.Fatal("expected channel to be playing before Close")
	}

	m.Close()

	if m.ChPlaying(0) {
		t.Fatal("expected Close to stop every channel")
	}
	if m.engine.region != nil {
		t.Fatal("expected Close to free the shared sample-buffer region")
	}
}

func TestMixerChSetLimitsAppliesPerChannelBufferCap(t *testing.T) {
	m := NewMixer(2, 8000, NewSoftExecutor())
	// Channel 0 gets a tiny cap, channel 1 keeps the default (uncapped).
	m.ChSetLimits(0, 8000, 8, 16)
	m.ChSetLimits(1, 8000, 8, 0)

	m.ChPlay(0, &constWave{bits: 8, channels: 1, freq: 8000, length: 1000, fill: 1})
	m.ChPlay(1, &constWave{bits: 8, channels: 1, freq: 8000, length: 1000, fill: 1})

	if got := m.engine.channels[0].buf.ByteCapacity(); got > 16 {
		t.Fatalf("expected channel 0's buffer capped at 16 bytes, got %d", got)
	}
	if got := m.engine.channels[1].buf.ByteCapacity(); got <= 16 {
		t.Fatalf("expected channel 1's buffer to use the default uncapped size, got %d", got)
	}
}

func TestMixerThrottleActivatesAndGrantsInOneCall(t *testing.T) {
	const outputRate = 800 // PollPerSecond=8 => extra allowance of 100 frames

	data := make([]byte, 300)
	for i := range data {
		data[i] = 50
	}

	m := NewMixer(1, outputRate, NewSoftExecutor())
	m.ChPlay(0, NewMemWaveform(data, 8, 1, outputRate))
	m.ChSetVol(0, 1.0, 0.0)
	m.Throttle(10)

	out := make([]int16, 400)
	m.Poll(out, 200)

	const rendered = 110 // allowance(10) + extra(100)
	wantL := int16(int8(50)) * 256
	for i := 0; i < rendered; i++ {
		if out[2*i] != wantL {
			t.Fatalf("frame %d: expected rendered content %d, got %d", i, wantL, out[2*i])
		}
	}
	for i := rendered; i < 200; i++ {
		if out[2*i] != 0 || out[2*i+1] != 0 {
			t.Fatalf("frame %d: expected throttled silence, got (%d,%d)", i, out[2*i], out[2*i+1])
		}
	}
}

func TestMixerResetFadeAdvancesBySamplesNotByCallCount(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		data[i] = 100
	}

	// A single Poll call with ns well past ResetTimeLength must consume the
	// whole fade budget in that one call, not decrement it by 1 as if every
	// call rendered a single sample.
	big := NewMixer(1, 8000, NewSoftExecutor())
	big.ChPlay(0, NewMemWaveform(data, 8, 1, 8000))
	big.ChSetVol(0, 1.0, 0.0)
	big.TriggerReset()

	out := make([]int16, (ResetTimeLength*2)*2)
	big.Poll(out, ResetTimeLength*2)

	if big.engine.resetFade != 0 {
		t.Fatalf("expected a single %d-sample Poll call to exhaust a %d-sample fade, resetFade=%d",
			ResetTimeLength*2, ResetTimeLength, big.engine.resetFade)
	}

	// The same fade, driven by many small Poll calls, must reach exactly
	// zero after the same total sample count rather than lagging behind
	// because it took many calls to get there.
	small := NewMixer(1, 8000, NewSoftExecutor())
	small.ChPlay(0, NewMemWaveform(data, 8, 1, 8000))
	small.ChSetVol(0, 1.0, 0.0)
	small.TriggerReset()

	const chunk = 8
	smallOut := make([]int16, chunk*2)
	for i := 0; i < ResetTimeLength; i += chunk {
		small.Poll(smallOut, chunk)
	}

	if small.engine.resetFade != 0 {
		t.Fatalf("expected fade to reach 0 after %d rendered samples across %d-sample calls, resetFade=%d",
			ResetTimeLength, chunk, small.engine.resetFade)
	}
}
