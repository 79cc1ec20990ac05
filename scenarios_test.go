// scenarios_test.go - end-to-end engine behavior, one test per scenario in
// spec.md §8: mono passthrough, upsampling, a loop small enough to stay
// resident, a loop too large to stay resident, scheduled events, and the
// throttle gate.

package wavemix

import "testing"

func TestScenarioAMonoPassthroughUnityStep(t *testing.T) {
	values := []byte{10, 20, 30, 40, 50, 60, 70, 80}
	wave := NewMemWaveform(values, 8, 1, 32000)

	e := NewMixerEngine(1, 32000, NewSoftExecutor())
	e.Play(0, wave)
	e.SetVolLR(0, 1.0, 0.0)

	out := make([]int16, 16)
	e.Poll(out, 8)

	for i, v := range values {
		wantL := int16(int8(v)) * 256
		if out[2*i] != wantL {
			t.Fatalf("frame %d: want left %d, got %d", i, wantL, out[2*i])
		}
		if out[2*i+1] != 0 {
			t.Fatalf("frame %d: want right 0, got %d", i, out[2*i+1])
		}
	}
}

func TestScenarioBUpsampleRepeatsSourceFrames(t *testing.T) {
	values := []byte{10, 20, 30, 40, 50, 60, 70, 80}
	wave := NewMemWaveform(values, 8, 1, 16000)

	e := NewMixerEngine(1, 32000, NewSoftExecutor())
	e.Play(0, wave)
	e.SetVolLR(0, 1.0, 0.0)

	out := make([]int16, 32)
	e.Poll(out, 16)

	want := []byte{10, 10, 20, 20, 30, 30, 40, 40, 50, 50, 60, 60, 70, 70, 80, 80}
	for i, v := range want {
		wantL := int16(int8(v)) * 256
		if out[2*i] != wantL {
			t.Fatalf("frame %d: want left %d, got %d", i, wantL, out[2*i])
		}
		if out[2*i+1] != 0 {
			t.Fatalf("frame %d: want right 0, got %d", i, out[2*i+1])
		}
	}
}

func TestScenarioCCacheableLoopRepeatsTail(t *testing.T) {
	data := make([]byte, 12)
	for i := range data {
		data[i] = byte(100 + i)
	}
	wave := NewMemWaveform(data, 8, 1, 8000).WithLoop(4)

	e := NewMixerEngine(1, 8000, NewSoftExecutor())
	e.Play(0, wave)
	e.SetVolLR(0, 1.0, 0.0)

	out := make([]int16, 40)
	e.Poll(out, 20)

	want := []byte{
		100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111,
		108, 109, 110, 111,
		108, 109, 110, 111,
	}
	for i, v := range want {
		wantL := int16(int8(v)) * 256
		if out[2*i] != wantL {
			t.Fatalf("frame %d: want left %d, got %d", i, wantL, out[2*i])
		}
	}
}

func TestScenarioDUnrollableLoopTracksWrappedPosition(t *testing.T) {
	const length, loopLen = 200, 150
	data := make([]byte, length)
	for i := range data {
		data[i] = byte(i)
	}
	wave := NewMemWaveform(data, 8, 1, 8000).WithLoop(loopLen)

	e := NewMixerEngine(1, 8000, NewSoftExecutor())
	// Force the unrollable branch: the loop body (150 bytes at 8-bit mono)
	// does not fit in a 64-byte channel buffer.
	e.SetHardMaxBufferBytes(64)
	e.Play(0, wave)
	e.SetVolLR(0, 1.0, 0.0)

	expected := func(n int) int16 {
		p := n
		if p >= length {
			p = (p-length)%loopLen + (length - loopLen)
		}
		return int16(int8(byte(p))) * 256
	}

	const chunk = 8
	const chunks = 37 // 296 frames, crossing the wrap at frame 200
	for c := 0; c < chunks; c++ {
		out := make([]int16, chunk*2)
		e.Poll(out, chunk)
		for k := 0; k < chunk; k++ {
			n := c*chunk + k
			want := expected(n)
			if out[2*k] != want {
				t.Fatalf("frame %d: want left %d, got %d", n, want, out[2*k])
			}
		}
	}
}

func TestScenarioEEventFiresAtScheduledTick(t *testing.T) {
	e := NewMixerEngine(1, 44100, NewSoftExecutor())

	fired := 0
	e.AddEvent(10, func(ctx any) int64 {
		fired++
		return 0
	}, nil)

	out := make([]int16, 40)
	e.Poll(out, 20)

	if fired != 1 {
		t.Fatalf("expected event to fire exactly once, got %d", fired)
	}
}

func TestScenarioFThrottleZeroFillsBeyondAllowance(t *testing.T) {
	const outputRate = 800 // PollPerSecond=8 => extra allowance of 100 frames

	data := make([]byte, 300)
	for i := range data {
		data[i] = 50
	}
	wave := NewMemWaveform(data, 8, 1, outputRate)

	e := NewMixerEngine(1, outputRate, NewSoftExecutor())
	e.Play(0, wave)
	e.SetVolLR(0, 1.0, 0.0)
	e.SetThrottle(true)
	e.GrantThrottle(10)

	out := make([]int16, 400)
	e.Poll(out, 200)

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
