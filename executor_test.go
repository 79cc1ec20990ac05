package wavemix

import (
	"encoding/binary"
	"testing"
)

func TestSoftExecutorPassthroughAtUnityStep(t *testing.T) {
	e := NewSoftExecutor()

	values := []int16{1000, -2000, 3000, -4000}
	samples := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(samples[i*2:], uint16(v))
	}

	combinedShift := uint(FX64Frac) + 1 // bpsShift=1: 16-bit mono
	cmd := ExecCommand{
		NumSamples:   len(values),
		MasterVolume: FX16FromFloat(1.0),
		Dest:         make([]byte, len(values)*4),
		Channels: []ChannelCommand{{
			Pos:      0,
			Step:     uint32(1) << combinedShift,
			BPSShift: 1,
			Flags:    ChanIs16,
			Len:      MaxU31,
			LVol:     FX15FromFloat(1.0),
			RVol:     FX15FromFloat(1.0),
			Samples:  samples,
		}},
	}

	res := e.Submit(cmd)
	if len(res.Pos) != 1 {
		t.Fatalf("expected one position result, got %d", len(res.Pos))
	}

	for i, want := range values {
		l := int16(binary.LittleEndian.Uint16(cmd.Dest[4*i:]))
		r := int16(binary.LittleEndian.Uint16(cmd.Dest[4*i+2:]))
		// Ramped volume means exact equality only holds once the ramp has
		// settled; the first sample on a fresh channel starts at target
		// volume (no prior block to ramp from), so frame 0 must match
		// exactly and gives a stable, deterministic assertion.
		if i == 0 && (l != want || r != want) {
			t.Fatalf("frame 0: want (%d,%d), got (%d,%d)", want, want, l, r)
		}
	}
}

func TestSoftExecutorMasterVolumeAttenuates(t *testing.T) {
	e := NewSoftExecutor()
	samples := make([]byte, 8)
	binary.LittleEndian.PutUint16(samples[0:], uint16(int16(10000)))
	binary.LittleEndian.PutUint16(samples[4:], uint16(int16(10000)))

	combinedShift := uint(FX64Frac) + 1
	cmd := ExecCommand{
		NumSamples:   2,
		MasterVolume: FX16FromFloat(0.5),
		Dest:         make([]byte, 8),
		Channels: []ChannelCommand{{
			Step:     uint32(1) << combinedShift,
			BPSShift: 1,
			Flags:    ChanIs16,
			Len:      MaxU31,
			LVol:     FX15FromFloat(1.0),
			RVol:     FX15FromFloat(1.0),
			Samples:  samples,
		}},
	}
	e.Submit(cmd)
	l := int16(binary.LittleEndian.Uint16(cmd.Dest[0:]))
	if l > 5100 || l < 4900 {
		t.Fatalf("expected ~half-volume output near 5000, got %d", l)
	}
}

func TestSoftExecutorAdvancesPosition(t *testing.T) {
	e := NewSoftExecutor()
	samples := make([]byte, 64)
	combinedShift := uint(FX64Frac) + 1
	cmd := ExecCommand{
		NumSamples: 4,
		Dest:       make([]byte, 16),
		Channels: []ChannelCommand{{
			Step:     uint32(1) << combinedShift,
			BPSShift: 1,
			Flags:    ChanIs16,
			Len:      MaxU31,
			Samples:  samples,
		}},
	}
	res := e.Submit(cmd)
	want := uint32(4) << combinedShift
	if res.Pos[0] != want {
		t.Fatalf("expected advanced position %d, got %d", want, res.Pos[0])
	}
}
