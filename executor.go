// executor.go - the external DSP command contract and a pure-Go reference
// implementation (spec.md §4.5, Design Notes §9).
//
// The mixer treats the thing that actually resamples and sums channels as
// an opaque collaborator reached through a narrow command/result contract,
// the same posture the teacher takes toward its coprocessor queue
// (coprocessor_manager.go's submit-then-sync pattern) — generalized here
// from fixed CPU-emulation jobs to one mix-block command per poll.

package wavemix

import "math"

// ChannelFlags packs the per-channel bits the executor needs to interpret a
// ChannelCommand's sample data.
type ChannelFlags uint8

const (
	ChanIs16 ChannelFlags = 1 << iota
	ChanStereoSecondary
)

// MaxU31 is the sentinel Len/LoopLen value meaning "no loop in this block":
// the engine has already linearized the window (see engine.go's unrollable
// loop case), so the executor just walks forward.
const MaxU31 = pos31Mask

// ChannelCommand is one channel's settings-block entry: the fixed-point
// position and step (low 31 bits; the caller adds the returned position's
// delta back onto its full 64-bit position), the resident sample window,
// and the packed volume pair.
type ChannelCommand struct {
	Pos, Step uint32 // low 31 bits of the byte-addressed fixed-point pos (relative to Samples[0]) and step
	BPSShift  uint8
	Flags     ChannelFlags
	Len       uint32 // frames; MaxU31 if the loop is presented as absent
	LoopLen   uint32 // frames; 0 if absent
	LVol, RVol FX15

	Base    BusAddress // bus address field for a hardware executor; MixerEngine sets it to 0
	Samples []byte     // resident frames at Base; a pure-Go executor's shortcut around Base
}

// ExecCommand is one poll-block's worth of work submitted to a DSPExecutor.
type ExecCommand struct {
	NumSamples   int
	MasterVolume FX16
	DestAddr     BusAddress
	Dest         []byte // s16 interleaved stereo output, len == NumSamples*4; software shortcut around DestAddr
	Channels     []ChannelCommand
}

// ExecResult carries the updated low-31 position for each channel, in the
// same order as the submitted ChannelCommand slice.
type ExecResult struct {
	Pos []uint32
}

// DSPExecutor resamples, mixes, and applies master volume for one block.
// A hardware-backed implementation would enqueue the command to a
// coprocessor and synchronize (the "highpri begin/end/sync" critical
// section of spec.md §4.5); Submit is expected to perform that
// synchronization internally so the engine sees a simple blocking call.
type DSPExecutor interface {
	Submit(cmd ExecCommand) ExecResult
}

// softExecutor is the reference pure-Go DSPExecutor: point-sampled
// (nearest-neighbour) resample, volume-ramped mix into an s16 stereo destination. It keeps a
// per-channel previous-volume state to ramp across blocks instead of
// stepping discontinuously, avoiding zipper noise on fast volume changes.
type softExecutor struct {
	prevLVol, prevRVol map[int]FX15
}

// NewSoftExecutor returns a DSPExecutor that runs entirely on the host CPU.
func NewSoftExecutor() DSPExecutor {
	return &softExecutor{prevLVol: map[int]FX15{}, prevRVol: map[int]FX15{}}
}

func (e *softExecutor) Submit(cmd ExecCommand) ExecResult {
	acc := make([]int32, cmd.NumSamples*2)

	for idx, ch := range cmd.Channels {
		e.mixChannel(idx, ch, acc, cmd.NumSamples)
	}

	mv := cmd.MasterVolume.Float()
	for i := 0; i < cmd.NumSamples; i++ {
		l := clampS16(int32(math.Round(float64(acc[2*i]) * mv)))
		r := clampS16(int32(math.Round(float64(acc[2*i+1]) * mv)))
		putS16LE(cmd.Dest[4*i:], l)
		putS16LE(cmd.Dest[4*i+2:], r)
	}

	res := ExecResult{Pos: make([]uint32, len(cmd.Channels))}
	for i, ch := range cmd.Channels {
		newPos := uint64(ch.Pos) + uint64(ch.Step)*uint64(cmd.NumSamples)
		res.Pos[i] = uint32(newPos & pos31Mask)
	}
	return res
}

func (e *softExecutor) mixChannel(idx int, ch ChannelCommand, acc []int32, ns int) {
	frameBytes := 1 << ch.BPSShift
	is16 := ch.Flags&ChanIs16 != 0
	sampleBytes := 1
	if is16 {
		sampleBytes = 2
	}
	stereo := frameBytes/sampleBytes == 2
	combinedShift := uint(FX64Frac) + uint(ch.BPSShift)

	startLVol, startRVol := e.prevLVol[idx], e.prevRVol[idx]
	if _, ok := e.prevLVol[idx]; !ok {
		startLVol, startRVol = ch.LVol, ch.RVol
	}

	fixedPos := int64(ch.Pos)
	fixedStep := int64(ch.Step)
	numFrames := len(ch.Samples) / frameBytes

	for i := 0; i < ns; i++ {
		// Point-sampled (nearest-neighbour) resampling: the source frame
		// holds until the fixed-point position advances past it. No
		// interpolation, matching a fixed-function resampler with no
		// interpolating tap.
		frameIdx := int(fixedPos >> combinedShift)
		l, r := readFrame(ch.Samples, frameIdx, numFrames, is16, stereo)

		t := float64(i) / float64(maxInt(ns-1, 1))
		lvol := rampFX15(startLVol, ch.LVol, t)
		rvol := rampFX15(startRVol, ch.RVol, t)

		if ch.Flags&ChanStereoSecondary != 0 {
			acc[2*i+1] += int32(r * rvol.Float() * 32768)
		} else {
			acc[2*i] += int32(l * lvol.Float() * 32768)
			acc[2*i+1] += int32(r * rvol.Float() * 32768)
		}

		fixedPos += fixedStep
	}

	e.prevLVol[idx], e.prevRVol[idx] = ch.LVol, ch.RVol
}

func rampFX15(from, to FX15, t float64) FX15 {
	return FX15FromFloat(from.Float() + (to.Float()-from.Float())*t)
}

func readFrame(samples []byte, frameIdx, numFrames int, is16, stereo bool) (l, r float64) {
	if frameIdx < 0 || frameIdx >= numFrames {
		return 0, 0
	}
	frameBytes := 1
	if is16 {
		frameBytes = 2
	}
	if stereo {
		frameBytes *= 2
	}
	off := frameIdx * frameBytes
	switch {
	case is16 && stereo:
		l = float64(int16(uint16(samples[off])|uint16(samples[off+1])<<8)) / 32768
		r = float64(int16(uint16(samples[off+2])|uint16(samples[off+3])<<8)) / 32768
	case is16 && !stereo:
		l = float64(int16(uint16(samples[off])|uint16(samples[off+1])<<8)) / 32768
		r = l
	case !is16 && stereo:
		l = float64(int8(samples[off])) / 128
		r = float64(int8(samples[off+1])) / 128
	default:
		l = float64(int8(samples[off])) / 128
		r = l
	}
	return l, r
}

func clampS16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func putS16LE(b []byte, v int16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

