//go:build !headless

// audio_backend_oto.go - oto v3 stereo output backend for the demo host.

package main

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"

	"github.com/retrowave/wavemix"
)

// OtoPlayer drains a Mixer into oto's pull-based stereo float32 output.
type OtoPlayer struct {
	ctx     *oto.Context
	player  *oto.Player
	mixer   atomic.Pointer[wavemix.Mixer]
	pcmBuf  []int16
	fltBuf  []float32
	started bool
	mutex   sync.Mutex // guards setup/control, not the Read hot path
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4096,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, err
	}
	<-ready
	return &OtoPlayer{ctx: ctx}, nil
}

// SetupPlayer binds the Mixer this player reads from.
func (op *OtoPlayer) SetupPlayer(m *wavemix.Mixer) {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	op.mixer.Store(m)
	op.player = op.ctx.NewPlayer(op)
}

// Read implements io.Reader for oto: p is a whole number of stereo float32
// frames, filled by polling the bound Mixer and converting s16 to float32.
func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	m := op.mixer.Load()
	if m == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	const frameBytes = 8 // 2 channels * 4-byte float32
	numFrames := len(p) / frameBytes
	if numFrames == 0 {
		return 0, nil
	}

	if cap(op.pcmBuf) < numFrames*2 {
		op.pcmBuf = make([]int16, numFrames*2)
	}
	pcm := op.pcmBuf[:numFrames*2]
	m.Poll(pcm, numFrames)

	if cap(op.fltBuf) < numFrames*2 {
		op.fltBuf = make([]float32, numFrames*2)
	}
	flt := op.fltBuf[:numFrames*2]
	for i, v := range pcm {
		flt[i] = float32(v) / 32768
	}

	n = numFrames * frameBytes
	copy(p[:n], (*[1 << 30]byte)(unsafe.Pointer(&flt[0]))[:n])
	return n, nil
}

func (op *OtoPlayer) Start() {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if !op.started && op.player != nil {
		op.player.Play()
		op.started = true
	}
}

func (op *OtoPlayer) Stop() {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if op.started && op.player != nil {
		op.player.Close()
		op.started = false
	}
}

func (op *OtoPlayer) Close() {
	op.Stop()
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if op.player != nil {
		op.player.Close()
		op.player = nil
	}
}

func (op *OtoPlayer) IsStarted() bool {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.started
}
