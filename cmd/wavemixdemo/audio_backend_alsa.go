//go:build alsa && !headless

// audio_backend_alsa.go - direct ALSA stereo output backend for the demo
// host, gated behind the alsa build tag since it needs cgo and libasound.

package main

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>

static snd_pcm_t* openPCM(const char* device, int* err) {
    snd_pcm_t* handle;
    *err = snd_pcm_open(&handle, device, SND_PCM_STREAM_PLAYBACK, 0);
    return handle;
}

static int setupPCM(snd_pcm_t* handle, unsigned int rate) {
    snd_pcm_hw_params_t* params;
    int err;

    snd_pcm_hw_params_alloca(&params);
    err = snd_pcm_hw_params_any(handle, params);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_access(handle, params, SND_PCM_ACCESS_RW_INTERLEAVED);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_format(handle, params, SND_PCM_FORMAT_FLOAT);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_channels(handle, params, 2);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_rate(handle, params, rate, 0);
    if (err < 0) return err;

    err = snd_pcm_hw_params(handle, params);
    if (err < 0) return err;

    return snd_pcm_prepare(handle);
}

static int writePCM(snd_pcm_t* handle, float* buffer, int frames) {
    return snd_pcm_writei(handle, buffer, frames);
}

static void closePCM(snd_pcm_t* handle) {
    if (handle != NULL) {
        snd_pcm_drain(handle);
        snd_pcm_close(handle);
    }
}
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/retrowave/wavemix"
)

// ALSAPlayer drains a Mixer straight into ALSA via snd_pcm_writei, one chunk
// of interleaved stereo float32 frames at a time.
type ALSAPlayer struct {
	handle  *C.snd_pcm_t
	mixer   *wavemix.Mixer
	started bool
	playing bool
	mutex   sync.Mutex
	pcmBuf  []int16
	fltBuf  []float32
}

func NewALSAPlayer(sampleRate int) (*ALSAPlayer, error) {
	var err C.int
	handle := C.openPCM(C.CString("default"), &err)
	if err < 0 {
		return nil, fmt.Errorf("failed to open PCM device: %s", C.GoString(C.snd_strerror(err)))
	}
	if err = C.setupPCM(handle, C.uint(sampleRate)); err < 0 {
		C.closePCM(handle)
		return nil, fmt.Errorf("failed to setup PCM: %s", C.GoString(C.snd_strerror(err)))
	}
	return &ALSAPlayer{handle: handle}, nil
}

func (ap *ALSAPlayer) SetupPlayer(m *wavemix.Mixer) {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	ap.mixer = m
}

func (ap *ALSAPlayer) IsStarted() bool {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	return ap.started
}

// WriteFrames polls numFrames stereo frames from the bound Mixer and writes
// them to the PCM device.
func (ap *ALSAPlayer) WriteFrames(numFrames int) error {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	if !ap.playing || ap.mixer == nil {
		return nil
	}

	if cap(ap.pcmBuf) < numFrames*2 {
		ap.pcmBuf = make([]int16, numFrames*2)
	}
	pcm := ap.pcmBuf[:numFrames*2]
	ap.mixer.Poll(pcm, numFrames)

	if cap(ap.fltBuf) < numFrames*2 {
		ap.fltBuf = make([]float32, numFrames*2)
	}
	flt := ap.fltBuf[:numFrames*2]
	for i, v := range pcm {
		flt[i] = float32(v) / 32768
	}

	frames := C.writePCM(ap.handle, (*C.float)(unsafe.Pointer(&flt[0])), C.int(numFrames))
	if frames < 0 {
		if frames == -C.EPIPE {
			C.snd_pcm_prepare(ap.handle)
			frames = C.writePCM(ap.handle, (*C.float)(unsafe.Pointer(&flt[0])), C.int(numFrames))
		}
		if frames < 0 {
			return fmt.Errorf("write failed: %s", C.GoString(C.snd_strerror(C.int(frames))))
		}
	}
	return nil
}

func (ap *ALSAPlayer) Start() {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	if !ap.started {
		ap.started = true
		ap.playing = true
	}
}

func (ap *ALSAPlayer) Stop() {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	if ap.playing {
		ap.playing = false
		ap.started = false
	}
}

func (ap *ALSAPlayer) Close() {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	if ap.handle != nil {
		ap.playing = false
		ap.started = false
		C.closePCM(ap.handle)
		ap.handle = nil
	}
}

func newALSAIfRequested(sampleRate int, want bool) (*ALSAPlayer, error) {
	if !want {
		return nil, nil
	}
	return NewALSAPlayer(sampleRate)
}
