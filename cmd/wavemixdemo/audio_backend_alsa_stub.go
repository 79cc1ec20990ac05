//go:build !alsa

// audio_backend_alsa_stub.go - stand-in for builds without the alsa tag, so
// -alsa fails with a clear message instead of a missing-symbol build error.

package main

import (
	"fmt"

	"github.com/retrowave/wavemix"
)

type ALSAPlayer struct{}

func newALSAIfRequested(sampleRate int, want bool) (*ALSAPlayer, error) {
	if want {
		return nil, fmt.Errorf("built without ALSA support (rebuild with -tags alsa)")
	}
	return nil, nil
}

func (ap *ALSAPlayer) SetupPlayer(m *wavemix.Mixer) {}
func (ap *ALSAPlayer) Start()                       {}
func (ap *ALSAPlayer) Stop()                        {}
func (ap *ALSAPlayer) Close()                       {}
func (ap *ALSAPlayer) WriteFrames(n int) error      { return nil }
