//go:build headless

package main

import "github.com/retrowave/wavemix"

// OtoPlayer is a no-op stand-in for environments without real audio output
// (CI, containers without a sound device).
type OtoPlayer struct {
	started bool
	mixer   *wavemix.Mixer
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	return &OtoPlayer{}, nil
}

func (op *OtoPlayer) SetupPlayer(m *wavemix.Mixer) {
	op.mixer = m
}

func (op *OtoPlayer) Start() { op.started = true }
func (op *OtoPlayer) Stop()  { op.started = false }
func (op *OtoPlayer) Close() { op.started = false }

func (op *OtoPlayer) IsStarted() bool { return op.started }
