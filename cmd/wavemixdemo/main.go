// Command wavemixdemo exercises the wavemix facade end-to-end: it plays a
// looping tone and a one-shot blip through a Mixer and drains Poll into a
// real audio backend, mirroring the teacher's own thin cmd/ convention
// (construct backend, hand it a sample source, Start/Stop) rather than
// folding a second main into the library tree.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/retrowave/wavemix"
)

func main() {
	rate := flag.Int("rate", 44100, "output sample rate in Hz")
	seconds := flag.Float64("duration", 4, "seconds to play before exiting")
	useALSA := flag.Bool("alsa", false, "use the direct ALSA backend instead of oto (requires -tags alsa)")
	flag.Parse()

	mixer := wavemix.NewMixer(2, float64(*rate), nil)
	setupDemoChannels(mixer, float64(*rate))

	duration := time.Duration(*seconds * float64(time.Second))

	if *useALSA {
		ap, err := newALSAIfRequested(*rate, true)
		if err != nil {
			log.Fatal(err)
		}
		ap.SetupPlayer(mixer)
		ap.Start()
		defer ap.Close()

		framesPerChunk := *rate / 50 // 20ms chunks
		deadline := time.Now().Add(duration)
		for time.Now().Before(deadline) {
			if err := ap.WriteFrames(framesPerChunk); err != nil {
				log.Fatal(err)
			}
		}
		return
	}

	op, err := NewOtoPlayer(*rate)
	if err != nil {
		log.Fatal(err)
	}
	op.SetupPlayer(mixer)
	op.Start()
	time.Sleep(duration)
	op.Stop()
	op.Close()
}
