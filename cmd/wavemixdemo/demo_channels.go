package main

import "github.com/retrowave/wavemix"

// demoCtx carries the state a rescheduled event needs, since
// wavemix.EventCallback's ctx is an opaque any.
type demoCtx struct {
	mixer *wavemix.Mixer
	blip  wavemix.Waveform
	rate  float64
}

// setupDemoChannels plays a looping square-wave tone on channel 0 and a
// one-shot decaying blip on channel 1, replayed once a second by a
// scheduled event — enough to exercise play, loop, volume, and the event
// scheduler through the facade.
func setupDemoChannels(m *wavemix.Mixer, outputRate float64) {
	const tableLen = 64
	const toneHz = 220.0

	table := make([]byte, tableLen)
	for i := range table {
		if i < tableLen/2 {
			table[i] = byte(int8(40))
		} else {
			table[i] = byte(int8(-40))
		}
	}
	tone := wavemix.NewMemWaveform(table, 8, 1, toneHz*tableLen).WithLoop(tableLen)
	m.ChPlay(0, tone)
	m.ChSetVol(0, 0.4, 0.4)

	const blipLen = 400
	blipData := make([]byte, blipLen)
	for i := range blipData {
		amt := 100 - i/4
		if amt < 0 {
			amt = 0
		}
		if i%2 == 0 {
			blipData[i] = byte(int8(amt))
		} else {
			blipData[i] = byte(int8(-amt))
		}
	}
	blip := wavemix.NewMemWaveform(blipData, 8, 1, outputRate)
	m.ChPlay(1, blip)
	m.ChSetVol(1, 0.6, 0.6)

	ctx := &demoCtx{mixer: m, blip: blip, rate: outputRate}
	m.AddEvent(int64(outputRate), replayBlip, ctx)
}

func replayBlip(raw any) int64 {
	ctx := raw.(*demoCtx)
	ctx.mixer.ChPlay(1, ctx.blip)
	return int64(ctx.rate)
}
