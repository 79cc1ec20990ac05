// samplebuffer.go - the per-channel bounded sample staging area (spec.md §4.2).
//
// Grounded on audio_backend_oto.go's pre-allocated-buffer-reused-across-calls
// style (`op.sampleBuf`, grown only when undersized, never per-call) — the
// same discipline applies here: SampleBuffer never allocates. Init binds a
// region the engine has already carved, and compaction shuffles bytes in
// place.

package wavemix

// AppendCursor is the narrow, append-only capability handed to a Waveform's
// Pull for the duration of one call. It prevents the producer from reading
// buffer content, retaining the buffer past the call, or recursively pulling.
// See spec.md §9 "Producer appends into a buffer held by the engine".
type AppendCursor struct {
	buf *SampleBuffer
}

// Append reserves wlen frames at the tail of the bound SampleBuffer and
// returns the raw bytes for the producer to fill. Panics with
// ErrAppendOverflow if wlen frames will not fit even after compaction.
func (c AppendCursor) Append(wlen int) []byte {
	return c.buf.appendFrames(wlen)
}

// SampleBuffer is a bounded, alignment-constrained staging area for one
// channel's decoded samples, fed by an opaque Waveform producer through the
// pull protocol of spec.md §4.1.
type SampleBuffer struct {
	mem      []byte   // uncached, 8-byte-aligned bound region; capacity is a multiple of 8
	bpsShift uint     // bytes-per-frame = 1 << bpsShift; bpsShift ∈ {0,1,2}
	wpos     int64    // absolute index of the first resident frame
	widx     int      // count of frames currently resident
	ridx     int      // smallest frame offset still needed
	producer Waveform // bound pull source, nil when unbound
}

// Init binds mem (whose length must be a multiple of 8) as this buffer's
// backing storage and zeros all buffer state.
func (b *SampleBuffer) Init(mem []byte) {
	if len(mem)%8 != 0 {
		fail(ErrAppendOverflow, "buffer region length %d is not a multiple of 8", len(mem))
	}
	b.mem = mem
	b.bpsShift = 0
	b.wpos, b.widx, b.ridx = 0, 0, 0
	b.producer = nil
}

// capacity returns the buffer's capacity in frames at the current bpsShift.
func (b *SampleBuffer) capacity() int {
	return len(b.mem) >> b.bpsShift
}

// SetBPS sets the bytes-per-frame for a (bits×channels)-packed frame. bits
// must be one of 8, 16, 32. Fails with ErrSetBPSNonEmpty if the buffer
// currently holds data — changing frame size over live content would
// invalidate every byte offset in flight.
func (b *SampleBuffer) SetBPS(bitsPerFrame int) {
	if b.widx != 0 {
		fail(ErrSetBPSNonEmpty, "widx=%d", b.widx)
	}
	switch bitsPerFrame {
	case 8:
		b.bpsShift = 0
	case 16:
		b.bpsShift = 1
	case 32:
		b.bpsShift = 2
	default:
		fail(ErrBadWaveform, "unsupported frame size %d bits", bitsPerFrame)
	}
}

// BPSShift returns the buffer's current bytes-per-frame shift.
func (b *SampleBuffer) BPSShift() uint { return b.bpsShift }

// Bind sets the pull producer. Binding a different producer than the one
// currently bound clears all cached content, since the buffer's resident
// bytes no longer correspond to any waveform.
func (b *SampleBuffer) Bind(producer Waveform) {
	if b.producer != producer {
		b.Flush()
	}
	b.producer = producer
}

// Producer returns the currently bound producer, or nil.
func (b *SampleBuffer) Producer() Waveform { return b.producer }

// Flush discards all resident content.
func (b *SampleBuffer) Flush() {
	b.wpos, b.widx, b.ridx = 0, 0, 0
}

// roundUpToEightBytes rounds a frame count up so that, at the buffer's
// current bpsShift, it occupies a whole number of 8-byte units.
func roundUpToEightBytes(frames int, bpsShift uint) int {
	frameBytes := 1 << bpsShift
	unit := 8 / frameBytes
	if rem := frames % unit; rem != 0 {
		frames += unit - rem
	}
	return frames
}

// Get guarantees that *wlen consecutive frames are resident starting at
// absolute frame index wpos, pulling from the bound producer as needed, and
// returns a slice over them. If the producer underproduces (waveform EOF),
// *wlen is clamped to the frames actually available — callers see a short
// read, never an error (spec.md §7).
func (b *SampleBuffer) Get(wpos int64, wlen *int) []byte {
	switch {
	case wpos < b.wpos || wpos > b.wpos+int64(b.widx):
		// Flush and seek-pull: the requested window is not contiguous with
		// what's resident.
		b.Flush()
		b.wpos = wpos
		req := *wlen
		if (b.wpos<<b.bpsShift)&1 != 0 {
			b.wpos--
			req++
		}
		b.pull(b.wpos, roundUpToEightBytes(req, b.bpsShift), true)
		b.ridx = int(wpos - b.wpos)
	default:
		b.ridx = int(wpos - b.wpos)
		reuse := int(b.wpos) + b.widx - int(wpos)
		if reuse < *wlen {
			shortfall := *wlen - reuse
			b.pull(b.wpos+int64(b.widx), roundUpToEightBytes(shortfall, b.bpsShift), false)
		}
	}
	if b.widx-b.ridx < *wlen {
		*wlen = b.widx - b.ridx
	}
	if *wlen < 0 {
		*wlen = 0
	}
	start := b.ridx << b.bpsShift
	end := (b.ridx + *wlen) << b.bpsShift
	return b.mem[start:end]
}

// pull invokes the bound producer to append wlen frames starting at the
// absolute index wpos. A nil producer or non-positive wlen is a no-op,
// leaving the buffer's content exactly as requested (silence is the
// caller's responsibility once Get reports a short read).
func (b *SampleBuffer) pull(wpos int64, wlen int, seeking bool) {
	if b.producer == nil || wlen <= 0 {
		return
	}
	b.producer.Pull(AppendCursor{buf: b}, wpos, wlen, seeking)
}

// appendFrames reserves wlen frames at the tail, compacting first if
// necessary, and returns the raw bytes for the producer to fill.
func (b *SampleBuffer) appendFrames(wlen int) []byte {
	cap := b.capacity()
	if b.widx+wlen > cap {
		b.compact()
		if b.widx+wlen > cap {
			fail(ErrAppendOverflow, "need %d more frames, only %d of %d free after compaction", wlen, cap-b.widx, cap)
		}
	}
	start := b.widx << b.bpsShift
	end := (b.widx + wlen) << b.bpsShift
	b.widx += wlen
	return b.mem[start:end]
}

// compact rolls ridx down to the nearest 8-byte-aligned boundary and
// discards everything strictly before it, sliding the kept bytes to the
// head of the buffer. This preserves the 2-byte address phase automatically:
// an 8-byte-aligned frame count is always an even number of bytes.
func (b *SampleBuffer) compact() {
	if b.ridx == 0 {
		return
	}
	frameBytes := 1 << b.bpsShift
	unit := 8 / frameBytes
	ridxNew := (b.ridx / unit) * unit
	if ridxNew == 0 {
		return
	}
	srcStart := ridxNew << b.bpsShift
	n := (b.widx - ridxNew) << b.bpsShift
	copy(b.mem[:n], b.mem[srcStart:srcStart+n])
	b.wpos += int64(ridxNew)
	b.widx -= ridxNew
	b.ridx -= ridxNew
}

// Discard advances the head of the buffer to the absolute frame index wpos,
// marking everything before it as no longer needed. Preserves the 2-byte
// phase by decrementing the target one frame if necessary.
func (b *SampleBuffer) Discard(wpos int64) {
	target := wpos
	if (target<<b.bpsShift)&1 != 0 {
		target--
	}
	newRidx := int(target - b.wpos)
	if newRidx < 0 {
		newRidx = 0
	}
	if newRidx > b.widx {
		newRidx = b.widx
	}
	b.ridx = newRidx
}

// WritePos returns the absolute index of the first resident frame.
func (b *SampleBuffer) WritePos() int64 { return b.wpos }

// Resident returns the number of frames currently resident.
func (b *SampleBuffer) Resident() int { return b.widx }

// ByteCapacity returns the buffer's total backing size in bytes, independent
// of the current bpsShift.
func (b *SampleBuffer) ByteCapacity() int { return len(b.mem) }

// RebaseWritePos relabels the buffer's resident bytes as belonging to a
// different absolute frame range, used by the engine's unrollable-loop
// "coordinated wrap" (spec.md §4.5): valid only when the content at the new
// absolute position is known to be identical to what's already resident,
// which holds for a looping waveform's repeating tail.
func (b *SampleBuffer) RebaseWritePos(newWpos int64) { b.wpos = newWpos }
