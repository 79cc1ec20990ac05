package wavemix

import "testing"

type constWave struct {
	bits, channels int
	freq           float64
	length         int64
	loopLen        int64
	fill           byte
}

func (w *constWave) Bits() int          { return w.bits }
func (w *constWave) Channels() int      { return w.channels }
func (w *constWave) Frequency() float64 { return w.freq }
func (w *constWave) Len() int64         { return w.length }
func (w *constWave) LoopLen() int64     { return w.loopLen }

func (w *constWave) Pull(cur AppendCursor, wpos int64, wlen int, seeking bool) {
	avail := w.length - wpos
	if w.length == LenUnknown {
		avail = int64(wlen)
	}
	if int64(wlen) > avail {
		wlen = int(avail)
	}
	if wlen <= 0 {
		return
	}
	dst := cur.Append(wlen)
	for i := range dst {
		dst[i] = w.fill
	}
}

func TestSampleBufferSequentialFill(t *testing.T) {
	var buf SampleBuffer
	buf.Init(make([]byte, 64))
	buf.SetBPS(8)
	w := &constWave{bits: 8, channels: 1, freq: 8000, length: 1000, fill: 7}
	buf.Bind(w)

	n := 16
	got := buf.Get(0, &n)
	if n != 16 {
		t.Fatalf("expected 16 frames, got %d", n)
	}
	for _, b := range got {
		if b != 7 {
			t.Fatalf("expected fill byte 7, got %d", b)
		}
	}
}

func TestSampleBufferReuseOnContiguousAdvance(t *testing.T) {
	var buf SampleBuffer
	buf.Init(make([]byte, 64))
	buf.SetBPS(8)
	pulls := 0
	w := &pullCountingWave{constWave: constWave{bits: 8, channels: 1, freq: 8000, length: 1000, fill: 1}, count: &pulls}
	buf.Bind(w)

	n := 8
	buf.Get(0, &n)
	n = 8
	buf.Get(4, &n)
	if pulls != 2 {
		t.Fatalf("expected exactly 2 pulls for overlapping reads, got %d", pulls)
	}
}

type pullCountingWave struct {
	constWave
	count *int
}

func (w *pullCountingWave) Pull(cur AppendCursor, wpos int64, wlen int, seeking bool) {
	*w.count++
	w.constWave.Pull(cur, wpos, wlen, seeking)
}

func TestSampleBufferSeekFlushes(t *testing.T) {
	var buf SampleBuffer
	buf.Init(make([]byte, 64))
	buf.SetBPS(8)
	w := &constWave{bits: 8, channels: 1, freq: 8000, length: 1000, fill: 3}
	buf.Bind(w)

	n := 8
	buf.Get(0, &n)
	n = 8
	buf.Get(500, &n)
	if buf.WritePos() > 500 {
		t.Fatalf("expected seek to land at or before 500, got wpos=%d", buf.WritePos())
	}
}

func TestSampleBufferShortReadAtEnd(t *testing.T) {
	var buf SampleBuffer
	buf.Init(make([]byte, 64))
	buf.SetBPS(8)
	w := &constWave{bits: 8, channels: 1, freq: 8000, length: 10, fill: 9}
	buf.Bind(w)

	n := 20
	got := buf.Get(0, &n)
	if n != 10 {
		t.Fatalf("expected short read clamped to 10, got %d", n)
	}
	if len(got) != 10 {
		t.Fatalf("expected slice len 10, got %d", len(got))
	}
}

func TestSampleBufferSetBPSRejectsNonEmpty(t *testing.T) {
	var buf SampleBuffer
	buf.Init(make([]byte, 16))
	buf.SetBPS(8)
	buf.Bind(&constWave{bits: 8, channels: 1, freq: 1000, length: 1000, fill: 1})
	n := 8
	buf.Get(0, &n)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic calling SetBPS on a non-empty buffer")
		}
		iv, ok := r.(*InvariantViolation)
		if !ok || iv.Code != ErrSetBPSNonEmpty {
			t.Fatalf("expected ErrSetBPSNonEmpty, got %v", r)
		}
	}()
	buf.SetBPS(16)
}

// rampWave fills each frame with its own absolute position (mod 256),
// letting tests verify compaction preserves content at the right offsets
// instead of just the right byte count.
type rampWave struct{ constWave }

func (w *rampWave) Pull(cur AppendCursor, wpos int64, wlen int, seeking bool) {
	dst := cur.Append(wlen)
	for i := range dst {
		dst[i] = byte(wpos + int64(i))
	}
}

func TestSampleBufferCompactOnAppendOverflow(t *testing.T) {
	var buf SampleBuffer
	buf.Init(make([]byte, 16))
	buf.SetBPS(8)
	w := &rampWave{constWave{bits: 8, channels: 1, freq: 1000, length: LenUnknown}}
	buf.Bind(w)

	n := 16
	buf.Get(0, &n)
	buf.Discard(12)
	n = 8
	got := buf.Get(12, &n)
	if n != 8 {
		t.Fatalf("expected compaction to free room for 8 more frames, got %d", n)
	}
	for i, b := range got {
		want := byte(12 + i)
		if b != want {
			t.Fatalf("byte %d: want %d (absolute pos %d), got %d", i, want, 12+i, b)
		}
	}
}
