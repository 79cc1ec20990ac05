// scheduler.go - sample-timed callback scheduling (spec.md §4.7).
//
// N is at most a few tens of entries, so a linear scan is the right tool —
// the same call the teacher makes for its small, fixed-size envelope and
// LFO tables rather than reaching for a heap.

package wavemix

import "reflect"

// EventCallback is invoked when a scheduled event fires. It returns the
// delay in ticks until the event should fire again, or 0 to deregister.
type EventCallback func(ctx any) int64

type scheduledEvent struct {
	ticks int64
	cb    EventCallback
	ctx   any
}

// EventScheduler holds sample-timed callbacks ordered by absolute tick.
type EventScheduler struct {
	events []scheduledEvent
}

// Add schedules cb to fire delay ticks from now.
func (s *EventScheduler) Add(now int64, delay int64, cb EventCallback, ctx any) {
	s.events = append(s.events, scheduledEvent{ticks: now + delay, cb: cb, ctx: ctx})
}

// Remove deregisters the first entry matching both cb and ctx. Absence is a
// host-programming error.
func (s *EventScheduler) Remove(cb EventCallback, ctx any) {
	for i, e := range s.events {
		if sameCallback(e.cb, cb) && e.ctx == ctx {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return
		}
	}
	fail(ErrEventNotFound, "")
}

// Next returns the ticks of the event with the smallest ticks, ties broken
// by insertion order (first match), and ok=false if no event is scheduled.
func (s *EventScheduler) Next() (ticks int64, ok bool) {
	if len(s.events) == 0 {
		return 0, false
	}
	best := 0
	for i := 1; i < len(s.events); i++ {
		if s.events[i].ticks < s.events[best].ticks {
			best = i
		}
	}
	return s.events[best].ticks, true
}

// Fire invokes the event with the smallest ticks (assumed == now), then
// reschedules it by the returned delta or removes it on a zero return.
func (s *EventScheduler) Fire(now int64) {
	if len(s.events) == 0 {
		return
	}
	best := 0
	for i := 1; i < len(s.events); i++ {
		if s.events[i].ticks < s.events[best].ticks {
			best = i
		}
	}
	e := s.events[best]
	delta := e.cb(e.ctx)
	if delta == 0 {
		s.events = append(s.events[:best], s.events[best+1:]...)
		return
	}
	s.events[best].ticks = now + delta
}

// sameCallback compares two EventCallback values by the code pointer of the
// underlying function, the same identity the C function-pointer-plus-context
// idiom this mirrors would use. Two calls passing the same function literal
// compare equal regardless of captured state; ctx is what disambiguates
// distinct registrations of it, exactly as spec.md's remove(cb, ctx) intends.
func sameCallback(a, b EventCallback) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
