// errors.go - the InvariantViolation family.
//
// The teacher fails fast on programmer error with a bare panic (see its
// envelope state machine: `panic("unhandled default case")`). wavemix keeps
// the fail-fast posture but panics with a typed value so a host can recover
// and inspect the cause with errors.As instead of string-matching a message.

package wavemix

import "fmt"

// InvariantCode identifies a class of programmer error.
type InvariantCode int

const (
	ErrBadChannelIndex InvariantCode = iota
	ErrStereoSecondary
	ErrOddPollLength
	ErrFrequencyOverLimit
	ErrLoopOnUnknownLength
	ErrSetBPSNonEmpty
	ErrEventNotFound
	ErrAppendOverflow
	ErrBadWaveform
	ErrReentrantPoll
)

var invariantNames = map[InvariantCode]string{
	ErrBadChannelIndex:     "channel index out of range",
	ErrStereoSecondary:     "operation not permitted on a stereo-secondary channel",
	ErrOddPollLength:       "poll requires an even sample count",
	ErrFrequencyOverLimit:  "frequency exceeds configured channel limit",
	ErrLoopOnUnknownLength: "waveform cannot loop with an unknown length",
	ErrSetBPSNonEmpty:      "set_bps called on a non-empty sample buffer",
	ErrEventNotFound:       "no matching scheduled event to remove",
	ErrAppendOverflow:      "sample buffer too small for append",
	ErrBadWaveform:         "waveform does not satisfy the playback contract",
	ErrReentrantPoll:       "poll invoked re-entrantly from an event callback",
}

// InvariantViolation reports a contract-breaking condition. Per spec.md §7
// these are programmer errors: fail fast, no local recovery.
type InvariantViolation struct {
	Code   InvariantCode
	Detail string
}

func (e *InvariantViolation) Error() string {
	name := invariantNames[e.Code]
	if e.Detail == "" {
		return name
	}
	return fmt.Sprintf("%s: %s", name, e.Detail)
}

// fail panics with a typed InvariantViolation.
func fail(code InvariantCode, format string, args ...any) {
	panic(&InvariantViolation{Code: code, Detail: fmt.Sprintf(format, args...)})
}
