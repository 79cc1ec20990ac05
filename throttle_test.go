package wavemix

import "testing"

func TestThrottleInactivePassesThrough(t *testing.T) {
	var th Throttle
	if got := th.Clamp(1000, 44100); got != 1000 {
		t.Fatalf("expected inactive throttle to pass requested through, got %d", got)
	}
}

func TestThrottleClampsToAllowancePlusExtra(t *testing.T) {
	var th Throttle
	th.Active = true
	th.Grant(100)

	outputRate := float64(PollPerSecond * 10) // extra = 10
	got := th.Clamp(1000, outputRate)
	if got != 110 {
		t.Fatalf("expected clamp to allowance+extra=110, got %d", got)
	}
}

func TestThrottleDeductsAllowance(t *testing.T) {
	var th Throttle
	th.Active = true
	th.Grant(50)

	th.Clamp(10, 0)
	if th.allowance != 40 {
		t.Fatalf("expected allowance reduced to 40, got %d", th.allowance)
	}
}
