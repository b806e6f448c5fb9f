package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestStepIndex(t *testing.T) {
	tests := []struct {
		status Status
		want   int
	}{
		{StatusPending, 0},
		{StatusConfirmed, 1},
		{StatusPreparing, 2},
		{StatusReady, 3},
		{StatusPickedUp, 4},
		{StatusOnTheWay, 5},
		{StatusDelivered, 6},
		{StatusCancelled, -1},
		{Status("refunded"), -1},
		{Status(""), -1},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, StepIndex(tt.status))
		})
	}
}

func TestDerivedFlags(t *testing.T) {
	tests := []struct {
		status   Status
		cancel   bool
		trackMap bool
		driver   bool
		terminal bool
		timeline bool
	}{
		{StatusPending, true, false, false, false, true},
		{StatusConfirmed, true, false, false, false, true},
		{StatusPreparing, false, false, false, false, true},
		{StatusReady, false, true, false, false, true},
		{StatusPickedUp, false, true, true, false, true},
		{StatusOnTheWay, false, true, true, false, true},
		{StatusDelivered, false, false, false, true, true},
		{StatusCancelled, false, false, false, true, false},
		{Status("awaiting_driver"), false, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.cancel, CanCancel(tt.status), "CanCancel")
			assert.Equal(t, tt.trackMap, CanTrackOnMap(tt.status), "CanTrackOnMap")
			assert.Equal(t, tt.driver, DriverVisible(tt.status), "DriverVisible")
			assert.Equal(t, tt.terminal, IsTerminal(tt.status), "IsTerminal")
			assert.Equal(t, tt.timeline, ShowTimeline(tt.status), "ShowTimeline")
		})
	}
}

func TestLabel_UnknownStatus(t *testing.T) {
	assert.Equal(t, "On the way", Label(StatusOnTheWay))
	assert.Equal(t, "awaiting driver", Label(Status("awaiting_driver")))
	assert.Equal(t, "Unknown", Label(""))
	assert.False(t, Known(Status("awaiting_driver")))
	assert.True(t, Known(StatusCancelled))
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		{name: "same", from: StatusReady, to: StatusReady},
		{name: "forward", from: StatusPending, to: StatusConfirmed},
		{name: "skip ahead", from: StatusConfirmed, to: StatusOnTheWay},
		{name: "backwards", from: StatusOnTheWay, to: StatusPreparing, wantErr: true},
		{name: "cancel pending", from: StatusPending, to: StatusCancelled},
		{name: "cancel confirmed", from: StatusConfirmed, to: StatusCancelled},
		{name: "cancel preparing", from: StatusPreparing, to: StatusCancelled, wantErr: true},
		{name: "revive cancelled", from: StatusCancelled, to: StatusPending, wantErr: true},
		{name: "unknown target", from: StatusReady, to: Status("held")},
		{name: "unknown source", from: Status("held"), to: StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// A server stream that only ever moves forward yields a non-decreasing step
// index, and every transition in it passes CheckTransition.
func TestStepIndex_MonotonicOverForwardStreams(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "polls")
		pos := 0
		var stream []Status
		for i := 0; i < n; i++ {
			pos += rapid.IntRange(0, 2).Draw(t, "advance")
			if pos >= len(Steps) {
				pos = len(Steps) - 1
			}
			stream = append(stream, Steps[pos])
		}

		prev := -1
		for i, s := range stream {
			idx := StepIndex(s)
			if idx < prev {
				t.Fatalf("step index went from %d to %d", prev, idx)
			}
			if i > 0 {
				if err := CheckTransition(stream[i-1], s); err != nil {
					t.Fatalf("forward transition rejected: %v", err)
				}
			}
			prev = idx
		}
	})
}

func TestCancelled_OnlyFromPendingOrConfirmed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		from := rapid.SampledFrom(append([]Status{StatusCancelled}, Steps...)).Draw(t, "from")
		err := CheckTransition(from, StatusCancelled)
		allowed := from == StatusPending || from == StatusConfirmed || from == StatusCancelled
		if allowed != (err == nil) {
			t.Fatalf("from %q: allowed=%v err=%v", from, allowed, err)
		}
		if from != StatusCancelled && CanCancel(from) != allowed {
			t.Fatalf("CanCancel(%q) disagrees with CheckTransition", from)
		}
	})
}
