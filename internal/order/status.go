// Package order holds the client view of the order lifecycle: the status
// state machine, cancellation rules and checkout.
package order

import (
	"fmt"
	"strings"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
)

// Status is the server-reported order status. Unknown values are carried
// through untouched.
type Status = models.OrderStatus

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusPickedUp  Status = "picked_up"
	StatusOnTheWay  Status = "on_the_way"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Steps is the canonical forward progression.
var Steps = []Status{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusPickedUp,
	StatusOnTheWay,
	StatusDelivered,
}

var labels = map[Status]string{
	StatusPending:   "Pending",
	StatusConfirmed: "Confirmed",
	StatusPreparing: "Preparing",
	StatusReady:     "Ready",
	StatusPickedUp:  "Picked up",
	StatusOnTheWay:  "On the way",
	StatusDelivered: "Delivered",
	StatusCancelled: "Cancelled",
}

// StepIndex locates s in Steps. Cancelled and unrecognised statuses give -1.
func StepIndex(s Status) int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

// Known reports whether s is one of the statuses this client understands.
func Known(s Status) bool {
	_, ok := labels[s]
	return ok
}

// Label is a display name; unknown statuses are rendered generically.
func Label(s Status) string {
	if l, ok := labels[s]; ok {
		return l
	}
	if s == "" {
		return "Unknown"
	}
	return strings.ReplaceAll(string(s), "_", " ")
}

// ShowTimeline is false for cancelled orders.
func ShowTimeline(s Status) bool {
	return s != StatusCancelled
}

func CanCancel(s Status) bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTrackOnMap is true once dispatch has begun.
func CanTrackOnMap(s Status) bool {
	return s == StatusReady || s == StatusPickedUp || s == StatusOnTheWay
}

// DriverVisible is true only while a driver is carrying the order.
func DriverVisible(s Status) bool {
	return s == StatusPickedUp || s == StatusOnTheWay
}

func IsTerminal(s Status) bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CheckTransition validates an observed status change. Statuses are never
// changed locally; this only lets observers flag anomalies. Unknown statuses
// on either side are accepted.
func CheckTransition(from, to Status) error {
	if from == to {
		return nil
	}
	if to == StatusCancelled {
		if CanCancel(from) {
			return nil
		}
		return fmt.Errorf("cannot move from %q to cancelled", from)
	}
	if from == StatusCancelled {
		return fmt.Errorf("cancelled order moved to %q", to)
	}
	fi, ti := StepIndex(from), StepIndex(to)
	if fi < 0 || ti < 0 {
		return nil
	}
	if ti < fi {
		return fmt.Errorf("status went backwards from %q to %q", from, to)
	}
	return nil
}
