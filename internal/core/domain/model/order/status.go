package order

import (
	"fmt"

	"pizzeria/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a linear state machine with a single escape hatch:
//
//	Received ──> Cooking ──> Cooked ──> Delivering ──> Delivered
//	    │           │           │            │
//	    └───────────┴───────────┴────────────┴──────> Discarded
//
// Delivered and Discarded are final; no transition leaves them.
// The textual form ("RECEIVED", "COOKING", ...) is what the event log and the
// HTTP API carry.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Received is the initial status of an accepted order waiting in the queue.
	Received

	// Cooking means a baker took the order and is preparing it.
	Cooking

	// Cooked means the pizza is ready and is (or is about to be) on the warehouse shelf.
	Cooked

	// Delivering means a courier picked the pizza up.
	Delivering

	// Delivered is the successful final state.
	Delivered

	// Discarded is the failure final state, reachable from any non-final state.
	Discarded
)

// getStatusStrings returns a map of Status values to their string representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "UNKNOWN",
		Received:   "RECEIVED",
		Cooking:    "COOKING",
		Cooked:     "COOKED",
		Delivering: "DELIVERING",
		Delivered:  "DELIVERED",
		Discarded:  "DISCARDED",
	}
}

// getNextStatuses returns the single forward transition defined for each status.
// Final statuses and Unknown have no entry.
func getNextStatuses() map[Status]Status {
	//nolint:exhaustive // final statuses intentionally have no successor
	return map[Status]Status{
		Received:   Cooking,
		Cooking:    Cooked,
		Cooked:     Delivering,
		Delivering: Delivered,
	}
}

// ParseStatus converts the textual form back into a Status.
//
// Returns:
//   - the matching Status for "RECEIVED" .. "DISCARDED"
//   - ValueIsInvalidError for anything else, including "UNKNOWN"
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is one of the defined lifecycle states.
func (s Status) Validate() error {
	if s <= Unknown || s > Discarded {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", int(s)))
	}
	return nil
}

// String implements fmt.Stringer and is safe to call on invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsFinal reports whether no further transition can leave this status.
func (s Status) IsFinal() bool {
	return s == Delivered || s == Discarded
}

// Next returns the forward transition for the status.
//
// Returns:
//   - (next, nil) for Received, Cooking, Cooked and Delivering
//   - (Unknown, error) for final or unrecognized statuses
func (s Status) Next() (Status, error) {
	next, ok := getNextStatuses()[s]
	if !ok {
		return Unknown, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s has no next status", s.String()),
		)
	}
	return next, nil
}

// MarshalText encodes the status by name so JSON carries "COOKING" rather than 2.
func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
