package services

import (
	"fmt"
	"math/rand/v2"
	"time"

	"pizzeria/internal/pkg/errs"
)

// DurationRange is an inclusive range of durations.
type DurationRange struct {
	Min time.Duration
	Max time.Duration
}

// NewDurationRange creates a range after checking 0 < lo <= hi.
func NewDurationRange(lo, hi time.Duration) (DurationRange, error) {
	r := DurationRange{Min: lo, Max: hi}
	if err := r.Validate(); err != nil {
		return DurationRange{}, err
	}
	return r, nil
}

// Validate reports whether both ends are positive and ordered.
func (r DurationRange) Validate() error {
	if r.Min <= 0 {
		return errs.NewValueIsOutOfRangeError("min duration", r.Min, time.Duration(1), r.Max)
	}
	if r.Max < r.Min {
		return errs.NewValueIsInvalidErrorWithCause(
			"duration range",
			fmt.Errorf("max %s is less than min %s", r.Max, r.Min),
		)
	}
	return nil
}

// Average returns the midpoint of the range.
func (r DurationRange) Average() time.Duration {
	return (r.Min + r.Max) / 2
}

// Sample picks a duration uniformly from [Min, Max] using intN.
func (r DurationRange) Sample(intN func(int64) int64) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(intN(int64(r.Max-r.Min)+1))
}

func (r DurationRange) String() string {
	return fmt.Sprintf("[%s, %s]", r.Min, r.Max)
}

func defaultIntN(n int64) int64 {
	return rand.Int64N(n)
}
