package services

import (
	"math/rand/v2"
	"time"
)

// DefaultDeliveryTime is used when a courier's delivery range is invalid.
const DefaultDeliveryTime = time.Second

// DeliveryTimeSampler picks a courier's trip duration uniformly from its range.
type DeliveryTimeSampler struct {
	trip  DurationRange
	valid bool
	intN  func(int64) int64
}

// NewDeliveryTimeSampler creates a sampler for trip. An invalid range is accepted
// and makes every sample DefaultDeliveryTime; check Valid to report it.
func NewDeliveryTimeSampler(trip DurationRange) DeliveryTimeSampler {
	return DeliveryTimeSampler{
		trip:  trip,
		valid: trip.Validate() == nil,
		intN:  defaultIntN,
	}
}

// WithRand returns a copy of the sampler drawing from r.
func (s DeliveryTimeSampler) WithRand(r *rand.Rand) DeliveryTimeSampler {
	s.intN = r.Int64N
	return s
}

// Valid reports whether the configured range is usable.
func (s DeliveryTimeSampler) Valid() bool {
	return s.valid
}

// Sample returns one trip duration.
func (s DeliveryTimeSampler) Sample() time.Duration {
	if !s.valid {
		return DefaultDeliveryTime
	}
	return s.trip.Sample(s.intN)
}
