// Package services provides domain services that compute how long pipeline work
// takes in the pizzeria simulation.
//
// The package includes:
//   - DurationRange: an inclusive [Min, Max] range sampled uniformly
//   - CookTimeEstimator: per-baker cook time from a sampled base time, the pizza's
//     complexity and the baker's mastery factor
//   - DeliveryTimeSampler: per-courier trip duration
//
// Estimators are owned by a single worker and are not safe for concurrent use
// when built with a custom random source.
package services
