package services

import (
	"errors"
	"math/rand/v2"
	"time"
	"unicode/utf8"

	"pizzeria/internal/pkg/errs"
)

// DefaultMinCookTime is the floor applied to every cook time.
const DefaultMinCookTime = 100 * time.Millisecond

// charsPerComplexityUnit is how many characters of pizza description add one
// unit of cooking complexity.
const charsPerComplexityUnit = 5

// CookTimeEstimatorConfig holds the inputs of a baker's cook time.
type CookTimeEstimatorConfig struct {
	// BaseTime is the baker's own cook time range.
	BaseTime DurationRange
	// IngredientMultiplier is added once per complexity unit.
	IngredientMultiplier time.Duration
	// BaselineAverage is the shop-wide reference cook time. A baker whose average
	// base time equals it has a mastery factor of 1.
	BaselineAverage time.Duration
	// MinCookTime floors the result. Zero means DefaultMinCookTime.
	MinCookTime time.Duration
}

// CookTimeEstimator computes how long a given baker needs for a given pizza:
//
//	(sampled base time + complexity units * ingredient multiplier) * mastery factor
//
// floored at MinCookTime, where mastery factor = baker average base time / baseline average.
type CookTimeEstimator struct {
	cfg     CookTimeEstimatorConfig
	mastery float64
	intN    func(int64) int64
}

// NewCookTimeEstimator validates cfg and precomputes the mastery factor.
func NewCookTimeEstimator(cfg CookTimeEstimatorConfig) (CookTimeEstimator, error) {
	var ingredientErr, baselineErr error
	if cfg.IngredientMultiplier < 0 {
		ingredientErr = errs.NewValueIsOutOfRangeError("ingredient multiplier", cfg.IngredientMultiplier, 0, "unbounded")
	}
	if cfg.BaselineAverage < 0 {
		baselineErr = errs.NewValueIsOutOfRangeError("baseline average cook time", cfg.BaselineAverage, 0, "unbounded")
	}
	if err := errors.Join(cfg.BaseTime.Validate(), ingredientErr, baselineErr); err != nil {
		return CookTimeEstimator{}, err
	}

	if cfg.MinCookTime <= 0 {
		cfg.MinCookTime = DefaultMinCookTime
	}

	return CookTimeEstimator{
		cfg:     cfg,
		mastery: MasteryFactor(cfg.BaseTime, cfg.BaselineAverage),
		intN:    defaultIntN,
	}, nil
}

// WithRand returns a copy of the estimator drawing base times from r.
func (e CookTimeEstimator) WithRand(r *rand.Rand) CookTimeEstimator {
	e.intN = r.Int64N
	return e
}

// MasteryFactor returns the precomputed factor.
func (e CookTimeEstimator) MasteryFactor() float64 {
	return e.mastery
}

// Estimate returns the cook time for a pizza described by details.
func (e CookTimeEstimator) Estimate(details string) time.Duration {
	base := e.cfg.BaseTime.Sample(e.intN)
	ingredients := time.Duration(ComplexityUnits(details)) * e.cfg.IngredientMultiplier

	scaled := time.Duration(float64(base+ingredients) * e.mastery)
	return max(scaled, e.cfg.MinCookTime)
}

// MasteryFactor is the ratio of a baker's average base time to the baseline.
// Whole milliseconds are compared and the baseline is never less than 1ms, so a
// zero baseline yields a large factor instead of a division by zero.
func MasteryFactor(baseTime DurationRange, baselineAverage time.Duration) float64 {
	baseline := max(int64(1), baselineAverage.Milliseconds())
	return float64(baseTime.Average().Milliseconds()) / float64(baseline)
}

// ComplexityUnits grows with the length of the pizza description: one unit per
// five characters, and never less than one.
func ComplexityUnits(details string) int {
	return max(1, utf8.RuneCountInString(details)/charsPerComplexityUnit)
}
