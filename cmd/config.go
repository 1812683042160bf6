package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pizzeria/internal/adapters/out/eventlog"
	"pizzeria/internal/core/domain/services"
	"pizzeria/internal/jobs"
	"pizzeria/internal/pkg/errs"
	"pizzeria/internal/workers"
)

// Environment keys read by LoadConfig.
const (
	EnvHTTPPort             = "PIZZERIA_HTTP_PORT"
	EnvQueueCapacity        = "PIZZERIA_QUEUE_CAPACITY"
	EnvWarehouseCapacity    = "PIZZERIA_WAREHOUSE_CAPACITY"
	EnvBakers               = "PIZZERIA_BAKERS"
	EnvCouriers             = "PIZZERIA_COURIERS"
	EnvIngredientMultiplier = "PIZZERIA_INGREDIENT_MULTIPLIER"
	EnvBaselineCookTime     = "PIZZERIA_BASELINE_COOK_TIME"
	EnvMinCookTime          = "PIZZERIA_MIN_COOK_TIME"
	EnvEventLogPath         = "PIZZERIA_EVENT_LOG_PATH"
	EnvEventLogMaxSize      = "PIZZERIA_EVENT_LOG_MAX_SIZE_BYTES"
	EnvWorkerStopGrace      = "PIZZERIA_WORKER_STOP_GRACE"
	EnvWorkTime             = "PIZZERIA_WORK_TIME"
	EnvReportSchedule       = "PIZZERIA_REPORT_SCHEDULE"
	EnvSyncSchedule         = "PIZZERIA_SYNC_SCHEDULE"
	EnvLogLevel             = "PIZZERIA_LOG_LEVEL"
	EnvLogFormat            = "PIZZERIA_LOG_FORMAT"
	EnvLogFile              = "PIZZERIA_LOG_FILE"
)

// BakerConfig describes one baker. Bakers are numbered by position, from 1.
type BakerConfig struct {
	CookTime services.DurationRange
}

// CourierConfig describes one courier. Couriers are numbered by position, from 1.
type CourierConfig struct {
	Capacity     int
	DeliveryTime services.DurationRange
}

type Config struct {
	HTTPPort string

	QueueCapacity     int
	WarehouseCapacity int

	Bakers   []BakerConfig
	Couriers []CourierConfig

	IngredientMultiplier    time.Duration
	BaselineAverageCookTime time.Duration
	MinCookTime             time.Duration

	EventLogPath         string
	EventLogMaxSizeBytes int64

	WorkerStopGrace time.Duration
	// WorkTime stops the application after it elapses. Zero runs until a signal.
	WorkTime time.Duration

	ReportSchedule string
	SyncSchedule   string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// DefaultConfig returns the settings used for every key that is not set.
func DefaultConfig() Config {
	return Config{
		HTTPPort:                "8080",
		QueueCapacity:           10,
		WarehouseCapacity:       5,
		Bakers:                  []BakerConfig{{CookTime: services.DurationRange{Min: time.Second, Max: 2 * time.Second}}},
		Couriers:                []CourierConfig{{Capacity: 2, DeliveryTime: services.DurationRange{Min: time.Second, Max: 3 * time.Second}}},
		IngredientMultiplier:    100 * time.Millisecond,
		BaselineAverageCookTime: 1500 * time.Millisecond,
		MinCookTime:             services.DefaultMinCookTime,
		EventLogPath:            "data/orders.log",
		EventLogMaxSizeBytes:    eventlog.DefaultMaxLogSizeBytes,
		WorkerStopGrace:         workers.DefaultGracePeriod,
		ReportSchedule:          jobs.DefaultReportSchedule,
		SyncSchedule:            jobs.DefaultSyncSchedule,
		LogLevel:                "info",
		LogFormat:               "text",
	}
}

// LoadConfig builds a Config from lookup (usually os.LookupEnv) on top of
// DefaultConfig and validates it. All parse and validation errors are joined.
//
// Worker lists are comma separated:
//
//	PIZZERIA_BAKERS=800ms:1200ms,1s:2s
//	PIZZERIA_COURIERS=2:1s:3s,1:500ms:1500ms   (capacity:min:max)
func LoadConfig(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	p := parser{lookup: lookup}

	p.setString(EnvHTTPPort, &cfg.HTTPPort)
	p.setInt(EnvQueueCapacity, &cfg.QueueCapacity)
	p.setInt(EnvWarehouseCapacity, &cfg.WarehouseCapacity)
	p.setDuration(EnvIngredientMultiplier, &cfg.IngredientMultiplier)
	p.setDuration(EnvBaselineCookTime, &cfg.BaselineAverageCookTime)
	p.setDuration(EnvMinCookTime, &cfg.MinCookTime)
	p.setString(EnvEventLogPath, &cfg.EventLogPath)
	p.setInt64(EnvEventLogMaxSize, &cfg.EventLogMaxSizeBytes)
	p.setDuration(EnvWorkerStopGrace, &cfg.WorkerStopGrace)
	p.setDuration(EnvWorkTime, &cfg.WorkTime)
	p.setString(EnvReportSchedule, &cfg.ReportSchedule)
	p.setString(EnvSyncSchedule, &cfg.SyncSchedule)
	p.setString(EnvLogLevel, &cfg.LogLevel)
	p.setString(EnvLogFormat, &cfg.LogFormat)
	p.setString(EnvLogFile, &cfg.LogFile)

	if raw, ok := p.get(EnvBakers); ok {
		bakers, err := ParseBakers(raw)
		p.fail(EnvBakers, err)
		cfg.Bakers = bakers
	}
	if raw, ok := p.get(EnvCouriers); ok {
		couriers, err := ParseCouriers(raw)
		p.fail(EnvCouriers, err)
		cfg.Couriers = couriers
	}

	if err := errors.Join(p.err, cfg.Validate()); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting and joins all problems found.
func (c Config) Validate() error {
	var problems []error
	check := func(err error) {
		if err != nil {
			problems = append(problems, err)
		}
	}

	if strings.TrimSpace(c.HTTPPort) == "" {
		check(errs.NewValueIsRequiredError("HTTP port"))
	}
	if c.QueueCapacity <= 0 {
		check(errs.NewValueIsOutOfRangeError("queue capacity", c.QueueCapacity, 1, "unbounded"))
	}
	if c.WarehouseCapacity <= 0 {
		check(errs.NewValueIsOutOfRangeError("warehouse capacity", c.WarehouseCapacity, 1, "unbounded"))
	}
	if len(c.Bakers) == 0 {
		check(errs.NewValueIsRequiredError("bakers"))
	}
	for i, b := range c.Bakers {
		if err := b.CookTime.Validate(); err != nil {
			check(fmt.Errorf("baker %d: %w", i+1, err))
		}
	}
	if len(c.Couriers) == 0 {
		check(errs.NewValueIsRequiredError("couriers"))
	}
	for i, cr := range c.Couriers {
		if cr.Capacity <= 0 {
			check(fmt.Errorf("courier %d: %w", i+1,
				errs.NewValueIsOutOfRangeError("capacity", cr.Capacity, 1, "unbounded")))
		}
		if err := cr.DeliveryTime.Validate(); err != nil {
			check(fmt.Errorf("courier %d: %w", i+1, err))
		}
	}
	if c.IngredientMultiplier < 0 {
		check(errs.NewValueIsOutOfRangeError("ingredient multiplier", c.IngredientMultiplier, 0, "unbounded"))
	}
	if c.BaselineAverageCookTime < 0 {
		check(errs.NewValueIsOutOfRangeError("baseline average cook time", c.BaselineAverageCookTime, 0, "unbounded"))
	}
	if strings.TrimSpace(c.EventLogPath) == "" {
		check(errs.NewValueIsRequiredError("event log path"))
	}
	if c.WorkTime < 0 {
		check(errs.NewValueIsOutOfRangeError("work time", c.WorkTime, 0, "unbounded"))
	}

	return errors.Join(problems...)
}

// ParseBakers parses "min:max,min:max".
func ParseBakers(raw string) ([]BakerConfig, error) {
	var (
		bakers   []BakerConfig
		problems []error
	)
	for i, item := range splitList(raw) {
		fields := strings.Split(item, ":")
		if len(fields) != 2 {
			problems = append(problems, fmt.Errorf("baker %d: %q is not min:max", i+1, item))
			continue
		}
		cookTime, err := parseRange(fields[0], fields[1])
		if err != nil {
			problems = append(problems, fmt.Errorf("baker %d: %w", i+1, err))
			continue
		}
		bakers = append(bakers, BakerConfig{CookTime: cookTime})
	}
	return bakers, errors.Join(problems...)
}

// ParseCouriers parses "capacity:min:max,capacity:min:max".
func ParseCouriers(raw string) ([]CourierConfig, error) {
	var (
		couriers []CourierConfig
		problems []error
	)
	for i, item := range splitList(raw) {
		fields := strings.Split(item, ":")
		if len(fields) != 3 {
			problems = append(problems, fmt.Errorf("courier %d: %q is not capacity:min:max", i+1, item))
			continue
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			problems = append(problems, fmt.Errorf("courier %d: invalid capacity: %w", i+1, err))
			continue
		}
		deliveryTime, err := parseRange(fields[1], fields[2])
		if err != nil {
			problems = append(problems, fmt.Errorf("courier %d: %w", i+1, err))
			continue
		}
		couriers = append(couriers, CourierConfig{Capacity: capacity, DeliveryTime: deliveryTime})
	}
	return couriers, errors.Join(problems...)
}

func parseRange(rawMin, rawMax string) (services.DurationRange, error) {
	lo, minErr := time.ParseDuration(strings.TrimSpace(rawMin))
	hi, maxErr := time.ParseDuration(strings.TrimSpace(rawMax))
	if err := errors.Join(minErr, maxErr); err != nil {
		return services.DurationRange{}, err
	}
	return services.DurationRange{Min: lo, Max: hi}, nil
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// parser collects errors while reading optional keys.
type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) get(key string) (string, bool) {
	raw, ok := p.lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return strings.TrimSpace(raw), true
}

func (p *parser) fail(key string, err error) {
	if err != nil {
		p.err = errors.Join(p.err, errs.NewValueIsInvalidErrorWithCause(key, err))
	}
}

func (p *parser) setString(key string, dst *string) {
	if raw, ok := p.get(key); ok {
		*dst = raw
	}
}

func (p *parser) setInt(key string, dst *int) {
	if raw, ok := p.get(key); ok {
		v, err := strconv.Atoi(raw)
		p.fail(key, err)
		if err == nil {
			*dst = v
		}
	}
}

func (p *parser) setInt64(key string, dst *int64) {
	if raw, ok := p.get(key); ok {
		v, err := strconv.ParseInt(raw, 10, 64)
		p.fail(key, err)
		if err == nil {
			*dst = v
		}
	}
}

func (p *parser) setDuration(key string, dst *time.Duration) {
	if raw, ok := p.get(key); ok {
		v, err := time.ParseDuration(raw)
		p.fail(key, err)
		if err == nil {
			*dst = v
		}
	}
}
