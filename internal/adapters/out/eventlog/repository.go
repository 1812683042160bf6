package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"pizzeria/internal/core/domain/model/kernel"
	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/pkg/errs"
	"pizzeria/internal/pkg/metrics"
)

// DefaultMaxLogSizeBytes is the size at which the log is archived on Open.
const DefaultMaxLogSizeBytes int64 = 10 * 1024 * 1024

var (
	// ErrClosed is returned by writes made before Open or after Close.
	ErrClosed = errors.New("event log is closed")

	// ErrAlreadyOpen is returned by a second Open.
	ErrAlreadyOpen = errors.New("event log is already open")
)

// Config holds the repository settings.
type Config struct {
	// Path of the JSON-lines log file. Its directory is created on Open.
	Path string
	// MaxLogSizeBytes triggers archiving on Open. Zero or less disables it.
	MaxLogSizeBytes int64
}

// Option customizes a FileOrderRepository.
type Option func(*FileOrderRepository)

// WithMetrics reports repository activity to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *FileOrderRepository) {
		r.metrics = m
	}
}

// WithClock overrides the time source used for record timestamps and archive names.
func WithClock(now func() time.Time) Option {
	return func(r *FileOrderRepository) {
		r.now = now
	}
}

// FileOrderRepository implements ports.OrderRepository on top of an append-only
// JSON-lines file.
//
// Two locks protect it: cacheMu guards the active and finalized indices, fileMu
// guards the writer. AddOrder is the only path that holds both, always taking
// cacheMu first, so the order of records in the file is a valid interleaving of
// the concurrent operations that produced them.
type FileOrderRepository struct {
	path       string
	maxLogSize int64
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time

	openMu sync.Mutex

	cacheMu   sync.Mutex
	active    map[kernel.OrderID]*order.Order
	finalized map[kernel.OrderID]order.Status

	fileMu sync.Mutex
	file   *os.File

	nextID atomic.Int64
}

// NewFileOrderRepository creates a repository for cfg.Path. Nothing touches the
// disk until Open.
func NewFileOrderRepository(cfg Config, logger *slog.Logger, opts ...Option) (*FileOrderRepository, error) {
	if cfg.Path == "" {
		return nil, errs.NewValueIsRequiredError("event log path")
	}

	r := &FileOrderRepository{
		path:       cfg.Path,
		maxLogSize: cfg.MaxLogSizeBytes,
		logger:     logger.With("component", "order_repository"),
		now:        time.Now,
		active:     make(map[kernel.OrderID]*order.Order),
		finalized:  make(map[kernel.OrderID]order.Status),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.nextID.Store(1)

	return r, nil
}

// Open prepares the repository for use: it creates the log directory, archives an
// oversized log, replays the log into memory and opens the file for appending.
// It must complete before any worker starts; concurrent Open calls are serialized.
func (r *FileOrderRepository) Open(ctx context.Context) (RecoveryStats, error) {
	r.openMu.Lock()
	defer r.openMu.Unlock()

	if r.isOpen() {
		return RecoveryStats{}, ErrAlreadyOpen
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return RecoveryStats{}, fmt.Errorf("failed to create event log directory: %w", err)
		}
	}

	source := r.path
	archived, rotated := r.rotateIfNeeded(ctx)
	if rotated {
		source = archived
	}

	stats, err := r.recover(ctx, source)
	if err != nil {
		return RecoveryStats{}, err
	}
	stats.ArchivedTo = archived

	var carryOver []byte
	if rotated {
		if carryOver, err = r.encodeSnapshot(); err != nil {
			return RecoveryStats{}, fmt.Errorf("failed to encode state for the new event log: %w", err)
		}
	}

	file, err := openForAppend(r.path)
	if err != nil {
		return RecoveryStats{}, err
	}

	r.fileMu.Lock()
	r.file = file
	if len(carryOver) > 0 {
		err = r.writeLocked(carryOver)
	}
	r.fileMu.Unlock()
	if err != nil {
		return RecoveryStats{}, fmt.Errorf("failed to carry state over to the new event log: %w", err)
	}

	r.logger.InfoContext(ctx, "Event log opened",
		"path", r.path,
		"lines", stats.Lines,
		"active", stats.Active,
		"finalized", stats.Finalized,
		"skipped", stats.Skipped,
		"next_id", stats.NextID.Int64(),
	)
	return stats, nil
}

// Close flushes and closes the log file. Later writes fail with ErrClosed.
// Closing twice is a no-op.
func (r *FileOrderRepository) Close() error {
	r.fileMu.Lock()
	defer r.fileMu.Unlock()

	if r.file == nil {
		return nil
	}

	err := errors.Join(r.file.Sync(), r.file.Close())
	r.file = nil

	if err != nil {
		r.logger.Error("Error while closing event log", "path", r.path, "error", err)
		return fmt.Errorf("failed to close event log: %w", err)
	}
	r.logger.Info("Event log closed", "path", r.path)
	return nil
}

// Sync flushes written records to stable storage. It returns ErrClosed when the
// log is not open.
func (r *FileOrderRepository) Sync() error {
	r.fileMu.Lock()
	defer r.fileMu.Unlock()

	if r.file == nil {
		return ErrClosed
	}
	if err := r.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync event log: %w", err)
	}
	return nil
}

// NextID reserves the next order identifier.
func (r *FileOrderRepository) NextID() kernel.OrderID {
	return kernel.OrderID(r.nextID.Add(1) - 1)
}

// AddOrder logs a CREATE record for o and registers it as active.
func (r *FileOrderRepository) AddOrder(ctx context.Context, aggregate *order.Order) (err error) {
	defer func() { r.metrics.RecordRepositoryOperation("add_order", err) }()

	if err = aggregate.Validate(); err != nil {
		return err
	}

	id := aggregate.ID()
	logger := r.logger.With("order_id", id.Int64())

	if status := aggregate.Status(); status != order.Received {
		logger.WarnContext(ctx, "Order added in unexpected status", "status", status.String())
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	if r.knownLocked(id) {
		logger.ErrorContext(ctx, "Duplicate order id rejected")
		return errs.NewObjectAlreadyExistsError("order", id)
	}

	if err = r.append(newCreateEvent(aggregate, r.now())); err != nil {
		logger.ErrorContext(ctx, "Failed to log CREATE, order not added", "error", err)
		return fmt.Errorf("failed to log creation of order %s: %w", id, err)
	}

	r.active[id] = aggregate
	r.bumpNextID(id)

	logger.InfoContext(ctx, "Order added")
	return nil
}

// LogStatusUpdate records that the order identified by id has moved to status.
//
// Updates for ids that are unknown or already finalized are logged and ignored:
// nothing is written, so the file never disagrees with what replay would rebuild.
// For a non-final status the in-memory order is expected to already carry that
// status; a mismatch is reported and counted, never corrected.
func (r *FileOrderRepository) LogStatusUpdate(ctx context.Context, id kernel.OrderID, status order.Status) (err error) {
	defer func() { r.metrics.RecordRepositoryOperation("log_status_update", err) }()

	if err = errors.Join(id.Validate(), status.Validate()); err != nil {
		return err
	}

	logger := r.logger.With("order_id", id.Int64(), "status", status.String())

	r.cacheMu.Lock()
	_, isActive := r.active[id]
	finalStatus, isFinalized := r.finalized[id]
	r.cacheMu.Unlock()

	switch {
	case isFinalized:
		logger.ErrorContext(ctx, "Status update for an already finalized order ignored",
			"final_status", finalStatus.String())
		return nil
	case !isActive:
		logger.WarnContext(ctx, "Status update for an unknown order ignored")
		return nil
	}

	if err = r.append(newStatusUpdateEvent(id.Int64(), status, r.now())); err != nil {
		logger.ErrorContext(ctx, "Failed to log status update", "error", err)
		return fmt.Errorf("failed to log status %s of order %s: %w", status, id, err)
	}
	r.metrics.RecordStatusTransition(status.String())

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	if status.IsFinal() {
		delete(r.active, id)
		r.finalized[id] = status
		logger.InfoContext(ctx, "Order finalized")
		return nil
	}

	if o, ok := r.active[id]; ok {
		if current := o.Status(); current != status {
			r.metrics.RecordStatusMismatch()
			logger.ErrorContext(ctx, "Logged status does not match in-memory order",
				"in_memory_status", current.String())
			return nil
		}
	}

	logger.DebugContext(ctx, "Status update logged")
	return nil
}

// GetOrderByID returns the live order while it is active.
func (r *FileOrderRepository) GetOrderByID(_ context.Context, id kernel.OrderID) (*order.Order, error) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	o, ok := r.active[id]
	r.metrics.RecordRepositoryOperation("get_order", nil)
	if !ok {
		return nil, errs.NewObjectNotFoundError("orderId", id)
	}
	return o, nil
}

// FindStatusByID returns the status of an active or finalized order.
func (r *FileOrderRepository) FindStatusByID(_ context.Context, id kernel.OrderID) (order.Status, error) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.metrics.RecordRepositoryOperation("find_status", nil)
	if o, ok := r.active[id]; ok {
		return o.Status(), nil
	}
	if status, ok := r.finalized[id]; ok {
		return status, nil
	}
	return order.Unknown, errs.NewObjectNotFoundError("orderId", id)
}

// Counts returns the sizes of the active and finalized indices.
func (r *FileOrderRepository) Counts() (active, finalized int) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	return len(r.active), len(r.finalized)
}

func (r *FileOrderRepository) isOpen() bool {
	r.fileMu.Lock()
	defer r.fileMu.Unlock()
	return r.file != nil
}

func (r *FileOrderRepository) knownLocked(id kernel.OrderID) bool {
	_, isActive := r.active[id]
	_, isFinalized := r.finalized[id]
	return isActive || isFinalized
}

// bumpNextID keeps NextID ahead of every id the repository has seen.
func (r *FileOrderRepository) bumpNextID(id kernel.OrderID) {
	for {
		current := r.nextID.Load()
		if current > id.Int64() || r.nextID.CompareAndSwap(current, id.Int64()+1) {
			return
		}
	}
}

// append writes one record as a single line.
func (r *FileOrderRepository) append(event eventDTO) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", event.EventType, err)
	}
	data = append(data, '\n')

	r.fileMu.Lock()
	defer r.fileMu.Unlock()
	return r.writeLocked(data)
}

func (r *FileOrderRepository) writeLocked(line []byte) error {
	if r.file == nil {
		return ErrClosed
	}
	_, err := r.file.Write(line)
	r.metrics.RecordLogWrite(err)
	return err
}

// openForAppend opens path for appending. If a crash left the last record
// without its newline, one is added so the next record starts on its own line.
func openForAppend(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log for append: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat event log: %w", err)
	}
	if info.Size() == 0 {
		return file, nil
	}

	last := make([]byte, 1)
	if _, err = file.ReadAt(last, info.Size()-1); err != nil && !errors.Is(err, io.EOF) {
		_ = file.Close()
		return nil, fmt.Errorf("failed to read event log tail: %w", err)
	}
	if last[0] != '\n' {
		if _, err = file.Write([]byte{'\n'}); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to terminate event log tail: %w", err)
		}
	}
	return file, nil
}
