package eventlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"pizzeria/internal/core/domain/model/kernel"
	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/pkg/errs"
)

// RecoveryStats summarizes one replay of the event log.
type RecoveryStats struct {
	Lines         int
	Creates       int
	StatusUpdates int
	Skipped       int
	Active        int
	Finalized     int
	NextID        kernel.OrderID
	// ArchivedTo is the archive path when the log was rotated on Open.
	ArchivedTo string
}

// snapshot is the replay-time view of an order. Replay only ever touches
// snapshots; real Orders are built once the whole log has been read.
type snapshot struct {
	id      kernel.OrderID
	details string
	status  order.Status
}

// recover replays path into the indices and seeds the id counter.
// The log is trusted: transitions are applied as recorded, without checking that
// they follow the lifecycle. Lines that cannot be used are skipped with a warning.
func (r *FileOrderRepository) recover(ctx context.Context, path string) (RecoveryStats, error) {
	r.logger.InfoContext(ctx, "Replaying event log", "path", path)

	var stats RecoveryStats

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		r.logger.InfoContext(ctx, "Event log does not exist, starting with empty state")
		stats.NextID = 1
		r.installSnapshots(nil, 0)
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("failed to open event log for replay: %w", err)
	}
	defer file.Close()

	var (
		snapshots = make(map[kernel.OrderID]*snapshot)
		maxID     int64
		reader    = bufio.NewReader(file)
	)

	for {
		if err = ctx.Err(); err != nil {
			return stats, fmt.Errorf("event log replay interrupted: %w", err)
		}

		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			stats.Lines++
			r.metrics.RecordRepositoryOperation("replay_line", nil)
			r.replayLine(ctx, bytes.TrimSpace(line), stats.Lines, snapshots, &stats, &maxID)
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return stats, fmt.Errorf("failed to read event log at line %d: %w", stats.Lines+1, readErr)
		}
	}

	stats.Active, stats.Finalized = r.installSnapshots(snapshots, maxID)
	stats.NextID = kernel.OrderID(maxID + 1)

	r.logger.InfoContext(ctx, "Event log replayed",
		"lines", stats.Lines,
		"creates", stats.Creates,
		"status_updates", stats.StatusUpdates,
		"skipped", stats.Skipped,
	)
	return stats, nil
}

func (r *FileOrderRepository) replayLine(
	ctx context.Context,
	line []byte,
	lineNo int,
	snapshots map[kernel.OrderID]*snapshot,
	stats *RecoveryStats,
	maxID *int64,
) {
	logger := r.logger.With("line", lineNo)

	if len(line) == 0 {
		stats.Skipped++
		return
	}

	var event eventDTO
	if err := json.Unmarshal(line, &event); err != nil {
		logger.WarnContext(ctx, "Malformed event log line skipped", "error", err)
		stats.Skipped++
		return
	}

	switch event.EventType {
	case eventTypeCreate:
		snap, err := snapshotFromCreate(event)
		if err != nil {
			logger.WarnContext(ctx, "Invalid CREATE record skipped", "error", err)
			stats.Skipped++
			return
		}
		*maxID = max(*maxID, snap.id.Int64())

		if _, exists := snapshots[snap.id]; exists {
			logger.WarnContext(ctx, "Duplicate CREATE ignored", "order_id", snap.id.Int64())
			stats.Skipped++
			return
		}
		snapshots[snap.id] = snap
		stats.Creates++

	case eventTypeStatusUpdate:
		if event.OrderID == nil || event.NewStatus == "" {
			logger.WarnContext(ctx, "STATUS_UPDATE without orderId or newStatus skipped")
			stats.Skipped++
			return
		}
		id := kernel.OrderID(*event.OrderID)
		if id.Validate() == nil {
			*maxID = max(*maxID, id.Int64())
		}

		snap, ok := snapshots[id]
		if !ok {
			logger.WarnContext(ctx, "STATUS_UPDATE for unknown order ignored", "order_id", id.Int64())
			stats.Skipped++
			return
		}
		status, err := order.ParseStatus(event.NewStatus)
		if err != nil {
			logger.WarnContext(ctx, "STATUS_UPDATE with invalid status ignored",
				"order_id", id.Int64(), "status", event.NewStatus)
			stats.Skipped++
			return
		}
		snap.status = status
		stats.StatusUpdates++

	default:
		logger.WarnContext(ctx, "Unknown event type skipped", "event_type", event.EventType)
		stats.Skipped++
	}
}

func snapshotFromCreate(event eventDTO) (*snapshot, error) {
	if event.Order == nil {
		return nil, errors.New("missing order")
	}

	id, err := kernel.NewOrderID(event.Order.ID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(event.Order.PizzaDetails) == "" {
		return nil, errs.NewValueIsRequiredError("pizzaDetails")
	}

	status := order.Received
	if event.Order.Status != "" {
		if status, err = order.ParseStatus(event.Order.Status); err != nil {
			return nil, err
		}
	}

	return &snapshot{id: id, details: event.Order.PizzaDetails, status: status}, nil
}

// installSnapshots builds Orders from the replayed snapshots and splits them by
// finality. Snapshots that no longer form a valid order are dropped but their id
// still counts towards the next id.
func (r *FileOrderRepository) installSnapshots(
	snapshots map[kernel.OrderID]*snapshot,
	maxID int64,
) (active, finalized int) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	clear(r.active)
	clear(r.finalized)

	for id, snap := range snapshots {
		if snap.status.IsFinal() {
			r.finalized[id] = snap.status
			continue
		}

		o, err := order.RestoreOrder(snap.id, snap.details, snap.status)
		if err != nil {
			r.logger.Error("Replayed order cannot be restored, dropped",
				"order_id", id.Int64(), "error", err)
			continue
		}
		r.active[id] = o
	}

	r.nextID.Store(maxID + 1)
	return len(r.active), len(r.finalized)
}

// encodeSnapshot renders the current state as records for a freshly rotated log:
// one CREATE per known order, followed by a STATUS_UPDATE when the order has
// moved on from RECEIVED.
func (r *FileOrderRepository) encodeSnapshot() ([]byte, error) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	ids := make([]kernel.OrderID, 0, len(r.active)+len(r.finalized))
	for id := range r.active {
		ids = append(ids, id)
	}
	for id := range r.finalized {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var (
		buf bytes.Buffer
		now = r.now()
	)
	for _, id := range ids {
		details, status := r.describeLocked(id)
		o, err := order.NewOrder(id, details)
		if err != nil {
			return nil, err
		}

		records := []eventDTO{newCreateEvent(o, now)}
		if status != order.Received {
			records = append(records, newStatusUpdateEvent(id.Int64(), status, now))
		}
		for _, record := range records {
			data, err := json.Marshal(record)
			if err != nil {
				return nil, err
			}
			buf.Write(data)
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}

// describeLocked returns what a snapshot record needs for id. Finalized orders no
// longer keep their details, so a placeholder stands in for them.
func (r *FileOrderRepository) describeLocked(id kernel.OrderID) (string, order.Status) {
	if o, ok := r.active[id]; ok {
		return o.Details(), o.Status()
	}
	return finalizedDetails, r.finalized[id]
}

const finalizedDetails = "(finalized before log rotation)"
