package eventlog

import (
	"time"

	"pizzeria/internal/core/domain/model/order"
)

const (
	eventTypeCreate       = "CREATE"
	eventTypeStatusUpdate = "STATUS_UPDATE"
)

// eventDTO is one line of the event log. CREATE records carry Order; STATUS_UPDATE
// records carry OrderID and NewStatus.
//
// Timestamp and statuses are kept as plain strings so that a record with an
// unexpected value still decodes and can be reported precisely during replay.
type eventDTO struct {
	EventType string    `json:"eventType"`
	Timestamp string    `json:"timestamp"`
	Order     *orderDTO `json:"order,omitempty"`
	OrderID   *int64    `json:"orderId,omitempty"`
	NewStatus string    `json:"newStatus,omitempty"`
}

// orderDTO is the order snapshot stored in a CREATE record.
type orderDTO struct {
	ID           int64  `json:"id"`
	PizzaDetails string `json:"pizzaDetails"`
	Status       string `json:"status"`
}

func newCreateEvent(o *order.Order, now time.Time) eventDTO {
	return eventDTO{
		EventType: eventTypeCreate,
		Timestamp: formatTimestamp(now),
		Order: &orderDTO{
			ID:           o.ID().Int64(),
			PizzaDetails: o.Details(),
			Status:       order.Received.String(),
		},
	}
}

func newStatusUpdateEvent(id int64, status order.Status, now time.Time) eventDTO {
	return eventDTO{
		EventType: eventTypeStatusUpdate,
		Timestamp: formatTimestamp(now),
		OrderID:   &id,
		NewStatus: status.String(),
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
