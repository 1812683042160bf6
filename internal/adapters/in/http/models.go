package http

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewOrder is the body of POST /api/v1/orders.
type NewOrder struct {
	PizzaDetails string `json:"pizzaDetails"`
}

// OrderCreated is returned when an order has been accepted.
type OrderCreated struct {
	OrderID int64 `json:"orderId"`
}

// OrderStatus is returned by GET /api/v1/orders/:orderId.
type OrderStatus struct {
	OrderID int64  `json:"orderId"`
	Status  string `json:"status"`
}
