package domain

// Client-side order statuses.
const (
	OrderInProgress = "in_progress"
	OrderCompleted  = "completed"
	OrderCanceled   = "canceled"
)

// Back-office order statuses.
const (
	OrderPending    = "PENDING"
	OrderProcessing = "PROCESSING"
	OrderDone       = "COMPLETED"
	OrderCancelled  = "CANCELLED"
)

// ValidAdminOrderStatus reports whether status may be set from the back office.
func ValidAdminOrderStatus(status string) bool {
	switch status {
	case OrderPending, OrderProcessing, OrderDone, OrderCancelled:
		return true
	}
	return false
}

// OrderItem is one line of a client order.
type OrderItem struct {
	MedicationID int64   `json:"medicationId"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
}

// Order is a client order as tracked by its owner.
type Order struct {
	ID     int64       `json:"id"`
	Date   string      `json:"date"`
	Status string      `json:"status"`
	Items  []OrderItem `json:"items"`
	Total  float64     `json:"total"`
}

// CreatedOrder is the backend answer to an order submission.
type CreatedOrder struct {
	ID int64 `json:"id"`
}

// AdminOrderItem is an order line as seen from the back office.
type AdminOrderItem struct {
	ID             string  `json:"id"`
	MedicationName string  `json:"medicationName"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price"`
}

// AdminOrder is an order as seen from the back office.
type AdminOrder struct {
	ID        string           `json:"id"`
	OrderDate string           `json:"orderDate"`
	Status    string           `json:"status"`
	UserID    int64            `json:"userId"`
	Username  string           `json:"username"`
	Items     []AdminOrderItem `json:"items"`
	Total     float64          `json:"total"`
}

// TopProduct is a bar of the client dashboard.
type TopProduct struct {
	ProductName   string `json:"productName"`
	TotalQuantity int    `json:"totalQuantity"`
}

// OrderStatusCount is a slice of the client dashboard pie chart.
type OrderStatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}
