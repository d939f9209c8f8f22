package domain

// Notification is an entry of the header bell, for clients and administrators alike.
type Notification struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Severity  string `json:"severity"`
	Read      bool   `json:"read"`
}

// NotificationSettings is the singleton row that drives backend notification rules.
type NotificationSettings struct {
	ID                  int64 `json:"id"`
	LowStock            bool  `json:"lowStock"`
	NewOrder            bool  `json:"newOrder"`
	OrderStatusChange   bool  `json:"orderStatusChange"`
	NewUser             bool  `json:"newUser"`
	SystemUpdates       bool  `json:"systemUpdates"`
	LowStockThreshold   int   `json:"lowStockThreshold"`
	OrderDelayThreshold int   `json:"orderDelayThreshold"`
}
