package domain

// Medication is a catalog entry.
type Medication struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Dosage       string  `json:"dosage,omitempty"`
	Form         string  `json:"form,omitempty"`
	Manufacturer string  `json:"manufacturer,omitempty"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
}

// MedicationPage is one page of a catalog search.
type MedicationPage struct {
	Content       []Medication `json:"content"`
	TotalPages    int          `json:"totalPages"`
	TotalElements int64        `json:"totalElements,omitempty"`
	Number        int          `json:"number"`
	Size          int          `json:"size"`
}

// MedicationQuery filters a catalog search. Page is 0-based.
type MedicationQuery struct {
	Search      string
	MinQuantity int
	Page        int
	Size        int
}

// MedicationStats feeds the news page counters.
type MedicationStats struct {
	NewProductsThisMonth      int `json:"newProductsThisMonth"`
	InventoryUpdatesThisMonth int `json:"inventoryUpdatesThisMonth"`
	PriceChangesThisMonth     int `json:"priceChangesThisMonth"`
}
