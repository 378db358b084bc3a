package depot

import "time"

// Warehouse is a read-side depot entity.
type Warehouse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location,omitempty"`
	Capacity    int64     `json:"capacity,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Category groups item definitions.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ItemDefinition is the catalog entry items are instances of.
type ItemDefinition struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"categoryId"`
}

// AuditLog is one depot-side audit record for an item.
type AuditLog struct {
	ID        int64     `json:"id"`
	ItemID    string    `json:"itemId"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
