package inventory

import (
	"strings"
	"time"
)

// Status represents the lifecycle state of a tracked item.
type Status string

const (
	StatusInStock          Status = "InStock"
	StatusLoanedOut        Status = "LoanedOut"
	StatusDisposed         Status = "Disposed"
	StatusSuspectedMissing Status = "SuspectedMissing"
)

var allStatuses = []Status{
	StatusInStock,
	StatusLoanedOut,
	StatusDisposed,
	StatusSuspectedMissing,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status. Matching is
// case-insensitive and ignores separators, so "in-stock" and "InStock"
// both parse.
func ParseStatus(value string) (Status, bool) {
	normalized := foldStatus(value)
	if normalized == "" {
		return "", false
	}
	for status := range statusSet {
		if foldStatus(string(status)) == normalized {
			return status, true
		}
	}
	return "", false
}

func foldStatus(value string) string {
	folded := strings.ToLower(strings.TrimSpace(value))
	folded = strings.ReplaceAll(folded, "-", "")
	folded = strings.ReplaceAll(folded, "_", "")
	folded = strings.ReplaceAll(folded, " ", "")
	return folded
}

// IsTerminal reports whether a status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusDisposed
}

// Label returns the human-readable display name for a status.
func (s Status) Label() string {
	switch s {
	case StatusInStock:
		return "In Stock"
	case StatusLoanedOut:
		return "Loaned Out"
	case StatusDisposed:
		return "Disposed"
	case StatusSuspectedMissing:
		return "Suspected Missing"
	default:
		return string(s)
	}
}

// Ref is an embedded reference to a named depot entity.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Item is the unit of tracking. The JSON shape matches the depot wire format.
type Item struct {
	ID                 string    `json:"id"`
	ShortID            string    `json:"shortId"`
	ItemDefinitionID   int64     `json:"itemDefinitionId"`
	WarehouseID        int64     `json:"warehouseId"`
	Status             Status    `json:"status"`
	Remarks            string    `json:"remarks,omitempty"`
	PhotoURL           string    `json:"photoUrl,omitempty"`
	CurrentDestination string    `json:"currentDestination,omitempty"`
	EntryDate          time.Time `json:"entryDate"`
	LastUpdated        time.Time `json:"lastUpdated"`
	ItemDefinition     *Ref      `json:"itemDefinition,omitempty"`
	Warehouse          *Ref      `json:"warehouse,omitempty"`
}

// PendingInboundItem is a staged, not-yet-persisted item identity generated
// ahead of a bulk-receiving commit.
type PendingInboundItem struct {
	ID               string
	ShortCode        string
	ItemDefinitionID int64
}
