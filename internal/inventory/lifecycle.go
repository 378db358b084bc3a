package inventory

import (
	"strings"
	"time"

	"tally/internal/services"
)

// Operation is a named lifecycle transition. Status is never written
// free-form; every change goes through one of these operations.
type Operation string

const (
	OpOutbound      Operation = "outbound"
	OpReturn        Operation = "return"
	OpCheck         Operation = "check"
	OpReportMissing Operation = "report-missing"
	OpDispose       Operation = "dispose"
)

var allOperations = []Operation{OpOutbound, OpReturn, OpCheck, OpReportMissing, OpDispose}

// transition describes an operation's valid source statuses and its target.
type transition struct {
	sources []Status
	target  Status
}

var transitions = map[Operation]transition{
	OpOutbound:      {sources: []Status{StatusInStock}, target: StatusLoanedOut},
	OpReturn:        {sources: []Status{StatusLoanedOut}, target: StatusInStock},
	OpCheck:         {sources: []Status{StatusSuspectedMissing}, target: StatusInStock},
	OpReportMissing: {sources: []Status{StatusInStock, StatusLoanedOut}, target: StatusSuspectedMissing},
	OpDispose:       {sources: []Status{StatusInStock, StatusLoanedOut, StatusSuspectedMissing}, target: StatusDisposed},
}

// AllOperations returns the ordered list of lifecycle operations.
func AllOperations() []Operation {
	cp := make([]Operation, len(allOperations))
	copy(cp, allOperations)
	return cp
}

// ParseOperation converts a string into a known Operation.
func ParseOperation(value string) (Operation, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, op := range allOperations {
		if string(op) == normalized {
			return op, true
		}
	}
	return "", false
}

// TargetStatus returns the status an operation transitions into.
func TargetStatus(op Operation) (Status, bool) {
	t, ok := transitions[op]
	if !ok {
		return "", false
	}
	return t.target, true
}

// OperationFor returns the operation that moves an item from one status to
// another, if any exists.
func OperationFor(from, to Status) (Operation, bool) {
	for _, op := range allOperations {
		t := transitions[op]
		if t.target != to {
			continue
		}
		for _, source := range t.sources {
			if source == from {
				return op, true
			}
		}
	}
	return "", false
}

// ValidateTransition checks an operation against an item's current status.
// This runs before any remote call is issued; invalid requests never reach
// the depot. The depot re-checks on its side regardless.
func ValidateTransition(item Item, op Operation, destination string) error {
	if item.Status.IsTerminal() {
		return &TerminalStateError{ItemID: item.ID}
	}
	t, ok := transitions[op]
	if !ok {
		return services.Wrap(services.ErrValidation, "inventory", "transition", "unknown operation "+string(op), nil)
	}
	valid := false
	for _, source := range t.sources {
		if source == item.Status {
			valid = true
			break
		}
	}
	if !valid {
		return &InvalidTransitionError{From: item.Status, Op: op}
	}
	if op == OpOutbound && strings.TrimSpace(destination) == "" {
		return services.Wrap(services.ErrValidation, "inventory", "outbound", "destination is required", nil)
	}
	return nil
}

// ValidateStatusChange checks whether an item may move directly to the given
// status via any defined operation. Used for the acknowledgement-only batch
// status endpoint, which addresses targets rather than operations.
func ValidateStatusChange(item Item, target Status) error {
	if item.Status.IsTerminal() {
		return &TerminalStateError{ItemID: item.ID}
	}
	if _, ok := statusSet[target]; !ok {
		return services.Wrap(services.ErrValidation, "inventory", "status change", "unknown status "+string(target), nil)
	}
	if op, ok := OperationFor(item.Status, target); ok {
		// Outbound requires a destination and cannot be expressed as a bare
		// status write.
		if op == OpOutbound {
			return &InvalidTransitionError{From: item.Status, Op: op}
		}
		return nil
	}
	op, _ := operationTargeting(target)
	return &InvalidTransitionError{From: item.Status, Op: op}
}

func operationTargeting(target Status) (Operation, bool) {
	for _, op := range allOperations {
		if transitions[op].target == target {
			return op, true
		}
	}
	return "", false
}

// ValidateEdit checks whether a remarks/photo edit is permitted. Edits are
// not transitions and are allowed from any non-terminal state.
func ValidateEdit(item Item) error {
	if item.Status.IsTerminal() {
		return &TerminalStateError{ItemID: item.ID}
	}
	return nil
}

// ValidateTransfer checks whether a warehouse transfer is permitted.
// Transfer is independent of status and never changes it, but disposed items
// stay where they are.
func ValidateTransfer(item Item) error {
	if item.Status.IsTerminal() {
		return &TerminalStateError{ItemID: item.ID}
	}
	return nil
}

// ApplyTransition returns the item snapshot after a successful transition.
// CurrentDestination is kept only while LoanedOut; every other status clears
// it. The prior destination of a report-missing item is the caller's to
// journal before applying.
func ApplyTransition(item Item, op Operation, destination string, now time.Time) Item {
	t, ok := transitions[op]
	if !ok {
		return item
	}
	item.Status = t.target
	if t.target == StatusLoanedOut {
		item.CurrentDestination = strings.TrimSpace(destination)
	} else {
		item.CurrentDestination = ""
	}
	item.LastUpdated = now.UTC()
	return item
}

// ApplyStatusChange returns the item snapshot after a successful bare status
// write (acknowledgement-only batch endpoint). Destination follows the same
// rule as ApplyTransition.
func ApplyStatusChange(item Item, target Status, now time.Time) Item {
	item.Status = target
	if target != StatusLoanedOut {
		item.CurrentDestination = ""
	}
	item.LastUpdated = now.UTC()
	return item
}
