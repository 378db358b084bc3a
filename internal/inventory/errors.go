package inventory

import (
	"fmt"

	"tally/internal/services"
)

// InvalidTransitionError reports an operation attempted from a status that is
// not in its valid source set.
type InvalidTransitionError struct {
	From Status
	Op   Operation
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s not permitted from %s", e.Op, e.From)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == services.ErrValidation
}

// TerminalStateError reports any operation attempted against a disposed item.
type TerminalStateError struct {
	ItemID string
}

func (e *TerminalStateError) Error() string {
	if e.ItemID == "" {
		return "item is disposed; no further operations permitted"
	}
	return fmt.Sprintf("item %s is disposed; no further operations permitted", e.ItemID)
}

func (e *TerminalStateError) Is(target error) bool {
	return target == services.ErrTerminal
}

// AmbiguousIdentityError reports a short-code lookup that matched more than
// one item. Candidates carries the full matching set for manual
// disambiguation.
type AmbiguousIdentityError struct {
	Input      string
	Candidates []Item
}

func (e *AmbiguousIdentityError) Error() string {
	return fmt.Sprintf("short code %q matches %d items", e.Input, len(e.Candidates))
}

func (e *AmbiguousIdentityError) Is(target error) bool {
	return target == services.ErrAmbiguous
}

// NotFoundError reports a lookup that matched nothing.
type NotFoundError struct {
	Input string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no item matches %q", e.Input)
}

func (e *NotFoundError) Is(target error) bool {
	return target == services.ErrNotFound
}
