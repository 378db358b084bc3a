package inventory

import (
	"context"
	"strings"

	"tally/internal/identity"
	"tally/internal/services"
)

// Directory is the remote lookup surface the resolver needs. Implemented by
// the depot client.
type Directory interface {
	ItemsByID(ctx context.Context, id string) ([]Item, error)
	ItemsByShortCode(ctx context.Context, code string) ([]Item, error)
}

// Resolver turns a scanned or typed string into exactly one canonical item.
// It is read-only; resolution never mutates anything.
type Resolver struct {
	dir Directory
}

// NewResolver constructs a resolver over the given directory.
func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve looks up the input by full identifier first, then by short-code
// prefix when the input has the shape of a short code. A short-code lookup
// matching more than one item is never silently narrowed; the caller gets
// the full candidate set.
func (r *Resolver) Resolve(ctx context.Context, input string) (Item, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Item{}, services.Wrap(services.ErrValidation, "resolver", "resolve", "empty input", nil)
	}

	matches, err := r.dir.ItemsByID(ctx, trimmed)
	if err != nil {
		return Item{}, err
	}
	if len(matches) > 0 {
		return matches[0], nil
	}

	if identity.LooksLikeShortCode(trimmed) {
		candidates, err := r.dir.ItemsByShortCode(ctx, strings.ToUpper(trimmed))
		if err != nil {
			return Item{}, err
		}
		switch len(candidates) {
		case 0:
			return Item{}, &NotFoundError{Input: trimmed}
		case 1:
			return candidates[0], nil
		default:
			return Item{}, &AmbiguousIdentityError{Input: trimmed, Candidates: candidates}
		}
	}

	return Item{}, &NotFoundError{Input: trimmed}
}
