package staging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"tally/internal/identity"
	"tally/internal/inventory"
	"tally/internal/logging"
	"tally/internal/services"
	"tally/internal/services/depot"
)

// Creator is the depot surface the builder commits through.
type Creator interface {
	CreateItem(ctx context.Context, req depot.CreateItemRequest) (inventory.Item, error)
}

// Builder accumulates a staged batch of not-yet-persisted inbound items.
// Nothing exists on the depot until Commit.
type Builder struct {
	creator Creator
	logger  *slog.Logger
	newID   func() string

	mu      sync.Mutex
	pending []inventory.PendingInboundItem
}

// NewBuilder constructs a builder over the given depot surface.
func NewBuilder(creator Creator, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Builder{creator: creator, logger: logger, newID: identity.NewItemID}
}

// Stage replaces the staged batch with quantity fresh identities for the
// given definition. A quantity of zero or less clears the batch; it is not
// an error.
func (b *Builder) Stage(itemDefinitionID int64, quantity int) []inventory.PendingInboundItem {
	b.mu.Lock()
	defer b.mu.Unlock()

	if quantity <= 0 {
		b.pending = nil
		return nil
	}
	b.pending = make([]inventory.PendingInboundItem, 0, quantity)
	for i := 0; i < quantity; i++ {
		id := b.newID()
		b.pending = append(b.pending, inventory.PendingInboundItem{
			ID:               id,
			ShortCode:        identity.ShortCode(id),
			ItemDefinitionID: itemDefinitionID,
		})
	}
	cp := make([]inventory.PendingInboundItem, len(b.pending))
	copy(cp, b.pending)
	return cp
}

// Pending returns a copy of the staged batch.
func (b *Builder) Pending() []inventory.PendingInboundItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]inventory.PendingInboundItem, len(b.pending))
	copy(cp, b.pending)
	return cp
}

// Len returns the staged batch size.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// CommitFailure names one staged item that could not be created.
type CommitFailure struct {
	Pending inventory.PendingInboundItem
	Err     error
}

// CommitError aggregates per-item create failures. The named items remain
// staged and a later Commit retries them.
type CommitError struct {
	Failures []CommitFailure
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit: %d of staged batch failed", len(e.Failures))
}

func (e *CommitError) Is(target error) bool {
	return target == services.ErrTransient
}

// Commit creates every staged item in the given warehouse. An empty batch is
// a no-op. Created items are merged newest-first into the view and removed
// from the batch; failures stay staged and are reported in the aggregate
// CommitError.
func (b *Builder) Commit(ctx context.Context, view *inventory.Collection, warehouseID int64) ([]inventory.Item, error) {
	if warehouseID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "staging", "commit", "warehouse id required", nil)
	}

	b.mu.Lock()
	batch := make([]inventory.PendingInboundItem, len(b.pending))
	copy(batch, b.pending)
	b.mu.Unlock()

	if len(batch) == 0 {
		return nil, nil
	}

	created := make([]*inventory.Item, len(batch))
	errs := make([]error, len(batch))
	var wg sync.WaitGroup
	for i, pending := range batch {
		wg.Add(1)
		go func(i int, pending inventory.PendingInboundItem) {
			defer wg.Done()
			item, err := b.creator.CreateItem(ctx, depot.CreateItemRequest{
				ItemDefinitionID: pending.ItemDefinitionID,
				WarehouseID:      warehouseID,
				ShortID:          pending.ShortCode,
			})
			if err != nil {
				errs[i] = err
				return
			}
			created[i] = &item
		}(i, pending)
	}
	wg.Wait()

	var (
		succeeded []inventory.Item
		failures  []CommitFailure
		remaining []inventory.PendingInboundItem
	)
	for i, pending := range batch {
		if errs[i] != nil {
			failures = append(failures, CommitFailure{Pending: pending, Err: errs[i]})
			remaining = append(remaining, pending)
			b.logger.Warn("staged item create failed",
				logging.String(logging.FieldShortID, pending.ShortCode),
				logging.Error(errs[i]))
			continue
		}
		succeeded = append(succeeded, *created[i])
	}

	b.mu.Lock()
	b.pending = remaining
	b.mu.Unlock()

	if len(succeeded) > 0 {
		view.Prepend(succeeded...)
	}
	b.logger.Info("staged batch committed",
		logging.Int("created", len(succeeded)),
		logging.Int("failed", len(failures)),
		logging.Int64("warehouse_id", warehouseID))

	if len(failures) > 0 {
		return succeeded, &CommitError{Failures: failures}
	}
	return succeeded, nil
}
