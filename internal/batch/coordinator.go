package batch

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tally/internal/inventory"
	"tally/internal/logging"
	"tally/internal/services"
)

// Depot is the mutation surface the coordinator dispatches against.
// Implemented by the depot client.
type Depot interface {
	ApplyTransition(ctx context.Context, id string, op inventory.Operation, destination string) (inventory.Item, error)
	Transfer(ctx context.Context, id string, warehouseID int64, remarks string) (inventory.Item, error)
	UpdateStatusBatch(ctx context.Context, ids []string, status inventory.Status) error
}

// Result is the outcome for one unique item in a batch. Exactly one of Item
// or Err is set; a successful result carries the post-operation snapshot.
type Result struct {
	ItemID string
	Item   *inventory.Item
	Err    error
}

// Coordinator fans batch operations out across items. Per-item failures are
// isolated; a failed item never blocks or aborts its peers, and there are no
// automatic retries.
type Coordinator struct {
	depot  Depot
	logger *slog.Logger
	now    func() time.Time
}

// NewCoordinator constructs a coordinator over the given depot surface.
func NewCoordinator(depot Depot, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{depot: depot, logger: logger, now: time.Now}
}

// dedup returns the unique ids in first-seen order, skipping blanks.
func dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// TransitionBatch applies one lifecycle operation to every unique id.
// report-missing has no per-item depot endpoint and is dispatched through
// the acknowledgement-only status batch instead. The view is updated only
// for items that succeed.
func (c *Coordinator) TransitionBatch(ctx context.Context, view *inventory.Collection, ids []string, op inventory.Operation, destination string) []Result {
	unique := dedup(ids)
	if len(unique) == 0 {
		return nil
	}
	ctx = services.WithRequestID(services.WithOperation(ctx, string(op)), uuid.NewString())
	if op == inventory.OpReportMissing {
		return c.StatusBatch(ctx, view, unique, inventory.StatusSuspectedMissing)
	}

	results := make([]Result, len(unique))
	var wg sync.WaitGroup
	for i, id := range unique {
		if item, ok := view.Get(id); ok {
			if err := inventory.ValidateTransition(item, op, destination); err != nil {
				results[i] = Result{ItemID: id, Err: err}
				continue
			}
		}
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			updated, err := c.depot.ApplyTransition(services.WithItemID(ctx, id), id, op, destination)
			if err != nil {
				results[i] = Result{ItemID: id, Err: err}
				return
			}
			results[i] = Result{ItemID: id, Item: &updated}
		}(i, id)
	}
	wg.Wait()

	c.applySuccesses(ctx, view, results, string(op))
	return results
}

// TransferBatch moves every unique id to the given warehouse. Transfers do
// not change status; disposed items are rejected locally.
func (c *Coordinator) TransferBatch(ctx context.Context, view *inventory.Collection, ids []string, warehouseID int64, remarks string) []Result {
	unique := dedup(ids)
	if len(unique) == 0 {
		return nil
	}
	ctx = services.WithRequestID(services.WithOperation(ctx, "transfer"), uuid.NewString())

	results := make([]Result, len(unique))
	var wg sync.WaitGroup
	for i, id := range unique {
		if item, ok := view.Get(id); ok {
			if err := inventory.ValidateTransfer(item); err != nil {
				results[i] = Result{ItemID: id, Err: err}
				continue
			}
		}
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			updated, err := c.depot.Transfer(services.WithItemID(ctx, id), id, warehouseID, remarks)
			if err != nil {
				results[i] = Result{ItemID: id, Err: err}
				return
			}
			results[i] = Result{ItemID: id, Item: &updated}
		}(i, id)
	}
	wg.Wait()

	c.applySuccesses(ctx, view, results, "transfer")
	return results
}

// StatusBatch writes one target status across every unique id through the
// depot's single acknowledgement-only endpoint. Items failing local
// validation are excluded from the remote call; because the depot returns no
// bodies, successful snapshots are synthesized from the local view.
func (c *Coordinator) StatusBatch(ctx context.Context, view *inventory.Collection, ids []string, target inventory.Status) []Result {
	unique := dedup(ids)
	if len(unique) == 0 {
		return nil
	}
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(services.WithOperation(ctx, "status"), uuid.NewString())
	}

	results := make([]Result, len(unique))
	eligible := make([]string, 0, len(unique))
	eligibleIndex := make([]int, 0, len(unique))
	for i, id := range unique {
		if item, ok := view.Get(id); ok {
			if err := inventory.ValidateStatusChange(item, target); err != nil {
				results[i] = Result{ItemID: id, Err: err}
				continue
			}
		}
		eligible = append(eligible, id)
		eligibleIndex = append(eligibleIndex, i)
	}

	if len(eligible) > 0 {
		err := c.depot.UpdateStatusBatch(ctx, eligible, target)
		now := c.now()
		for k, id := range eligible {
			i := eligibleIndex[k]
			if err != nil {
				results[i] = Result{ItemID: id, Err: err}
				continue
			}
			if item, ok := view.Get(id); ok {
				updated := inventory.ApplyStatusChange(item, target, now)
				results[i] = Result{ItemID: id, Item: &updated}
			} else {
				results[i] = Result{ItemID: id}
			}
		}
	}

	c.applySuccesses(ctx, view, results, "status "+string(target))
	return results
}

func (c *Coordinator) applySuccesses(ctx context.Context, view *inventory.Collection, results []Result, operation string) {
	logger := logging.WithContext(ctx, c.logger)
	succeeded, failed := 0, 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			logger.Warn("batch item failed",
				logging.String(logging.FieldOperation, operation),
				logging.String(logging.FieldItemID, result.ItemID),
				logging.Error(result.Err))
			continue
		}
		succeeded++
		if result.Item != nil {
			view.Replace(*result.Item)
		}
	}
	logger.Info("batch complete",
		logging.String(logging.FieldOperation, operation),
		logging.Int("succeeded", succeeded),
		logging.Int("failed", failed))
}

// Failed filters a result set down to the failures, for manual retry.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}
