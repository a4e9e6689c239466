package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"brista-coffee/database"
	"brista-coffee/models"

	"golang.org/x/sync/errgroup"
)

var ErrNegativeQuantity = errors.New("quantity must not be negative")

// Ledger tracks stock quantity and availability per inventory item.
type Ledger struct {
	store database.InventoryStore
	log   *slog.Logger
}

func NewLedger(store database.InventoryStore, log *slog.Logger) *Ledger {
	return &Ledger{store: store, log: log.With("component", "inventory")}
}

// SeedIfEmpty writes the default stock when the ledger has no rows. It
// reports how many rows were written.
func (l *Ledger) SeedIfEmpty(ctx context.Context) (int, error) {
	n, err := l.store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	items := DefaultItems()
	if err := l.store.InsertMany(ctx, items); err != nil {
		return 0, err
	}
	l.log.Info("Seeded inventory", "items", len(items))
	return len(items), nil
}

func (l *Ledger) List(ctx context.Context) ([]models.InventoryView, error) {
	items, err := l.store.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]models.InventoryView, 0, len(items))
	for _, item := range items {
		views = append(views, item.View())
	}
	return views, nil
}

func (l *Ledger) SetAvailability(ctx context.Context, itemID string, available bool) error {
	return l.store.SetAvailable(ctx, itemID, available)
}

func (l *Ledger) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 0 {
		return ErrNegativeQuantity
	}
	return l.store.SetQuantity(ctx, itemID, quantity)
}

// Decrement subtracts amount without checking the floor. Stock may go
// negative; readers see it as out of stock. Unknown or untracked items are
// left alone.
func (l *Ledger) Decrement(ctx context.Context, itemID string, amount int) error {
	matched, err := l.store.Increment(ctx, itemID, -amount)
	if err != nil {
		return err
	}
	if !matched {
		l.log.Debug("Skipped deduction for untracked item", "item_id", itemID, "amount", amount)
	}
	return nil
}

// IsAvailable reads the availability flag. Items missing from the ledger
// count as available.
func (l *Ledger) IsAvailable(ctx context.Context, itemID string) (bool, error) {
	item, err := l.store.Get(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return item.Available, nil
}

// Apply dispatches every deduction concurrently and waits for all of them.
// A failed item is logged and does not stop the others; the first failure is
// returned.
func (l *Ledger) Apply(ctx context.Context, orderID string, d Deductions) error {
	var g errgroup.Group
	for itemID, units := range d {
		itemID, units := itemID, units
		g.Go(func() error {
			if err := l.Decrement(ctx, itemID, units); err != nil {
				l.log.Warn("Inventory deduction failed", "order_id", orderID, "item_id", itemID, "amount", units, "error", err)
				return fmt.Errorf("deduct %s: %w", itemID, err)
			}
			return nil
		})
	}
	return g.Wait()
}
