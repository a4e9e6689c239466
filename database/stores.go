package database

import (
	"context"
	"errors"
	"time"

	"brista-coffee/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a conditional write lost against a concurrent change.
	ErrConflict = errors.New("record changed concurrently")
)

const (
	EmailReady  = "email_sent_ready"
	EmailRating = "email_sent_rating"
)

type MenuStore interface {
	Create(ctx context.Context, item *models.MenuItem) error
	Get(ctx context.Context, menuID string) (models.MenuItem, error)
	List(ctx context.Context, category string) ([]models.MenuItem, error)
	GetMany(ctx context.Context, menuIDs []string) (map[string]models.MenuItem, error)
	Update(ctx context.Context, item models.MenuItem) error
	Delete(ctx context.Context, menuID string) error
}

type InventoryStore interface {
	Count(ctx context.Context) (int64, error)
	// InsertMany writes rows whose ids are not present yet.
	InsertMany(ctx context.Context, items []models.InventoryItem) error
	List(ctx context.Context) ([]models.InventoryItem, error)
	Get(ctx context.Context, itemID string) (models.InventoryItem, error)
	SetAvailable(ctx context.Context, itemID string, available bool) error
	SetQuantity(ctx context.Context, itemID string, quantity int) error
	// Increment atomically adds delta to a tracked quantity. It reports false
	// when no tracked row matched.
	Increment(ctx context.Context, itemID string, delta int) (bool, error)
}

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, orderID string) (models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	// UpdateStatus writes to only when the stored status still equals from.
	UpdateStatus(ctx context.Context, orderID, from, to string, at time.Time) error
	SetRating(ctx context.Context, orderID string, rating int, review *string, at time.Time) error
	MarkEmailSent(ctx context.Context, orderID, flag string) error
	Watch(ctx context.Context) (<-chan models.OrderChange, error)
}

type CounterStore interface {
	Get(ctx context.Context, day string) (int, error)
	Increment(ctx context.Context, day string) (int, error)
}

type Stores struct {
	Menu      MenuStore
	Inventory InventoryStore
	Orders    OrderStore
	Counters  CounterStore
}
