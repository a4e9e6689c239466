package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"brista-coffee/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewMemoryStores returns process-local stores for development and tests.
// Nothing survives a restart.
func NewMemoryStores() Stores {
	return Stores{
		Menu:      &memoryMenu{items: map[string]models.MenuItem{}},
		Inventory: &memoryInventory{items: map[string]models.InventoryItem{}},
		Orders:    &memoryOrders{orders: map[string]models.Order{}, subs: map[int]chan models.OrderChange{}},
		Counters:  &memoryCounters{days: map[string]int{}},
	}
}

type memoryMenu struct {
	mu    sync.RWMutex
	items map[string]models.MenuItem
}

func (s *memoryMenu) Create(_ context.Context, item *models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = primitive.NewObjectID()
	item.Menu_id = item.ID.Hex()
	s.items[item.Menu_id] = copyMenuItem(*item)
	return nil
}

func (s *memoryMenu) Get(_ context.Context, menuID string) (models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[menuID]
	if !ok {
		return models.MenuItem{}, ErrNotFound
	}
	return copyMenuItem(item), nil
}

func (s *memoryMenu) List(_ context.Context, category string) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := []models.MenuItem{}
	for _, item := range s.items {
		if category == "" || item.Category == category {
			items = append(items, copyMenuItem(item))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *memoryMenu) GetMany(_ context.Context, menuIDs []string) (map[string]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.MenuItem, len(menuIDs))
	for _, id := range menuIDs {
		if item, ok := s.items[id]; ok {
			out[id] = copyMenuItem(item)
		}
	}
	return out, nil
}

func (s *memoryMenu) Update(_ context.Context, item models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.items[item.Menu_id]
	if !ok {
		return ErrNotFound
	}
	item.ID = current.ID
	item.Created_at = current.Created_at
	s.items[item.Menu_id] = copyMenuItem(item)
	return nil
}

func (s *memoryMenu) Delete(_ context.Context, menuID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[menuID]; !ok {
		return ErrNotFound
	}
	delete(s.items, menuID)
	return nil
}

func copyMenuItem(item models.MenuItem) models.MenuItem {
	item.Recipe = append([]models.RecipeIngredient(nil), item.Recipe...)
	return item
}

type memoryInventory struct {
	mu    sync.RWMutex
	items map[string]models.InventoryItem
}

func (s *memoryInventory) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *memoryInventory) InsertMany(_ context.Context, items []models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if _, ok := s.items[item.Item_id]; ok {
			continue
		}
		s.items[item.Item_id] = copyInventoryItem(item)
	}
	return nil
}

func (s *memoryInventory) List(_ context.Context) ([]models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]models.InventoryItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, copyInventoryItem(item))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Kind != items[j].Kind {
			return items[i].Kind < items[j].Kind
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *memoryInventory) Get(_ context.Context, itemID string) (models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[itemID]
	if !ok {
		return models.InventoryItem{}, ErrNotFound
	}
	return copyInventoryItem(item), nil
}

func (s *memoryInventory) SetAvailable(_ context.Context, itemID string, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return ErrNotFound
	}
	item.Available = available
	s.items[itemID] = item
	return nil
}

func (s *memoryInventory) SetQuantity(_ context.Context, itemID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return ErrNotFound
	}
	item.Quantity = &quantity
	s.items[itemID] = item
	return nil
}

func (s *memoryInventory) Increment(_ context.Context, itemID string, delta int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok || item.Quantity == nil {
		return false, nil
	}
	q := *item.Quantity + delta
	item.Quantity = &q
	s.items[itemID] = item
	return true, nil
}

func copyInventoryItem(item models.InventoryItem) models.InventoryItem {
	if item.Quantity != nil {
		q := *item.Quantity
		item.Quantity = &q
	}
	return item
}

type memoryOrders struct {
	mu     sync.RWMutex
	orders map[string]models.Order
	subs   map[int]chan models.OrderChange
	nextID int
}

func (s *memoryOrders) Insert(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orders {
		if order.Rating_token != "" && existing.Rating_token == order.Rating_token {
			return fmt.Errorf("insert order: duplicate rating token")
		}
	}
	order.ID = primitive.NewObjectID()
	order.Order_id = order.ID.Hex()
	stored := copyOrder(*order)
	s.orders[order.Order_id] = stored
	s.notify(models.ChangeInsert, stored)
	return nil
}

func (s *memoryOrders) Get(_ context.Context, orderID string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[orderID]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return copyOrder(order), nil
}

func (s *memoryOrders) List(_ context.Context, filter models.OrderFilter) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := []models.Order{}
	for _, order := range s.orders {
		if filter.Customer_id != "" && order.Customer_id != filter.Customer_id {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.From != nil && order.Created_at.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !order.Created_at.Before(*filter.To) {
			continue
		}
		orders = append(orders, copyOrder(order))
	}
	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.Created_at.Equal(b.Created_at) {
			if filter.Ascending {
				return a.Created_at.Before(b.Created_at)
			}
			return a.Created_at.After(b.Created_at)
		}
		if filter.Ascending {
			return a.Order_id < b.Order_id
		}
		return a.Order_id > b.Order_id
	})
	return orders, nil
}

func (s *memoryOrders) UpdateStatus(_ context.Context, orderID, from, to string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if order.Status != from {
		return ErrConflict
	}
	order.Status = to
	order.Updated_at = &at
	s.orders[orderID] = order
	s.notify(models.ChangeUpdate, order)
	return nil
}

func (s *memoryOrders) SetRating(_ context.Context, orderID string, rating int, review *string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	order.Rating = &rating
	if review != nil {
		r := *review
		order.Review = &r
	} else {
		order.Review = nil
	}
	order.Updated_at = &at
	s.orders[orderID] = order
	s.notify(models.ChangeUpdate, order)
	return nil
}

func (s *memoryOrders) MarkEmailSent(_ context.Context, orderID, flag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	switch flag {
	case EmailReady:
		order.Email_sent_ready = true
	case EmailRating:
		order.Email_sent_rating = true
	default:
		return fmt.Errorf("unknown email flag %q", flag)
	}
	s.orders[orderID] = order
	s.notify(models.ChangeUpdate, order)
	return nil
}

// Watch delivers every later write. A subscriber that falls behind by more
// than the channel buffer is dropped and its channel closed, so the caller
// resubscribes and reloads instead of missing changes.
func (s *memoryOrders) Watch(ctx context.Context) (<-chan models.OrderChange, error) {
	ch := make(chan models.OrderChange, 64)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
		s.mu.Unlock()
	}()
	return ch, nil
}

// notify must be called with s.mu held.
func (s *memoryOrders) notify(op string, order models.Order) {
	for id, ch := range s.subs {
		o := copyOrder(order)
		select {
		case ch <- models.OrderChange{Operation: op, Order_id: order.Order_id, Order: &o}:
		default:
			delete(s.subs, id)
			close(ch)
		}
	}
}

func copyOrder(order models.Order) models.Order {
	order.Items = append([]models.OrderItem(nil), order.Items...)
	if order.Customer_email != nil {
		e := *order.Customer_email
		order.Customer_email = &e
	}
	if order.Updated_at != nil {
		t := *order.Updated_at
		order.Updated_at = &t
	}
	if order.Rating != nil {
		r := *order.Rating
		order.Rating = &r
	}
	if order.Review != nil {
		r := *order.Review
		order.Review = &r
	}
	return order
}

type memoryCounters struct {
	mu   sync.Mutex
	days map[string]int
}

func (s *memoryCounters) Get(_ context.Context, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.days[day], nil
}

func (s *memoryCounters) Increment(_ context.Context, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[day]++
	return s.days[day], nil
}
