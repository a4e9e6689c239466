package kitchen

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"brista-coffee/database"
	"brista-coffee/models"
)

var errStreamClosed = errors.New("order change stream closed")

// PendingTracker compares the pending count across consecutive
// notifications. Only a rise counts as a new order; the first observation
// sets the baseline.
type PendingTracker struct {
	last   int
	primed bool
}

func (t *PendingTracker) Observe(pending int) bool {
	rose := t.primed && pending > t.last
	t.last = pending
	t.primed = true
	return rose
}

// Feed keeps the live queue (pending, preparing, ready) in step with the
// order store and pushes it to the hub on every change.
type Feed struct {
	orders database.OrderStore
	hub    *Hub
	log    *slog.Logger
	retry  time.Duration

	// tracker outlives a single subscription so a rise that happened while
	// resubscribing still raises an alert.
	tracker PendingTracker
}

func NewFeed(orders database.OrderStore, hub *Hub, log *slog.Logger) *Feed {
	return &Feed{orders: orders, hub: hub, log: log.With("component", "kitchen_feed"), retry: 3 * time.Second}
}

// Run follows the order stream until ctx ends, resubscribing after failures.
func (f *Feed) Run(ctx context.Context) {
	for {
		err := f.follow(ctx)
		if ctx.Err() != nil {
			return
		}
		f.log.Warn("Kitchen feed interrupted, resubscribing", "error", err, "retry_in", f.retry)
		select {
		case <-time.After(f.retry):
		case <-ctx.Done():
			return
		}
	}
}

func (f *Feed) follow(ctx context.Context) error {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes, err := f.orders.Watch(watchCtx)
	if err != nil {
		return err
	}
	live, err := f.loadLive(ctx)
	if err != nil {
		return err
	}

	f.hub.Publish(Queue(live))
	if f.tracker.Observe(pendingCount(live)) {
		if newest, ok := newestPending(live); ok {
			f.hub.Broadcast(Message{Event: EventNewOrder, Payload: newest})
		}
	}

	for change := range changes {
		previous, known := live[change.Order_id]
		switch {
		case change.Operation == models.ChangeDelete || change.Order == nil:
			delete(live, change.Order_id)
		case change.Order.IsLive():
			live[change.Order_id] = *change.Order
		default:
			delete(live, change.Order_id)
		}

		f.hub.Publish(Queue(live))
		if f.tracker.Observe(pendingCount(live)) && change.Order != nil {
			f.hub.Broadcast(Message{Event: EventNewOrder, Payload: change.Order})
		}
		if change.Order != nil && change.Order.Status == models.StatusReady &&
			(!known || previous.Status != models.StatusReady) {
			f.hub.Broadcast(Message{Event: EventPrepareStatus, Payload: change.Order})
		}
	}
	return errStreamClosed
}

func (f *Feed) loadLive(ctx context.Context) (map[string]models.Order, error) {
	live := map[string]models.Order{}
	for _, status := range []string{models.StatusPending, models.StatusPreparing, models.StatusReady} {
		orders, err := f.orders.List(ctx, models.OrderFilter{Status: status, Ascending: true})
		if err != nil {
			return nil, err
		}
		for _, order := range orders {
			live[order.Order_id] = order
		}
	}
	return live, nil
}

func pendingCount(live map[string]models.Order) int {
	n := 0
	for _, order := range live {
		if order.Status == models.StatusPending {
			n++
		}
	}
	return n
}

func newestPending(live map[string]models.Order) (models.Order, bool) {
	var newest models.Order
	found := false
	for _, order := range live {
		if order.Status != models.StatusPending {
			continue
		}
		if !found || order.Created_at.After(newest.Created_at) {
			newest, found = order, true
		}
	}
	return newest, found
}

// Queue orders the live set oldest first.
func Queue(live map[string]models.Order) []models.Order {
	queue := make([]models.Order, 0, len(live))
	for _, order := range live {
		queue = append(queue, order)
	}
	sort.Slice(queue, func(i, j int) bool {
		if !queue[i].Created_at.Equal(queue[j].Created_at) {
			return queue[i].Created_at.Before(queue[j].Created_at)
		}
		return queue[i].Order_id < queue[j].Order_id
	})
	return queue
}
