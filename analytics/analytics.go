package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brista-coffee/database"
	"brista-coffee/models"
)

const MaxWindowDays = 366

var (
	ErrNoOrders      = errors.New("customer has no orders")
	ErrInvalidWindow = fmt.Errorf("days must be between 1 and %d", MaxWindowDays)
)

// Aggregator derives reports from the order history on demand. It never
// writes orders.
type Aggregator struct {
	orders database.OrderStore
	loc    *time.Location
	vip    VipPolicy
	now    func() time.Time
}

func NewAggregator(orders database.OrderStore, loc *time.Location, vip VipPolicy) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{orders: orders, loc: loc, vip: vip, now: time.Now}
}

func (a *Aggregator) window(ctx context.Context, days int) ([]models.Order, time.Time, error) {
	if days < 1 || days > MaxWindowDays {
		return nil, time.Time{}, ErrInvalidWindow
	}
	now := a.now()
	from := WindowStart(now, days, a.loc)
	orders, err := a.orders.List(ctx, models.OrderFilter{From: &from})
	if err != nil {
		return nil, now, err
	}
	return orders, now, nil
}

func (a *Aggregator) RevenueSeries(ctx context.Context, days int) (models.RevenueReport, error) {
	orders, now, err := a.window(ctx, days)
	if err != nil {
		return models.RevenueReport{}, err
	}
	return Revenue(orders, days, now, a.loc), nil
}

func (a *Aggregator) PopularItems(ctx context.Context, days int) ([]models.ItemPopularity, error) {
	orders, now, err := a.window(ctx, days)
	if err != nil {
		return nil, err
	}
	return Popular(orders, days, now, a.loc, TopItemsLimit), nil
}

func (a *Aggregator) CustomerInsight(ctx context.Context, customerID string) (models.CustomerInsight, error) {
	orders, err := a.orders.List(ctx, models.OrderFilter{Customer_id: customerID})
	if err != nil {
		return models.CustomerInsight{}, err
	}
	if len(orders) == 0 {
		return models.CustomerInsight{}, ErrNoOrders
	}
	return Insight(customerID, orders, a.vip), nil
}

func (a *Aggregator) Customers(ctx context.Context) ([]models.CustomerSummary, error) {
	orders, err := a.orders.List(ctx, models.OrderFilter{})
	if err != nil {
		return nil, err
	}
	return Summaries(orders, a.vip), nil
}
