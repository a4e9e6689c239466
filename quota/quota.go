package quota

import (
	"context"
	"log/slog"
	"time"

	"brista-coffee/database"
	"brista-coffee/helpers"
	"brista-coffee/models"
)

const DefaultDailyLimit = 95

// Gate caps outbound notification sends per calendar day across the whole
// system. CanSend followed by RecordSent is not atomic, so concurrent senders
// may overshoot the cap slightly.
type Gate struct {
	counter database.CounterStore
	limit   int
	loc     *time.Location
	now     func() time.Time
	log     *slog.Logger
}

func NewGate(counter database.CounterStore, limit int, loc *time.Location, log *slog.Logger) *Gate {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	if loc == nil {
		loc = time.Local
	}
	return &Gate{
		counter: counter,
		limit:   limit,
		loc:     loc,
		now:     time.Now,
		log:     log.With("component", "quota"),
	}
}

// WithClock replaces the time source.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

func (g *Gate) Limit() int { return g.limit }

func (g *Gate) today() string {
	return helpers.DayKey(g.now(), g.loc)
}

// CanSend reports whether today's count is below the cap. A counter read
// failure closes the gate.
func (g *Gate) CanSend(ctx context.Context) bool {
	sent, err := g.counter.Get(ctx, g.today())
	if err != nil {
		g.log.Warn("Quota check failed", "error", err)
		return false
	}
	return sent < g.limit
}

// Remaining is the cap minus today's count, never below zero. A counter read
// failure reports zero.
func (g *Gate) Remaining(ctx context.Context) int {
	sent, err := g.counter.Get(ctx, g.today())
	if err != nil {
		g.log.Warn("Quota read failed", "error", err)
		return 0
	}
	if sent >= g.limit {
		return 0
	}
	return g.limit - sent
}

// RecordSent counts one delivered notification against today.
func (g *Gate) RecordSent(ctx context.Context) error {
	day := g.today()
	sent, err := g.counter.Increment(ctx, day)
	if err != nil {
		return err
	}
	if sent >= g.limit {
		g.log.Info("Daily notification quota reached", "day", day, "sent", sent, "limit", g.limit)
	}
	return nil
}

func (g *Gate) Status(ctx context.Context) models.QuotaStatus {
	remaining := g.Remaining(ctx)
	return models.QuotaStatus{Remaining: remaining, Can_send: remaining > 0, Limit: g.limit}
}
