package orders

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"brista-coffee/database"
	"brista-coffee/events"
	"brista-coffee/inventory"
	"brista-coffee/models"
	"brista-coffee/notify"
	"brista-coffee/tasks"

	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultRatingDelay = 5 * time.Minute

var validate = validator.New()

type RecipeBook interface {
	RecipesFor(ctx context.Context, menuIDs []string) (map[string]models.MenuItem, error)
}

type StockLedger interface {
	Apply(ctx context.Context, orderID string, d inventory.Deductions) error
}

type QuotaGate interface {
	CanSend(ctx context.Context) bool
	RecordSent(ctx context.Context) error
}

type Deps struct {
	Orders  database.OrderStore
	Recipes RecipeBook
	Ledger  StockLedger
	Quota   QuotaGate
	Mailer  notify.Sender
	Events  events.Publisher
	Runner  *tasks.Runner
	Log     *slog.Logger

	// BaseURL prefixes the rating links in feedback emails.
	BaseURL     string
	RatingDelay time.Duration
}

// Engine owns the order state machine and the side effects hung off it.
// Store failures are returned; deduction, email and event failures are
// logged and absorbed.
type Engine struct {
	orders  database.OrderStore
	recipes RecipeBook
	ledger  StockLedger
	quota   QuotaGate
	mailer  notify.Sender
	events  events.Publisher
	runner  *tasks.Runner
	log     *slog.Logger

	baseURL     string
	ratingDelay time.Duration
	now         func() time.Time
}

func NewEngine(d Deps) *Engine {
	if d.RatingDelay <= 0 {
		d.RatingDelay = DefaultRatingDelay
	}
	if d.Events == nil {
		d.Events = events.NopPublisher{}
	}
	return &Engine{
		orders:      d.Orders,
		recipes:     d.Recipes,
		ledger:      d.Ledger,
		quota:       d.Quota,
		mailer:      d.Mailer,
		events:      d.Events,
		runner:      d.Runner,
		log:         d.Log.With("component", "orders"),
		baseURL:     d.BaseURL,
		ratingDelay: d.RatingDelay,
		now:         time.Now,
	}
}

// Total sums price times quantity over the lines, rounded to cents.
func Total(items []models.OrderItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		sum = sum.Add(line)
	}
	total, _ := sum.Round(2).Float64()
	return total
}

// CreateOrder stores a pending order and hands stock deduction to the
// background runner. The order exists once the single store write succeeds.
func (e *Engine) CreateOrder(ctx context.Context, req models.NewOrder) (models.Order, error) {
	if len(req.Items) == 0 {
		return models.Order{}, ErrEmptyOrder
	}
	if req.Customer_email != nil {
		email := strings.TrimSpace(*req.Customer_email)
		if email == "" {
			req.Customer_email = nil
		} else {
			req.Customer_email = &email
		}
	}
	if err := validate.Struct(&req); err != nil {
		return models.Order{}, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}

	order := models.Order{
		Customer_id:    req.Customer_id,
		Customer_name:  req.Customer_name,
		Customer_email: req.Customer_email,
		Items:          req.Items,
		Total:          Total(req.Items),
		Status:         models.StatusPending,
		Created_at:     e.now().UTC(),
		Rating_token:   uuid.NewString(),
	}
	if err := e.orders.Insert(ctx, &order); err != nil {
		return models.Order{}, err
	}
	e.log.Info("Order created", "order_id", order.Order_id, "customer_id", order.Customer_id, "total", order.Total, "items", len(order.Items))

	items := append([]models.OrderItem(nil), order.Items...)
	orderID := order.Order_id
	e.runner.Go("deduct:"+orderID, func(ctx context.Context) {
		e.deductStock(ctx, orderID, items)
	})
	e.publish(events.OrderCreated(order))
	return order, nil
}

func (e *Engine) deductStock(ctx context.Context, orderID string, items []models.OrderItem) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Menu_item_id)
	}
	recipes, err := e.recipes.RecipesFor(ctx, ids)
	if err != nil {
		e.log.Warn("Recipe lookup failed, deducting selections only", "order_id", orderID, "error", err)
		recipes = nil
	}
	d := inventory.SelectionDeductions(items).Merge(inventory.RecipeDeductions(items, recipes))
	if len(d) == 0 {
		return
	}
	if err := e.ledger.Apply(ctx, orderID, d); err != nil {
		e.log.Warn("Stock deduction incomplete", "order_id", orderID, "error", err)
	}
}

func (e *Engine) Get(ctx context.Context, orderID string) (models.Order, error) {
	return e.orders.Get(ctx, orderID)
}

func (e *Engine) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	return e.orders.List(ctx, filter)
}

// UpdateStatus moves an order along the state machine. Entering ready sends
// the pickup email before returning; entering completed schedules the
// feedback email.
func (e *Engine) UpdateStatus(ctx context.Context, orderID, status string) (models.Order, error) {
	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if err := checkTransition(order.Status, status); err != nil {
		return order, err
	}

	at := e.now().UTC()
	if err := e.orders.UpdateStatus(ctx, orderID, order.Status, status, at); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return order, fmt.Errorf("%w: order %s changed while updating", ErrInvalidTransition, orderID)
		}
		return order, err
	}
	e.log.Info("Order status changed", "order_id", orderID, "from", order.Status, "to", status)
	order.Status = status
	order.Updated_at = &at
	e.publish(events.StatusChanged(order, at))

	switch status {
	case models.StatusReady:
		if e.sendReady(ctx, order) {
			order.Email_sent_ready = true
		}
	case models.StatusCompleted:
		e.runner.After(ratingTaskKey(orderID), e.ratingDelay, func(ctx context.Context) {
			e.sendRating(ctx, orderID)
		})
	}
	return order, nil
}

func ratingTaskKey(orderID string) string {
	return "rating-email:" + orderID
}

// Rate records a 1-5 rating. Any status may be rated and a second rating
// overwrites the first.
func (e *Engine) Rate(ctx context.Context, orderID string, rating int, review *string) (models.Order, error) {
	if rating < 1 || rating > 5 {
		return models.Order{}, ErrInvalidRating
	}
	if review != nil {
		trimmed := strings.TrimSpace(*review)
		if utf8.RuneCountInString(trimmed) > models.MaxReviewLength {
			return models.Order{}, fmt.Errorf("%w: review longer than %d characters", ErrInvalidOrder, models.MaxReviewLength)
		}
		if trimmed == "" {
			review = nil
		} else {
			review = &trimmed
		}
	}

	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	at := e.now().UTC()
	if err := e.orders.SetRating(ctx, orderID, rating, review, at); err != nil {
		return order, err
	}
	order.Rating = &rating
	order.Review = review
	order.Updated_at = &at
	e.log.Info("Order rated", "order_id", orderID, "rating", rating)
	e.publish(events.OrderRated(order, at))
	return order, nil
}

// RateWithToken is the mailed-link flow. The token must match the order's.
// An order that already carries a rating keeps it and alreadyRated is true.
func (e *Engine) RateWithToken(ctx context.Context, orderID, token string, rating int, review *string) (order models.Order, alreadyRated bool, err error) {
	if rating < 1 || rating > 5 {
		return models.Order{}, false, ErrInvalidRating
	}
	order, err = e.orders.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, false, err
	}
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(order.Rating_token)) != 1 {
		return models.Order{}, false, ErrInvalidToken
	}
	if order.Rating != nil {
		return order, true, nil
	}
	order, err = e.Rate(ctx, orderID, rating, review)
	return order, false, err
}

func (e *Engine) publish(event events.Event) {
	e.runner.Go("publish:"+event.Type, func(ctx context.Context) {
		if err := e.events.Publish(ctx, event); err != nil {
			e.log.Warn("Event publish failed", "order_id", event.Order_id, "type", event.Type, "error", err)
		}
	})
}
