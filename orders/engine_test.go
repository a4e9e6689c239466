package orders

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"brista-coffee/catalog"
	"brista-coffee/database"
	"brista-coffee/events"
	"brista-coffee/helpers"
	"brista-coffee/inventory"
	"brista-coffee/logger"
	"brista-coffee/models"
	"brista-coffee/quota"
	"brista-coffee/tasks"
)

type sentMail struct {
	to, subject, html string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeSender) Send(_ context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("provider down")
	}
	f.sent = append(f.sent, sentMail{to, subject, html})
	return nil
}

func (f *fakeSender) all() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

type fixture struct {
	engine *Engine
	stores database.Stores
	gate   *quota.Gate
	mailer *fakeSender
	events *events.Recorder
	runner *tasks.Runner
	latte  models.MenuItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	log := logger.Discard()
	stores := database.NewMemoryStores()

	ledger := inventory.NewLedger(stores.Inventory, log)
	if _, err := ledger.SeedIfEmpty(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	menu := catalog.New(stores.Menu, log)
	latte, err := menu.Create(ctx, models.MenuItem{
		Name:      "Latte",
		Price:     4.5,
		Category:  models.CategoryCoffee,
		Tag:       models.TagHot,
		Available: true,
		Recipe:    []models.RecipeIngredient{{Inventory_item_id: "espresso-beans", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("menu: %v", err)
	}

	f := &fixture{
		stores: stores,
		gate:   quota.NewGate(stores.Counters, quota.DefaultDailyLimit, time.UTC, log),
		mailer: &fakeSender{},
		events: events.NewRecorder(64),
		runner: tasks.NewRunner(log),
		latte:  latte,
	}
	f.engine = NewEngine(Deps{
		Orders:      stores.Orders,
		Recipes:     menu,
		Ledger:      ledger,
		Quota:       f.gate,
		Mailer:      f.mailer,
		Events:      f.events,
		Runner:      f.runner,
		Log:         log,
		BaseURL:     "https://brista.example",
		RatingDelay: 10 * time.Millisecond,
	})
	t.Cleanup(f.runner.Stop)
	return f
}

func (f *fixture) order(t *testing.T, email string) models.Order {
	t.Helper()
	req := models.NewOrder{
		Customer_id:   "cust-1",
		Customer_name: "Ana",
		Items: []models.OrderItem{
			{Menu_item_id: f.latte.Menu_id, Name: "Latte", Price: 4.5, Quantity: 2, Milk: "Oat Milk", Cup: "ceramic", Sugar: "extra"},
			{Menu_item_id: "pastry-1", Name: "Croissant", Price: 3.25, Quantity: 1},
		},
	}
	if email != "" {
		req.Customer_email = &email
	}
	order, err := f.engine.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return order
}

func (f *fixture) advance(t *testing.T, orderID string, statuses ...string) models.Order {
	t.Helper()
	var order models.Order
	var err error
	for _, s := range statuses {
		order, err = f.engine.UpdateStatus(context.Background(), orderID, s)
		if err != nil {
			t.Fatalf("advance to %s: %v", s, err)
		}
	}
	return order
}

func stock(t *testing.T, stores database.Stores, id string) int {
	t.Helper()
	item, err := stores.Inventory.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return *item.Quantity
}

func TestTotal(t *testing.T) {
	items := []models.OrderItem{
		{Price: 4.5, Quantity: 2},
		{Price: 3.25, Quantity: 1},
		{Price: 0.1, Quantity: 3},
	}
	if got := Total(items); got != 12.55 {
		t.Fatalf("expected 12.55, got %v", got)
	}
}

func TestCreateOrderDeductsStock(t *testing.T) {
	f := newFixture(t)
	order := f.order(t, "")

	if order.Status != models.StatusPending || order.Total != 12.25 {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.Rating_token == "" || order.Order_id == "" || order.Created_at.IsZero() {
		t.Fatal("expected id, token and timestamp")
	}

	f.runner.Wait()
	want := map[string]int{"oat": 98, "ceramic": 98, inventory.SugarItemID: 494, "espresso-beans": 198}
	for id, q := range want {
		if got := stock(t, f.stores, id); got != q {
			t.Errorf("%s: expected %d, got %d", id, q, got)
		}
	}

	stored, _ := f.engine.Get(context.Background(), order.Order_id)
	if stored.Total != order.Total {
		t.Fatal("stored total differs")
	}
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CreateOrder(ctx, models.NewOrder{Customer_id: "c", Customer_name: "A"})
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}

	bad := []models.OrderItem{
		{Menu_item_id: "m", Name: "Latte", Price: 4.5, Quantity: 0},
		{Menu_item_id: "m", Name: "Latte", Price: -1, Quantity: 1},
		{Menu_item_id: "m", Name: "Latte", Price: 4.5, Quantity: 1, Special_instructions: strings.Repeat("x", 101)},
	}
	for i, item := range bad {
		_, err := f.engine.CreateOrder(ctx, models.NewOrder{Customer_id: "c", Customer_name: "A", Items: []models.OrderItem{item}})
		if !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("case %d: expected ErrInvalidOrder, got %v", i, err)
		}
	}

	orders, _ := f.engine.List(ctx, models.OrderFilter{})
	if len(orders) != 0 {
		t.Fatalf("rejected orders were stored: %d", len(orders))
	}
}

func TestTransitionTable(t *testing.T) {
	all := []string{models.StatusPending, models.StatusPreparing, models.StatusReady, models.StatusCompleted, models.StatusCancelled}
	allowed := map[[2]string]bool{
		{models.StatusPending, models.StatusPreparing}:   true,
		{models.StatusPending, models.StatusCancelled}:   true,
		{models.StatusPreparing, models.StatusReady}:     true,
		{models.StatusPreparing, models.StatusCancelled}: true,
		{models.StatusReady, models.StatusCompleted}:     true,
		{models.StatusReady, models.StatusCancelled}:     true,
	}
	for _, from := range all {
		for _, to := range all {
			if got := CanTransition(from, to); got != allowed[[2]string{from, to}] {
				t.Errorf("CanTransition(%s, %s) = %v", from, to, got)
			}
		}
	}
}

func TestCancelledOrderCannotComplete(t *testing.T) {
	f := newFixture(t)
	order := f.order(t, "")
	f.advance(t, order.Order_id, models.StatusCancelled)

	_, err := f.engine.UpdateStatus(context.Background(), order.Order_id, models.StatusCompleted)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	stored, _ := f.engine.Get(context.Background(), order.Order_id)
	if stored.Status != models.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", stored.Status)
	}
}

func TestSkippingAndUnknownStatusRejected(t *testing.T) {
	f := newFixture(t)
	order := f.order(t, "")
	for _, s := range []string{models.StatusReady, models.StatusPending, "brewing"} {
		if _, err := f.engine.UpdateStatus(context.Background(), order.Order_id, s); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s: expected ErrInvalidTransition, got %v", s, err)
		}
	}
	if _, err := f.engine.UpdateStatus(context.Background(), "missing", models.StatusPreparing); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadySendsEmailAndCountsQuota(t *testing.T) {
	f := newFixture(t)
	order := f.order(t, "ana@example.com")

	updated := f.advance(t, order.Order_id, models.StatusPreparing, models.StatusReady)
	if !updated.Email_sent_ready {
		t.Fatal("expected ready flag on returned order")
	}
	sent := f.mailer.all()
	if len(sent) != 1 || sent[0].to != "ana@example.com" {
		t.Fatalf("expected one ready email, got %+v", sent)
	}
	if !strings.Contains(sent[0].subject, helpers.ShortOrderID(order.Order_id)) {
		t.Fatalf("subject missing order id: %s", sent[0].subject)
	}
	if f.gate.Remaining(context.Background()) != quota.DefaultDailyLimit-1 {
		t.Fatal("expected one send counted")
	}
	stored, _ := f.engine.Get(context.Background(), order.Order_id)
	if !stored.Email_sent_ready {
		t.Fatal("expected stored ready flag")
	}
}

func TestReadyWithQuotaExhausted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := helpers.DayKey(time.Now(), time.UTC)
	for i := 0; i < quota.DefaultDailyLimit; i++ {
		f.stores.Counters.Increment(ctx, today)
	}
	order := f.order(t, "ana@example.com")

	updated := f.advance(t, order.Order_id, models.StatusPreparing, models.StatusReady)
	if updated.Status != models.StatusReady {
		t.Fatalf("expected ready, got %s", updated.Status)
	}
	if len(f.mailer.all()) != 0 {
		t.Fatal("expected no email over quota")
	}
	stored, _ := f.engine.Get(ctx, order.Order_id)
	if stored.Status != models.StatusReady || stored.Email_sent_ready {
		t.Fatalf("unexpected stored order %+v", stored)
	}
}

func TestSendFailureDoesNotBlockTransition(t *testing.T) {
	f := newFixture(t)
	f.mailer.fail = true
	order := f.order(t, "ana@example.com")

	updated := f.advance(t, order.Order_id, models.StatusPreparing, models.StatusReady)
	if updated.Status != models.StatusReady || updated.Email_sent_ready {
		t.Fatalf("unexpected order %+v", updated)
	}
	if f.gate.Remaining(context.Background()) != quota.DefaultDailyLimit {
		t.Fatal("failed send must not be counted")
	}
}

func TestRatingEmailAfterCompletion(t *testing.T) {
	f := newFixture(t)
	order := f.order(t, "ana@example.com")
	f.advance(t, order.Order_id, models.StatusPreparing, models.StatusReady, models.StatusCompleted)

	f.runner.Wait()
	sent := f.mailer.all()
	if len(sent) != 2 {
		t.Fatalf("expected ready and rating emails, got %d", len(sent))
	}
	if !strings.Contains(sent[1].html, "token="+order.Rating_token) {
		t.Fatal("rating email missing token link")
	}
	stored, _ := f.engine.Get(context.Background(), order.Order_id)
	if !stored.Email_sent_rating {
		t.Fatal("expected rating flag")
	}
}

func TestRatingEmailSkippedWhenAlreadyRated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.order(t, "ana@example.com")
	f.advance(t, order.Order_id, models.StatusPreparing, models.StatusReady, models.StatusCompleted)
	if _, err := f.engine.Rate(ctx, order.Order_id, 5, nil); err != nil {
		t.Fatalf("rate: %v", err)
	}

	f.runner.Wait()
	if n := len(f.mailer.all()); n != 1 {
		t.Fatalf("expected only the ready email, got %d", n)
	}
}

func TestRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.order(t, "")

	for _, r := range []int{0, 6} {
		if _, err := f.engine.Rate(ctx, order.Order_id, r, nil); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got %v", r, err)
		}
	}

	review := "  Lovely foam  "
	rated, err := f.engine.Rate(ctx, order.Order_id, 4, &review)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if *rated.Rating != 4 || *rated.Review != "Lovely foam" || rated.Status != models.StatusPending {
		t.Fatalf("unexpected rated order %+v", rated)
	}

	again, err := f.engine.Rate(ctx, order.Order_id, 2, nil)
	if err != nil || *again.Rating != 2 {
		t.Fatalf("expected overwrite, got %v %v", again.Rating, err)
	}
}

func TestRateWithToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.order(t, "")

	if _, _, err := f.engine.RateWithToken(ctx, order.Order_id, "wrong", 5, nil); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	rated, already, err := f.engine.RateWithToken(ctx, order.Order_id, order.Rating_token, 5, nil)
	if err != nil || already || *rated.Rating != 5 {
		t.Fatalf("first rating: %v %v %+v", err, already, rated.Rating)
	}
	kept, already, err := f.engine.RateWithToken(ctx, order.Order_id, order.Rating_token, 1, nil)
	if err != nil || !already || *kept.Rating != 5 {
		t.Fatalf("second rating: %v %v %+v", err, already, kept.Rating)
	}
}

func TestEventsPublished(t *testing.T) {
	f := newFixture(t)
	order := f.order(t, "")
	f.advance(t, order.Order_id, models.StatusPreparing)
	f.runner.Wait()

	seen := map[string]bool{}
	for len(f.events.Events()) > 0 {
		seen[(<-f.events.Events()).Type] = true
	}
	for _, want := range []string{events.TypeOrderCreated, events.StatusType(models.StatusPreparing)} {
		if !seen[want] {
			t.Errorf("missing event %s", want)
		}
	}
}

func TestCreateOrderTreatsBlankEmailAsMissing(t *testing.T) {
	f := newFixture(t)
	for _, email := range []string{"", "   "} {
		email := email
		order, err := f.engine.CreateOrder(context.Background(), models.NewOrder{
			Customer_id:    "guest",
			Customer_name:  "Guest",
			Customer_email: &email,
			Items:          []models.OrderItem{{Menu_item_id: "m", Name: "Latte", Price: 4.5, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("email %q: %v", email, err)
		}
		if order.Customer_email != nil {
			t.Fatalf("email %q: expected no address stored, got %q", email, *order.Customer_email)
		}
	}

	padded := "  ana@example.com "
	order, err := f.engine.CreateOrder(context.Background(), models.NewOrder{
		Customer_id:    "cust-2",
		Customer_name:  "Ana",
		Customer_email: &padded,
		Items:          []models.OrderItem{{Menu_item_id: "m", Name: "Latte", Price: 4.5, Quantity: 1}},
	})
	if err != nil || order.Customer_email == nil || *order.Customer_email != "ana@example.com" {
		t.Fatalf("expected trimmed address, got %v %v", order.Customer_email, err)
	}
	f.runner.Wait()
}

func TestReviewLimitCountsCharacters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.order(t, "")

	cups := strings.Repeat("☕", 200)
	if _, err := f.engine.Rate(ctx, order.Order_id, 5, &cups); err != nil {
		t.Fatalf("200 characters should fit: %v", err)
	}
	long := strings.Repeat("é", models.MaxReviewLength+1)
	if _, err := f.engine.Rate(ctx, order.Order_id, 5, &long); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got %v", err)
	}
}

var errStoreDown = errors.New("store down")

type brokenOrders struct {
	database.OrderStore
	insert, updateStatus, setRating bool
}

func (b *brokenOrders) Insert(ctx context.Context, order *models.Order) error {
	if b.insert {
		return errStoreDown
	}
	return b.OrderStore.Insert(ctx, order)
}

func (b *brokenOrders) UpdateStatus(ctx context.Context, orderID, from, to string, at time.Time) error {
	if b.updateStatus {
		return errStoreDown
	}
	return b.OrderStore.UpdateStatus(ctx, orderID, from, to, at)
}

func (b *brokenOrders) SetRating(ctx context.Context, orderID string, rating int, review *string, at time.Time) error {
	if b.setRating {
		return errStoreDown
	}
	return b.OrderStore.SetRating(ctx, orderID, rating, review, at)
}

type brokenLedger struct {
	mu    sync.Mutex
	calls int
}

func (l *brokenLedger) Apply(context.Context, string, inventory.Deductions) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return errors.New("ledger unreachable")
}

type uncountedGate struct{}

func (uncountedGate) CanSend(context.Context) bool     { return true }
func (uncountedGate) RecordSent(context.Context) error { return errors.New("counter unreachable") }

func TestFailurePropagation(t *testing.T) {
	log := logger.Discard()
	stores := database.NewMemoryStores()
	orders := &brokenOrders{OrderStore: stores.Orders}
	ledger := &brokenLedger{}
	mailer := &fakeSender{}
	runner := tasks.NewRunner(log)
	t.Cleanup(runner.Stop)
	engine := NewEngine(Deps{
		Orders:  orders,
		Recipes: catalog.New(stores.Menu, log),
		Ledger:  ledger,
		Quota:   uncountedGate{},
		Mailer:  mailer,
		Runner:  runner,
		Log:     log,
	})
	ctx := context.Background()
	email := "ana@example.com"
	req := models.NewOrder{
		Customer_id:    "cust-1",
		Customer_name:  "Ana",
		Customer_email: &email,
		Items:          []models.OrderItem{{Menu_item_id: "m", Name: "Latte", Price: 4.5, Quantity: 1, Milk: "oat"}},
	}

	order, err := engine.CreateOrder(ctx, req)
	runner.Wait()
	if err != nil || order.Status != models.StatusPending {
		t.Fatalf("a failing ledger must not fail checkout: %v", err)
	}
	if ledger.calls != 1 {
		t.Fatalf("expected one deduction attempt, got %d", ledger.calls)
	}

	ready, err := engine.UpdateStatus(ctx, order.Order_id, models.StatusPreparing)
	if err == nil {
		ready, err = engine.UpdateStatus(ctx, order.Order_id, models.StatusReady)
	}
	if err != nil {
		t.Fatalf("a failing quota counter must not fail the transition: %v", err)
	}
	if len(mailer.all()) != 1 || !ready.Email_sent_ready {
		t.Fatalf("expected the ready email sent and flagged, got %d mails", len(mailer.all()))
	}

	orders.insert = true
	if _, err := engine.CreateOrder(ctx, req); !errors.Is(err, errStoreDown) {
		t.Fatalf("CreateOrder: expected store error, got %v", err)
	}
	orders.updateStatus = true
	if _, err := engine.UpdateStatus(ctx, order.Order_id, models.StatusCompleted); !errors.Is(err, errStoreDown) {
		t.Fatalf("UpdateStatus: expected store error, got %v", err)
	}
	orders.setRating = true
	if _, err := engine.Rate(ctx, order.Order_id, 5, nil); !errors.Is(err, errStoreDown) {
		t.Fatalf("Rate: expected store error, got %v", err)
	}
	runner.Wait()
}
