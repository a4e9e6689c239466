package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"brista-coffee/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	menuCollectionName      = "menu"
	inventoryCollectionName = "inventory"
	orderCollectionName     = "orders"
	counterCollectionName   = "emailStats"
)

// NewMongoStores wires every store to its collection in db.
func NewMongoStores(db *mongo.Database, log *slog.Logger) Stores {
	return Stores{
		Menu:      &menuStore{coll: db.Collection(menuCollectionName)},
		Inventory: &inventoryStore{coll: db.Collection(inventoryCollectionName)},
		Orders:    &orderStore{coll: db.Collection(orderCollectionName), log: log.With("component", "order_store")},
		Counters:  &counterStore{coll: db.Collection(counterCollectionName)},
	}
}

// EnsureIndexes creates the indexes the order queries rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	orders := db.Collection(orderCollectionName)
	_, err := orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "rating_token", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}
	menu := db.Collection(menuCollectionName)
	_, err = menu.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "menu_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create menu indexes: %w", err)
	}
	return nil
}

type menuStore struct {
	coll *mongo.Collection
}

func (s *menuStore) Create(ctx context.Context, item *models.MenuItem) error {
	item.ID = primitive.NewObjectID()
	item.Menu_id = item.ID.Hex()
	if _, err := s.coll.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}
	return nil
}

func (s *menuStore) Get(ctx context.Context, menuID string) (models.MenuItem, error) {
	var item models.MenuItem
	err := s.coll.FindOne(ctx, bson.M{"menu_id": menuID}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, fmt.Errorf("find menu item %s: %w", menuID, err)
	}
	return item, nil
}

func (s *menuStore) List(ctx context.Context, category string) ([]models.MenuItem, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	items := []models.MenuItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode menu items: %w", err)
	}
	return items, nil
}

func (s *menuStore) GetMany(ctx context.Context, menuIDs []string) (map[string]models.MenuItem, error) {
	out := make(map[string]models.MenuItem, len(menuIDs))
	if len(menuIDs) == 0 {
		return out, nil
	}
	cursor, err := s.coll.Find(ctx, bson.M{"menu_id": bson.M{"$in": menuIDs}})
	if err != nil {
		return nil, fmt.Errorf("find menu items: %w", err)
	}
	var items []models.MenuItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode menu items: %w", err)
	}
	for _, item := range items {
		out[item.Menu_id] = item
	}
	return out, nil
}

func (s *menuStore) Update(ctx context.Context, item models.MenuItem) error {
	updateObj := bson.D{
		{Key: "name", Value: item.Name},
		{Key: "description", Value: item.Description},
		{Key: "price", Value: item.Price},
		{Key: "category", Value: item.Category},
		{Key: "tag", Value: item.Tag},
		{Key: "image_url", Value: item.Image_url},
		{Key: "available", Value: item.Available},
		{Key: "recipe", Value: item.Recipe},
		{Key: "updated_at", Value: item.Updated_at},
	}
	result, err := s.coll.UpdateOne(ctx, bson.M{"menu_id": item.Menu_id}, bson.D{{Key: "$set", Value: updateObj}})
	if err != nil {
		return fmt.Errorf("update menu item %s: %w", item.Menu_id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *menuStore) Delete(ctx context.Context, menuID string) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"menu_id": menuID})
	if err != nil {
		return fmt.Errorf("delete menu item %s: %w", menuID, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type inventoryStore struct {
	coll *mongo.Collection
}

func (s *inventoryStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count inventory: %w", err)
	}
	return n, nil
}

func (s *inventoryStore) InsertMany(ctx context.Context, items []models.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(items))
	for _, item := range items {
		docs = append(docs, item)
	}
	_, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert inventory: %w", err)
	}
	return nil
}

func (s *inventoryStore) List(ctx context.Context) ([]models.InventoryItem, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "kind", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	items := []models.InventoryItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	return items, nil
}

func (s *inventoryStore) Get(ctx context.Context, itemID string) (models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.coll.FindOne(ctx, bson.M{"_id": itemID}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, fmt.Errorf("find inventory item %s: %w", itemID, err)
	}
	return item, nil
}

func (s *inventoryStore) SetAvailable(ctx context.Context, itemID string, available bool) error {
	return s.set(ctx, itemID, bson.E{Key: "available", Value: available})
}

func (s *inventoryStore) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	return s.set(ctx, itemID, bson.E{Key: "quantity", Value: quantity})
}

func (s *inventoryStore) set(ctx context.Context, itemID string, field bson.E) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": itemID}, bson.D{{Key: "$set", Value: bson.D{field}}})
	if err != nil {
		return fmt.Errorf("update inventory item %s: %w", itemID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *inventoryStore) Increment(ctx context.Context, itemID string, delta int) (bool, error) {
	// Untracked rows (no numeric quantity) are left alone.
	filter := bson.M{"_id": itemID, "quantity": bson.M{"$type": "number"}}
	result, err := s.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"quantity": delta}})
	if err != nil {
		return false, fmt.Errorf("increment inventory item %s: %w", itemID, err)
	}
	return result.MatchedCount > 0, nil
}

type orderStore struct {
	coll *mongo.Collection
	log  *slog.Logger
}

func (s *orderStore) Insert(ctx context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	order.Order_id = order.ID.Hex()
	if _, err := s.coll.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *orderStore) Get(ctx context.Context, orderID string) (models.Order, error) {
	var order models.Order
	err := s.coll.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return order, ErrNotFound
	}
	if err != nil {
		return order, fmt.Errorf("find order %s: %w", orderID, err)
	}
	return order, nil
}

func (s *orderStore) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	match := bson.M{}
	if filter.Customer_id != "" {
		match["customer_id"] = filter.Customer_id
	}
	if filter.Status != "" {
		match["status"] = filter.Status
	}
	if filter.From != nil || filter.To != nil {
		createdAt := bson.M{}
		if filter.From != nil {
			createdAt["$gte"] = *filter.From
		}
		if filter.To != nil {
			createdAt["$lt"] = *filter.To
		}
		match["created_at"] = createdAt
	}
	direction := -1
	if filter.Ascending {
		direction = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: direction}, {Key: "_id", Value: direction}})

	cursor, err := s.coll.Find(ctx, match, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (s *orderStore) UpdateStatus(ctx context.Context, orderID, from, to string, at time.Time) error {
	filter := bson.M{"order_id": orderID, "status": from}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: to},
		{Key: "updated_at", Value: at},
	}}}
	result, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update order status %s: %w", orderID, err)
	}
	if result.MatchedCount == 0 {
		return s.missOrConflict(ctx, orderID)
	}
	return nil
}

func (s *orderStore) SetRating(ctx context.Context, orderID string, rating int, review *string, at time.Time) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "rating", Value: rating},
		{Key: "review", Value: review},
		{Key: "updated_at", Value: at},
	}}}
	result, err := s.coll.UpdateOne(ctx, bson.M{"order_id": orderID}, update)
	if err != nil {
		return fmt.Errorf("rate order %s: %w", orderID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *orderStore) MarkEmailSent(ctx context.Context, orderID, flag string) error {
	if flag != EmailReady && flag != EmailRating {
		return fmt.Errorf("unknown email flag %q", flag)
	}
	result, err := s.coll.UpdateOne(ctx, bson.M{"order_id": orderID}, bson.M{"$set": bson.M{flag: true}})
	if err != nil {
		return fmt.Errorf("mark %s on order %s: %w", flag, orderID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *orderStore) missOrConflict(ctx context.Context, orderID string) error {
	n, err := s.coll.CountDocuments(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return fmt.Errorf("find order %s: %w", orderID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

type changeEvent struct {
	OperationType string        `bson:"operationType"`
	FullDocument  *models.Order `bson:"fullDocument"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
}

// Watch opens a change stream on the orders collection. Change streams need
// a replica set or sharded cluster.
func (s *orderStore) Watch(ctx context.Context) (<-chan models.OrderChange, error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := s.coll.Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return nil, fmt.Errorf("watch orders: %w", err)
	}

	changes := make(chan models.OrderChange, 64)
	go func() {
		defer close(changes)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var event changeEvent
			if err := stream.Decode(&event); err != nil {
				s.log.Warn("Failed to decode order change", "error", err)
				continue
			}
			change := models.OrderChange{Order_id: event.DocumentKey.ID.Hex(), Order: event.FullDocument}
			switch event.OperationType {
			case "insert":
				change.Operation = models.ChangeInsert
			case "update", "replace":
				change.Operation = models.ChangeUpdate
			case "delete":
				change.Operation = models.ChangeDelete
			default:
				continue
			}
			if change.Order != nil {
				change.Order_id = change.Order.Order_id
			}
			select {
			case changes <- change:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			s.log.Error("Order change stream stopped", "error", err)
		}
	}()
	return changes, nil
}

type counterStore struct {
	coll *mongo.Collection
}

func (s *counterStore) Get(ctx context.Context, day string) (int, error) {
	var row models.DailyCounter
	err := s.coll.FindOne(ctx, bson.M{"_id": day}).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter %s: %w", day, err)
	}
	return row.Count, nil
}

func (s *counterStore) Increment(ctx context.Context, day string) (int, error) {
	update := bson.M{
		"$inc": bson.M{"count": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var row models.DailyCounter
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": day}, update, opts).Decode(&row); err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", day, err)
	}
	return row.Count, nil
}
