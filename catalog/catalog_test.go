package catalog

import (
	"context"
	"errors"
	"testing"

	"brista-coffee/database"
	"brista-coffee/logger"
	"brista-coffee/models"
)

func newCatalog() *Catalog {
	return New(database.NewMemoryStores().Menu, logger.Discard())
}

func latte() models.MenuItem {
	return models.MenuItem{
		Name:      "Latte",
		Price:     4.5,
		Category:  models.CategoryCoffee,
		Tag:       models.TagHot,
		Available: true,
		Recipe:    []models.RecipeIngredient{{Inventory_item_id: "espresso-beans", Quantity: 1}},
	}
}

func TestCreateValidates(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	cases := map[string]func(*models.MenuItem){
		"negative price":  func(m *models.MenuItem) { m.Price = -1 },
		"bad category":    func(m *models.MenuItem) { m.Category = "Tea" },
		"bad tag":         func(m *models.MenuItem) { m.Tag = "Warm" },
		"missing name":    func(m *models.MenuItem) { m.Name = "" },
		"zero recipe qty": func(m *models.MenuItem) { m.Recipe[0].Quantity = 0 },
	}
	for name, mutate := range cases {
		item := latte()
		mutate(&item)
		if _, err := c.Create(ctx, item); !errors.Is(err, ErrInvalidMenuItem) {
			t.Errorf("%s: expected ErrInvalidMenuItem, got %v", name, err)
		}
	}

	created, err := c.Create(ctx, latte())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Menu_id == "" || created.Created_at.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", created)
	}
}

func TestUpdatePatch(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()
	created, _ := c.Create(ctx, latte())

	off := false
	price := 5.0
	updated, err := c.Update(ctx, created.Menu_id, models.MenuPatch{Available: &off, Price: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Available || updated.Price != 5 || updated.Name != "Latte" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	bad := "Tea"
	if _, err := c.Update(ctx, created.Menu_id, models.MenuPatch{Category: &bad}); !errors.Is(err, ErrInvalidMenuItem) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got, _ := c.Get(ctx, created.Menu_id)
	if got.Category != models.CategoryCoffee {
		t.Fatal("rejected patch was stored")
	}

	if _, err := c.Update(ctx, "missing", models.MenuPatch{}); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAndRecipesFor(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()
	l, _ := c.Create(ctx, latte())
	cake := latte()
	cake.Name, cake.Category, cake.Recipe = "Cheesecake", models.CategoryDessert, nil
	c.Create(ctx, cake)

	desserts, err := c.List(ctx, models.CategoryDessert)
	if err != nil || len(desserts) != 1 || desserts[0].Name != "Cheesecake" {
		t.Fatalf("unexpected dessert list %+v %v", desserts, err)
	}

	recipes, err := c.RecipesFor(ctx, []string{l.Menu_id, l.Menu_id, "gone"})
	if err != nil {
		t.Fatalf("recipes: %v", err)
	}
	if len(recipes) != 1 || len(recipes[l.Menu_id].Recipe) != 1 {
		t.Fatalf("unexpected recipes %+v", recipes)
	}

	if err := c.Delete(ctx, l.Menu_id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.Delete(ctx, l.Menu_id); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
