package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"brista-coffee/database"
	"brista-coffee/models"

	"github.com/go-playground/validator"
)

var ErrInvalidMenuItem = errors.New("invalid menu item")

var validate = validator.New()

// Catalog backs the menu editor and resolves recipes for stock deduction.
type Catalog struct {
	store database.MenuStore
	log   *slog.Logger
	now   func() time.Time
}

func New(store database.MenuStore, log *slog.Logger) *Catalog {
	return &Catalog{store: store, log: log.With("component", "catalog"), now: time.Now}
}

func check(item models.MenuItem) error {
	if err := validate.Struct(&item); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMenuItem, err)
	}
	return nil
}

func (c *Catalog) Create(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	if err := check(item); err != nil {
		return models.MenuItem{}, err
	}
	now := c.now().UTC()
	item.Created_at = now
	item.Updated_at = now
	if err := c.store.Create(ctx, &item); err != nil {
		return models.MenuItem{}, err
	}
	c.log.Info("Menu item created", "menu_id", item.Menu_id, "name", item.Name)
	return item, nil
}

func (c *Catalog) Get(ctx context.Context, menuID string) (models.MenuItem, error) {
	return c.store.Get(ctx, menuID)
}

// List returns every item, or only one category when category is set.
func (c *Catalog) List(ctx context.Context, category string) ([]models.MenuItem, error) {
	return c.store.List(ctx, category)
}

func (c *Catalog) Update(ctx context.Context, menuID string, patch models.MenuPatch) (models.MenuItem, error) {
	item, err := c.store.Get(ctx, menuID)
	if err != nil {
		return models.MenuItem{}, err
	}
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.Tag != nil {
		item.Tag = *patch.Tag
	}
	if patch.Image_url != nil {
		item.Image_url = *patch.Image_url
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}
	if patch.Recipe != nil {
		item.Recipe = *patch.Recipe
	}
	if err := check(item); err != nil {
		return models.MenuItem{}, err
	}
	item.Updated_at = c.now().UTC()
	if err := c.store.Update(ctx, item); err != nil {
		return models.MenuItem{}, err
	}
	return item, nil
}

func (c *Catalog) Delete(ctx context.Context, menuID string) error {
	if err := c.store.Delete(ctx, menuID); err != nil {
		return err
	}
	c.log.Info("Menu item deleted", "menu_id", menuID)
	return nil
}

// RecipesFor loads the menu items referenced by ids. Unknown ids are absent
// from the result.
func (c *Catalog) RecipesFor(ctx context.Context, menuIDs []string) (map[string]models.MenuItem, error) {
	seen := make(map[string]bool, len(menuIDs))
	unique := make([]string, 0, len(menuIDs))
	for _, id := range menuIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return c.store.GetMany(ctx, unique)
}
