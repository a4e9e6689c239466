package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CategoryCoffee    = "Coffee"
	CategoryIced      = "Iced"
	CategoryNonCoffee = "Non-Coffee"
	CategoryDessert   = "Dessert"

	TagHot  = "Hot"
	TagCold = "Cold"
)

type RecipeIngredient struct {
	Inventory_item_id string `json:"inventory_item_id" validate:"required"`
	Quantity          int    `json:"quantity" validate:"required,gt=0"`
}

type MenuItem struct {
	ID          primitive.ObjectID `bson:"_id" json:"-"`
	Menu_id     string             `json:"menu_id"`
	Name        string             `json:"name" validate:"required,min=1,max=100"`
	Description string             `json:"description" validate:"max=500"`
	Price       float64            `json:"price" validate:"gte=0"`
	Category    string             `json:"category" validate:"required,eq=Coffee|eq=Iced|eq=Non-Coffee|eq=Dessert"`
	Tag         string             `json:"tag" validate:"required,eq=Hot|eq=Cold"`
	Image_url   string             `json:"image_url,omitempty"`
	Available   bool               `json:"available"`
	Recipe      []RecipeIngredient `json:"recipe,omitempty" validate:"omitempty,dive"`
	Created_at  time.Time          `json:"created_at"`
	Updated_at  time.Time          `json:"updated_at"`
}

// MenuPatch carries the fields an editor changes; nil fields are kept.
type MenuPatch struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Price       *float64            `json:"price"`
	Category    *string             `json:"category"`
	Tag         *string             `json:"tag"`
	Image_url   *string             `json:"image_url"`
	Available   *bool               `json:"available"`
	Recipe      *[]RecipeIngredient `json:"recipe"`
}
