package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	MaxInstructionsLength = 100
	MaxReviewLength       = 500
)

type OrderItem struct {
	Menu_item_id         string  `json:"menu_item_id" validate:"required"`
	Name                 string  `json:"name" validate:"required"`
	Price                float64 `json:"price" validate:"gte=0"`
	Quantity             int     `json:"quantity" validate:"required,gt=0"`
	Milk                 string  `json:"milk,omitempty"`
	Cup                  string  `json:"cup,omitempty"`
	Sugar                string  `json:"sugar,omitempty"`
	Special_instructions string  `json:"special_instructions,omitempty" validate:"max=100"`
}

type Order struct {
	ID                primitive.ObjectID `bson:"_id" json:"-"`
	Order_id          string             `json:"order_id"`
	Customer_id       string             `json:"customer_id"`
	Customer_name     string             `json:"customer_name"`
	Customer_email    *string            `json:"customer_email,omitempty"`
	Items             []OrderItem        `json:"items"`
	Total             float64            `json:"total"`
	Status            string             `json:"status"`
	Created_at        time.Time          `json:"created_at"`
	Updated_at        *time.Time         `json:"updated_at,omitempty"`
	Rating            *int               `json:"rating,omitempty"`
	Review            *string            `json:"review,omitempty"`
	Rating_token      string             `json:"-"`
	Email_sent_ready  bool               `json:"email_sent_ready"`
	Email_sent_rating bool               `json:"email_sent_rating"`
}

// NewOrder is what checkout submits.
type NewOrder struct {
	Customer_id    string      `json:"customer_id" validate:"required"`
	Customer_name  string      `json:"customer_name" validate:"required,max=100"`
	Customer_email *string     `json:"customer_email" validate:"omitempty,email"`
	Items          []OrderItem `json:"items" validate:"dive"`
}

// IsLive reports whether the order still belongs on the kitchen queue.
func (o Order) IsLive() bool {
	return o.Status == StatusPending || o.Status == StatusPreparing || o.Status == StatusReady
}

type OrderFilter struct {
	Customer_id string
	Status      string
	From        *time.Time
	To          *time.Time
	Ascending   bool
}

const (
	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// OrderChange is one push notification from a live order subscription.
type OrderChange struct {
	Operation string
	Order_id  string
	Order     *Order
}
