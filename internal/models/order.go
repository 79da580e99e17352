package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Orders are created pending and may only advance to paid;
// nothing ever deletes or demotes them.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// OrderProduct is one cart line frozen into the order at creation time. It is
// a copy of the cart state, not a reference to it: later cart mutations and
// catalog price changes never touch it.
type OrderProduct struct {
	ID       string  `bson:"id" json:"id"`
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Image    string  `bson:"image,omitempty" json:"image,omitempty"`
	Quantity int     `bson:"quantity" json:"quantity"`
}

// Order defines the persisted order document. Products and TotalAmount are
// immutable after insert; only Status transitions, pending to paid.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Ref         string             `bson:"ref" json:"ref"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Products    []OrderProduct     `bson:"products" json:"products"`
	TotalAmount float64            `bson:"totalAmount" json:"totalAmount"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
