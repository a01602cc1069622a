package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart holds one mutable line-item list per user.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"user"`
	Items     []CartItem         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PopulatedCartItem is the read shape returned to clients, with the live
// product document in place of the reference.
type PopulatedCartItem struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}
