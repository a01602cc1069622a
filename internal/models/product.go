package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image is a single uploaded product image hosted on cloudinary.
type Image struct {
	PublicID string `bson:"publicId" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

// Review is embedded in its product document. Name is a snapshot of the
// reviewer's name at submission time.
type Review struct {
	User    primitive.ObjectID `bson:"user" json:"user"`
	Name    string             `bson:"name" json:"name"`
	Rating  float64            `bson:"rating" json:"rating"`
	Comment string             `bson:"comment" json:"comment"`
}

// Product carries its reviews embedded, with Ratings kept as the denormalized
// mean of the embedded ratings.
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	Price        float64            `bson:"price" json:"price"`
	Ratings      float64            `bson:"ratings" json:"ratings"`
	Images       []Image            `bson:"images" json:"images"`
	Category     string             `bson:"category" json:"category"`
	Stock        int                `bson:"stock" json:"stock"`
	NumOfReviews int                `bson:"numOfReviews" json:"numOfReviews"`
	Reviews      []Review           `bson:"reviews" json:"reviews"`
	User         primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
