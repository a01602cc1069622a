package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shopshere/internal/middleware"
	"shopshere/internal/models"
)

type ReviewRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Rating    float64 `json:"rating" binding:"required"`
	Comment   string  `json:"comment"`
}

// averageRating is the denormalized aggregate stored on the product: the
// arithmetic mean of the embedded ratings, 0 when there are none.
func averageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, review := range reviews {
		sum += review.Rating
	}
	return sum / float64(len(reviews))
}

// upsertReview replaces the caller's existing review in place or appends a
// new one. One review per (product, user).
func upsertReview(reviews []models.Review, review models.Review) []models.Review {
	for i := range reviews {
		if reviews[i].User == review.User {
			reviews[i].Rating = review.Rating
			reviews[i].Comment = review.Comment
			return reviews
		}
	}
	return append(reviews, review)
}

func removeReview(reviews []models.Review, userID primitive.ObjectID) []models.Review {
	kept := make([]models.Review, 0, len(reviews))
	for _, review := range reviews {
		if review.User != userID {
			kept = append(kept, review)
		}
	}
	return kept
}

func CreateOrUpdateReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/reviews"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		var req ReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "productId and rating are required")
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Error submitting review")
			return
		}

		reviews := upsertReview(product.Reviews, models.Review{
			User:    user.ID,
			Name:    user.Name,
			Rating:  req.Rating,
			Comment: req.Comment,
		})

		_, err = db.Collection("products").UpdateByID(ctx, productID, bson.M{
			"$set": bson.M{
				"reviews":      reviews,
				"numOfReviews": len(reviews),
				"ratings":      averageRating(reviews),
				"updatedAt":    time.Now(),
			},
		})
		if err != nil {
			log.Println("[REVIEW] [ERROR] save failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Error submitting review")
			return
		}

		log.Println("[REVIEW] [INFO] review submitted for product:", productID.Hex())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Review submitted"})
	}
}

func DeleteReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/reviews"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Query("productId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Error deleting review")
			return
		}

		reviews := removeReview(product.Reviews, user.ID)

		_, err = db.Collection("products").UpdateByID(ctx, productID, bson.M{
			"$set": bson.M{
				"reviews":      reviews,
				"numOfReviews": len(reviews),
				"ratings":      averageRating(reviews),
				"updatedAt":    time.Now(),
			},
		})
		if err != nil {
			log.Println("[REVIEW] [ERROR] delete failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Error deleting review")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Review deleted"})
	}
}

func GetProductReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reviews/:productId"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Error fetching reviews")
			return
		}

		c.JSON(http.StatusOK, gin.H{"reviews": product.Reviews})
	}
}
