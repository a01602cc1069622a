package handlers

import (
	"context"
	"fmt"
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

type CartItemRequest struct {
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity"`
}

type RemoveCartItemRequest struct {
	Product string `json:"product" binding:"required"`
}

// reconcileCartItems drops items whose product vanished or ran out of stock
// and clamps quantities to what is currently available. The returned flag
// reports whether the cart needs to be persisted again.
func reconcileCartItems(items []models.CartItem, products map[primitive.ObjectID]models.Product) ([]models.CartItem, bool) {
	kept := make([]models.CartItem, 0, len(items))
	modified := false

	for _, item := range items {
		product, exists := products[item.ProductID]
		if !exists || product.Stock == 0 {
			modified = true
			continue
		}

		if item.Quantity > product.Stock {
			item.Quantity = product.Stock
			modified = true
		}

		kept = append(kept, item)
	}

	return kept, modified
}

func loadCartProducts(ctx context.Context, db *mongo.Database, items []models.CartItem) (map[primitive.ObjectID]models.Product, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var product models.Product
		if err := cursor.Decode(&product); err != nil {
			return nil, err
		}
		products[product.ID] = product
	}

	return products, cursor.Err()
}

func populateCart(cart models.Cart, products map[primitive.ObjectID]models.Product) gin.H {
	items := make([]models.PopulatedCartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, exists := products[item.ProductID]
		populated := models.PopulatedCartItem{Quantity: item.Quantity}
		if exists {
			populated.Product = &product
		}
		items = append(items, populated)
	}

	return gin.H{
		"id":        cart.ID.Hex(),
		"user":      cart.UserID.Hex(),
		"items":     items,
		"createdAt": cart.CreatedAt,
		"updatedAt": cart.UpdatedAt,
	}
}

func respondPopulatedCart(c *gin.Context, ctx context.Context, db *mongo.Database, route string, userID primitive.ObjectID) {
	var cart models.Cart
	if err := db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart); err != nil {
		respondWithError(c, http.StatusInternalServerError, route, "db error")
		return
	}

	products, err := loadCartProducts(ctx, db, cart.Items)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, route, "db error")
		return
	}

	c.JSON(http.StatusOK, populateCart(cart, products))
}

// GetCart reconciles the stored cart against live product stock on every
// read. The read-then-write pair is deliberately unguarded; the final write
// relies on the store's per-document atomicity alone.
func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/cart"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var cart models.Cart
		err := db.Collection("carts").FindOne(ctx, bson.M{"userId": user.ID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusOK, gin.H{"items": []models.PopulatedCartItem{}})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		products, err := loadCartProducts(ctx, db, cart.Items)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		items, modified := reconcileCartItems(cart.Items, products)
		if modified {
			_, err := db.Collection("carts").UpdateByID(ctx, cart.ID, bson.M{
				"$set": bson.M{"items": items, "updatedAt": time.Now()},
			})
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			log.Printf("[%s] cart reconciled for user %s", route, user.ID.Hex())
			respondPopulatedCart(c, ctx, db, route, user.ID)
			return
		}

		c.JSON(http.StatusOK, populateCart(cart, products))
	}
}

func AddToCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		var req CartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "product and quantity are required")
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.Product))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if product.Stock == 0 {
			respondWithError(c, http.StatusBadRequest, route, "Product is out of stock")
			return
		}
		if req.Quantity > product.Stock {
			respondWithError(c, http.StatusBadRequest, route, fmt.Sprintf("Only %d in stock", product.Stock))
			return
		}

		var cart models.Cart
		err = db.Collection("carts").FindOne(ctx, bson.M{"userId": user.ID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			now := time.Now()
			cart = models.Cart{
				UserID:    user.ID,
				Items:     []models.CartItem{{ProductID: productID, Quantity: req.Quantity}},
				CreatedAt: now,
				UpdatedAt: now,
			}
			if _, err := db.Collection("carts").InsertOne(ctx, cart); err != nil {
				log.Println("[CART] [ERROR] insert failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			respondPopulatedCart(c, ctx, db, route, user.ID)
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		found := false
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				newQty := cart.Items[i].Quantity + req.Quantity
				if newQty > product.Stock {
					respondWithError(c, http.StatusBadRequest, route, fmt.Sprintf("Only %d in stock", product.Stock))
					return
				}
				cart.Items[i].Quantity = newQty
				found = true
				break
			}
		}
		if !found {
			cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: req.Quantity})
		}

		_, err = db.Collection("carts").UpdateByID(ctx, cart.ID, bson.M{
			"$set": bson.M{"items": cart.Items, "updatedAt": time.Now()},
		})
		if err != nil {
			log.Println("[CART] [ERROR] update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondPopulatedCart(c, ctx, db, route, user.ID)
	}
}

func UpdateCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/cart"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		var req CartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "product and quantity are required")
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.Product))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusBadRequest, route, "Product no longer exists")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if product.Stock == 0 {
			respondWithError(c, http.StatusBadRequest, route, "Product is out of stock")
			return
		}
		if req.Quantity > product.Stock {
			respondWithError(c, http.StatusBadRequest, route, fmt.Sprintf("Only %d in stock", product.Stock))
			return
		}

		var cart models.Cart
		err = db.Collection("carts").FindOne(ctx, bson.M{"userId": user.ID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Cart not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				cart.Items[i].Quantity = req.Quantity
				break
			}
		}

		_, err = db.Collection("carts").UpdateByID(ctx, cart.ID, bson.M{
			"$set": bson.M{"items": cart.Items, "updatedAt": time.Now()},
		})
		if err != nil {
			log.Println("[CART] [ERROR] update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondPopulatedCart(c, ctx, db, route, user.ID)
	}
}

func RemoveFromCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		var req RemoveCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "product is required")
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.Product))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var cart models.Cart
		err = db.Collection("carts").FindOne(ctx, bson.M{"userId": user.ID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Cart not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		kept := make([]models.CartItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}

		_, err = db.Collection("carts").UpdateByID(ctx, cart.ID, bson.M{
			"$set": bson.M{"items": kept, "updatedAt": time.Now()},
		})
		if err != nil {
			log.Println("[CART] [ERROR] remove failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondPopulatedCart(c, ctx, db, route, user.ID)
	}
}

func ClearCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart/clear"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		_, err := db.Collection("carts").UpdateOne(ctx, bson.M{"userId": user.ID}, bson.M{
			"$set": bson.M{"items": []models.CartItem{}, "updatedAt": time.Now()},
		})
		if err != nil {
			log.Println("[CART] [ERROR] clear failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}
