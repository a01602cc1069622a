package handlers

import (
	"context"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopshere/internal/middleware"
	"shopshere/internal/models"
	"shopshere/internal/storage"
)

const maxProductImages = 5

// buildProductFilter translates catalog query params into a mongo filter.
// "All" is the client's sentinel for no category filter.
func buildProductFilter(category, ratings, price, search string) bson.M {
	filter := bson.M{}

	if category = strings.TrimSpace(category); category != "" && category != "All" {
		filter["category"] = category
	}

	if ratings = strings.TrimSpace(ratings); ratings != "" {
		if value, err := strconv.ParseFloat(ratings, 64); err == nil && value > 0 {
			filter["ratings"] = bson.M{"$gte": value}
		}
	}

	if price = strings.TrimSpace(price); price != "" {
		if value, err := strconv.ParseFloat(price, 64); err == nil && value > 0 {
			filter["price"] = bson.M{"$lte": value}
		}
	}

	if search = strings.TrimSpace(search); search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	return filter
}

func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := buildProductFilter(
			c.Query("category"),
			c.Query("ratings"),
			c.Query("price"),
			c.Query("search"),
		)

		findOptions := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to fetch products")
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to fetch products")
			return
		}

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to fetch products")
			return
		}

		log.Printf("[%s] returning %d of %d products", route, len(products), total)
		c.JSON(http.StatusOK, gin.H{"products": products, "total": total})
	}
}

// GetAdminProducts lists the full catalog without pagination for the admin
// panel tables.
func GetAdminProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/admin"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, bson.M{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to fetch products")
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to fetch products")
			return
		}

		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func GetProductByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
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
			respondWithError(c, http.StatusInternalServerError, route, "Error getting product")
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

func CreateProduct(db *mongo.Database, images *storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		name := strings.TrimSpace(c.PostForm("name"))
		description := strings.TrimSpace(c.PostForm("description"))
		category := strings.TrimSpace(c.PostForm("category"))
		priceStr := strings.TrimSpace(c.PostForm("price"))
		stockStr := strings.TrimSpace(c.PostForm("stock"))

		if name == "" || description == "" || category == "" || priceStr == "" || stockStr == "" {
			respondWithError(c, http.StatusBadRequest, route, "All fields are required")
			return
		}

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid price")
			return
		}
		stock, err := strconv.Atoi(stockStr)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid stock")
			return
		}

		files, err := imageFiles(c)
		if err != nil || len(files) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "At least one image is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		uploaded, err := uploadProductImages(ctx, images, files)
		if err != nil {
			log.Println("[PRODUCT] [ERROR] image upload failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Failed to create product")
			return
		}

		now := time.Now()
		product := models.Product{
			Name:        name,
			Description: description,
			Price:       price,
			Category:    category,
			Stock:       stock,
			Images:      uploaded,
			Reviews:     []models.Review{},
			User:        user.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			log.Println("[PRODUCT] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Failed to create product")
			return
		}
		product.ID = insertedObjectID(res)

		log.Println("[PRODUCT] [INFO] product created:", product.Name)
		c.JSON(http.StatusCreated, product)
	}
}

func UpdateProduct(db *mongo.Database, images *storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to update product")
			return
		}

		update := bson.M{"updatedAt": time.Now()}

		if value, ok := c.GetPostForm("name"); ok && strings.TrimSpace(value) != "" {
			update["name"] = strings.TrimSpace(value)
		}
		if value, ok := c.GetPostForm("description"); ok && strings.TrimSpace(value) != "" {
			update["description"] = strings.TrimSpace(value)
		}
		if value, ok := c.GetPostForm("category"); ok && strings.TrimSpace(value) != "" {
			update["category"] = strings.TrimSpace(value)
		}
		if value, ok := c.GetPostForm("price"); ok && strings.TrimSpace(value) != "" {
			price, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "Invalid price")
				return
			}
			update["price"] = price
		}
		if value, ok := c.GetPostForm("stock"); ok && strings.TrimSpace(value) != "" {
			stock, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "Invalid stock")
				return
			}
			update["stock"] = stock
		}

		files, err := imageFiles(c)
		if err == nil && len(files) > 0 {
			uploaded, uploadErr := uploadProductImages(ctx, images, files)
			if uploadErr != nil {
				log.Println("[PRODUCT] [ERROR] image upload failed:", uploadErr)
				respondWithError(c, http.StatusInternalServerError, route, "Failed to update product")
				return
			}

			// new uploads replace the whole image set
			for _, old := range product.Images {
				images.Destroy(ctx, old.PublicID)
			}
			update["images"] = uploaded
		}

		if err := db.Collection("products").FindOneAndUpdate(
			ctx,
			bson.M{"_id": productID},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&product); err != nil {
			log.Println("[PRODUCT] [ERROR] update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Failed to update product")
			return
		}

		log.Println("[PRODUCT] [INFO] product updated:", product.ID.Hex())
		c.JSON(http.StatusOK, product)
	}
}

func DeleteProduct(db *mongo.Database, images *storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOneAndDelete(ctx, bson.M{"_id": productID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Failed to delete product")
			return
		}

		for _, image := range product.Images {
			images.Destroy(ctx, image.PublicID)
		}

		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}

func imageFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	files := form.File["images"]
	if len(files) > maxProductImages {
		files = files[:maxProductImages]
	}
	return files, nil
}

func uploadProductImages(ctx context.Context, store *storage.ImageStore, files []*multipart.FileHeader) ([]models.Image, error) {
	uploaded := make([]models.Image, 0, len(files))

	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}

		result, err := store.Upload(ctx, file)
		file.Close()
		if err != nil {
			return nil, err
		}

		uploaded = append(uploaded, models.Image{PublicID: result.PublicID, URL: result.URL})
	}

	return uploaded, nil
}
