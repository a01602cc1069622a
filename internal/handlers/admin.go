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
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopshere/internal/models"
)

type UpdateUserRequest struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

func GetAllUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/users"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection("users").Find(ctx, bson.M{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to fetch users")
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to fetch users")
			return
		}

		c.JSON(http.StatusOK, gin.H{"users": users, "total": len(users)})
	}
}

func GetUserByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/users/:id"
		defer handlePanic(c, route)

		userID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid user ID")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var user models.User
		err = db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Error fetching user")
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

func UpdateUserByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/users/:id"
		defer handlePanic(c, route)

		userID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid user ID")
			return
		}

		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		update := bson.M{"updatedAt": time.Now()}
		if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
			update["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Role != nil {
			role := strings.TrimSpace(*req.Role)
			if role != models.RoleUser && role != models.RoleAdmin {
				respondWithError(c, http.StatusBadRequest, route, "invalid role")
				return
			}
			update["role"] = role
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var user models.User
		err = db.Collection("users").FindOneAndUpdate(
			ctx,
			bson.M{"_id": userID},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&user)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}
		if err != nil {
			log.Println("[ADMIN] [ERROR] user update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Failed to update user")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "User updated", "user": user})
	}
}

func DeleteUserByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/users/:id"
		defer handlePanic(c, route)

		userID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid user ID")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("users").DeleteOne(ctx, bson.M{"_id": userID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to delete user")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}
