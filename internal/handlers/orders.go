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

	"shopshere/internal/middleware"
	"shopshere/internal/models"
	"shopshere/internal/payments"
)

type CreateOrderItemRequest struct {
	Product  string  `json:"product" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"required"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity" binding:"required"`
}

type CreateOrderRequest struct {
	Items             []CreateOrderItemRequest `json:"items" binding:"required"`
	ShippingAddress   models.ShippingAddress   `json:"shippingAddress" binding:"required"`
	TotalAmount       float64                  `json:"totalAmount" binding:"required"`
	RazorpayOrderID   string                   `json:"razorpayOrderId"`
	RazorpayPaymentID string                   `json:"razorpayPaymentId"`
	RazorpaySignature string                   `json:"razorpaySignature"`
}

type VerifyPaymentRequest struct {
	OrderID           string `json:"orderId" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// OrderUserSummary is the populated user shape on admin order views.
type OrderUserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AdminOrder overrides the order's user reference with the populated summary.
type AdminOrder struct {
	models.Order
	User OrderUserSummary `json:"user"`
}

// OrderAnalytics summarizes paid orders for the admin dashboard.
type OrderAnalytics struct {
	TotalOrders  int     `json:"totalOrders"`
	TotalRevenue float64 `json:"totalRevenue"`
	Delivered    int     `json:"delivered"`
	Pending      int     `json:"pending"`
}

func summarizeOrders(orders []models.Order) OrderAnalytics {
	summary := OrderAnalytics{TotalOrders: len(orders)}
	for _, order := range orders {
		summary.TotalRevenue += order.TotalAmount
		if order.IsDelivered {
			summary.Delivered++
		}
	}
	summary.Pending = summary.TotalOrders - summary.Delivered
	return summary
}

// CreateOrder snapshots the client-supplied cart into an order document and
// clears the caller's cart. paymentStatus is inferred from whether a gateway
// payment id was already supplied.
func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "items, shippingAddress and totalAmount are required")
			return
		}

		items := make([]models.OrderItem, 0, len(req.Items))
		for _, item := range req.Items {
			productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.Product))
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
				return
			}
			if item.Quantity <= 0 {
				respondWithError(c, http.StatusBadRequest, route, "quantity must be greater than zero")
				return
			}
			items = append(items, models.OrderItem{
				ProductID: productID,
				Name:      item.Name,
				Price:     item.Price,
				Image:     item.Image,
				Quantity:  item.Quantity,
			})
		}

		order := models.Order{
			UserID:            user.ID,
			Items:             items,
			ShippingAddress:   req.ShippingAddress,
			TotalAmount:       req.TotalAmount,
			PaymentStatus:     models.PaymentStatusPending,
			RazorpayOrderID:   req.RazorpayOrderID,
			RazorpayPaymentID: req.RazorpayPaymentID,
			RazorpaySignature: req.RazorpaySignature,
			CreatedAt:         time.Now(),
		}
		if req.RazorpayPaymentID != "" {
			now := time.Now()
			order.PaymentStatus = models.PaymentStatusPaid
			order.PaidAt = &now
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			log.Println("[ORDER] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Failed to create order")
			return
		}
		order.ID = insertedObjectID(res)

		// cart is emptied after the order snapshot is taken
		_, _ = db.Collection("carts").UpdateOne(ctx, bson.M{"userId": user.ID}, bson.M{
			"$set": bson.M{"items": []models.CartItem{}, "updatedAt": time.Now()},
		})

		log.Println("[ORDER] [INFO] order created for user:", user.ID.Hex())
		c.JSON(http.StatusCreated, order)
	}
}

func GetUserOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/mine"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": user.ID}, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to fetch user orders")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to fetch user orders")
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		filter := bson.M{}
		if delivered := strings.TrimSpace(c.Query("delivered")); delivered != "" {
			filter["isDelivered"] = delivered == "true"
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to fetch all orders")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to fetch all orders")
			return
		}

		populated, err := populateOrderUsers(c, db, orders)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to fetch all orders")
			return
		}

		c.JSON(http.StatusOK, populated)
	}
}

func GetOrderByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/admin/:id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid order ID")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to fetch order details")
			return
		}

		populated, err := populateOrderUsers(c, db, []models.Order{order})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to fetch order details")
			return
		}

		c.JSON(http.StatusOK, populated[0])
	}
}

func MarkAsDelivered(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/deliver"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid order ID")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
			"$set": bson.M{"isDelivered": true, "deliveredAt": time.Now()},
		})
		if err != nil {
			log.Println("[ORDER] [ERROR] deliver update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Failed to mark as delivered")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "Order not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Marked as delivered"})
	}
}

func GetAnalytics(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/admin/analytics"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx, bson.M{"paymentStatus": models.PaymentStatusPaid})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to get analytics")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to get analytics")
			return
		}

		c.JSON(http.StatusOK, summarizeOrders(orders))
	}
}

// VerifyOrderPayment checks the gateway signature and, on match, walks the
// order's items decrementing stock (floored at zero) before marking the
// order paid. The decrement-then-save sequence carries no compensation; a
// crash in between leaves stock decremented with the order still pending.
func VerifyOrderPayment(db *mongo.Database, gateway *payments.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders/verify"
		defer handlePanic(c, route)

		var req VerifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		if !gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
			log.Println("[ORDER] [WARN] signature mismatch for order:", req.OrderID)
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid signature"})
			return
		}

		orderID, err := primitive.ObjectIDFromHex(req.OrderID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid order ID")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Payment verification failed")
			return
		}

		for _, item := range order.Items {
			var product models.Product
			if err := db.Collection("products").FindOne(ctx, bson.M{"_id": item.ProductID}).Decode(&product); err != nil {
				continue
			}

			newStock := product.Stock - item.Quantity
			if newStock < 0 {
				newStock = 0
			}

			_, err := db.Collection("products").UpdateByID(ctx, product.ID, bson.M{
				"$set": bson.M{"stock": newStock, "updatedAt": time.Now()},
			})
			if err != nil {
				log.Println("[ORDER] [ERROR] stock decrement failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "Payment verification failed")
				return
			}
		}

		now := time.Now()
		_, err = db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
			"$set": bson.M{
				"razorpayOrderId":   req.RazorpayOrderID,
				"razorpayPaymentId": req.RazorpayPaymentID,
				"razorpaySignature": req.RazorpaySignature,
				"paymentStatus":     models.PaymentStatusPaid,
				"paidAt":            now,
			},
		})
		if err != nil {
			log.Println("[ORDER] [ERROR] payment save failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Payment verification failed")
			return
		}

		log.Println("[ORDER] [INFO] payment verified for order:", orderID.Hex())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment verified, order updated, and stock adjusted"})
	}
}

func populateOrderUsers(c *gin.Context, db *mongo.Database, orders []models.Order) ([]AdminOrder, error) {
	ids := make([]primitive.ObjectID, 0, len(orders))
	seen := make(map[primitive.ObjectID]struct{}, len(orders))
	for _, order := range orders {
		if _, ok := seen[order.UserID]; ok {
			continue
		}
		seen[order.UserID] = struct{}{}
		ids = append(ids, order.UserID)
	}

	users := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) > 0 {
		cursor, err := db.Collection("users").Find(c.Request.Context(), bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(c.Request.Context())

		for cursor.Next(c.Request.Context()) {
			var user models.User
			if err := cursor.Decode(&user); err != nil {
				return nil, err
			}
			users[user.ID] = user
		}
		if err := cursor.Err(); err != nil {
			return nil, err
		}
	}

	populated := make([]AdminOrder, 0, len(orders))
	for _, order := range orders {
		view := AdminOrder{Order: order}
		if user, ok := users[order.UserID]; ok {
			view.User = OrderUserSummary{ID: user.ID.Hex(), Name: user.Name, Email: user.Email}
		}
		populated = append(populated, view)
	}
	return populated, nil
}
