package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopshere/internal/payments"
)

type CreatePaymentOrderRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

type VerifySignatureRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// CreatePaymentOrder registers an order with the payment gateway and relays
// the gateway's response to the client for checkout.
func CreatePaymentOrder(gateway *payments.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/payment/razorpay"
		defer handlePanic(c, route)

		var req CreatePaymentOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "amount is required")
			return
		}

		order, err := gateway.CreateOrder(req.Amount)
		if err != nil {
			log.Println("[PAYMENT] [ERROR] gateway order creation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Failed to create Razorpay order")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// VerifyPaymentSignature is the stateless signature check; it mutates
// nothing. Order state changes go through /api/orders/verify.
func VerifyPaymentSignature(gateway *payments.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/payment/verify"
		defer handlePanic(c, route)

		var req VerifySignatureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		if !gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid signature"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
