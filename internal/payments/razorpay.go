package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
)

// Gateway wraps the razorpay client for order creation and signature checks.
type Gateway struct {
	client *razorpay.Client
	secret string
}

func NewGateway(keyID, keySecret string) *Gateway {
	return &Gateway{
		client: razorpay.NewClient(keyID, keySecret),
		secret: keySecret,
	}
}

// CreateOrder registers an order with the gateway. Amount is in rupees and
// converted to paise as the gateway expects.
func (g *Gateway) CreateOrder(amount float64) (map[string]interface{}, error) {
	data := map[string]interface{}{
		"amount":   int64(amount * 100),
		"currency": "INR",
		"receipt":  fmt.Sprintf("order_rcpt_%s", uuid.NewString()),
	}
	return g.client.Order.Create(data, nil)
}

// VerifySignature recomputes the gateway signature over orderID|paymentID and
// compares it to the supplied value in constant time.
func (g *Gateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(g.secret, orderID, paymentID, signature)
}

func VerifySignature(secret, orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
