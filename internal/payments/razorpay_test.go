package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAccepts(t *testing.T) {
	secret := "test-secret"
	signature := sign(secret, "order_123", "pay_456")

	if !VerifySignature(secret, "order_123", "pay_456", signature) {
		t.Fatal("expected matching signature to be accepted")
	}
}

func TestVerifySignatureRejectsMismatch(t *testing.T) {
	secret := "test-secret"
	signature := sign(secret, "order_123", "pay_456")

	if VerifySignature(secret, "order_999", "pay_456", signature) {
		t.Fatal("expected signature for a different order to be rejected")
	}
	if VerifySignature("other-secret", "order_123", "pay_456", signature) {
		t.Fatal("expected signature under a different secret to be rejected")
	}
	if VerifySignature(secret, "order_123", "pay_456", "deadbeef") {
		t.Fatal("expected bogus signature to be rejected")
	}
}

func TestVerifySignatureRejectsEmpty(t *testing.T) {
	if VerifySignature("test-secret", "order_123", "pay_456", "") {
		t.Fatal("expected empty signature to be rejected")
	}
}
