package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopshere/internal/models"
)

func TestAuthCookieAttributesLocalhost(t *testing.T) {
	secure, sameSite := authCookieAttributes(true)
	if secure {
		t.Fatal("expected Secure off for a localhost client")
	}
	if sameSite != http.SameSiteLaxMode {
		t.Fatalf("expected SameSite=Lax for a localhost client, got %v", sameSite)
	}
}

func TestAuthCookieAttributesDeployed(t *testing.T) {
	secure, sameSite := authCookieAttributes(false)
	if !secure {
		t.Fatal("expected Secure on for a deployed client")
	}
	if sameSite != http.SameSiteNoneMode {
		t.Fatalf("expected SameSite=None for a deployed client, got %v", sameSite)
	}
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	user := models.User{
		ID:   primitive.NewObjectID(),
		Role: models.RoleAdmin,
	}

	signed, err := generateToken(user, "secret", time.Hour)
	if err != nil {
		t.Fatalf("generateToken failed: %v", err)
	}

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("expected valid token, got err=%v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected map claims")
	}
	if claims["id"] != user.ID.Hex() {
		t.Fatalf("expected id claim %s, got %v", user.ID.Hex(), claims["id"])
	}
	if claims["role"] != models.RoleAdmin {
		t.Fatalf("expected role claim admin, got %v", claims["role"])
	}
}

func TestHashResetTokenDeterministic(t *testing.T) {
	first := hashResetToken("some-token")
	second := hashResetToken("some-token")
	if first != second {
		t.Fatal("expected identical hashes for the same token")
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars of sha256, got %d", len(first))
	}
	if first == hashResetToken("other-token") {
		t.Fatal("expected different tokens to hash differently")
	}
}

func TestGenerateResetTokenUnique(t *testing.T) {
	first, err := generateResetToken()
	if err != nil {
		t.Fatalf("generateResetToken failed: %v", err)
	}
	second, err := generateResetToken()
	if err != nil {
		t.Fatalf("generateResetToken failed: %v", err)
	}
	if first == second {
		t.Fatal("expected random tokens to differ")
	}
	if len(first) != 40 {
		t.Fatalf("expected 40 hex chars for a 20-byte token, got %d", len(first))
	}
}
