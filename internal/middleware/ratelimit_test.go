package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 1 request per minute with a burst of 2: the third call must be rejected
	limiter := NewRateLimiter(1, 2)

	r := gin.New()
	r.GET("/chat", limiter.Limit(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/chat", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Fatalf("expected first two requests to pass, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request to be rate limited, got %v", statuses)
	}
}

func TestRateLimiterSeparateClients(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(1, 1)

	r := gin.New()
	r.GET("/chat", limiter.Limit(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	first := httptest.NewRecorder()
	reqA := httptest.NewRequest("GET", "/chat", nil)
	reqA.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(first, reqA)

	second := httptest.NewRecorder()
	reqB := httptest.NewRequest("GET", "/chat", nil)
	reqB.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(second, reqB)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected independent budgets per client, got %d and %d", first.Code, second.Code)
	}
}
