package handlers

import (
	"encoding/json"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopshere/internal/models"
)

func TestSummarizeOrdersEmpty(t *testing.T) {
	summary := summarizeOrders(nil)
	if summary.TotalOrders != 0 || summary.TotalRevenue != 0 || summary.Delivered != 0 || summary.Pending != 0 {
		t.Fatalf("expected zeroed summary, got %+v", summary)
	}
}

func TestSummarizeOrders(t *testing.T) {
	orders := []models.Order{
		{TotalAmount: 100, IsDelivered: true},
		{TotalAmount: 250, IsDelivered: false},
		{TotalAmount: 50, IsDelivered: true},
	}

	summary := summarizeOrders(orders)
	if summary.TotalOrders != 3 {
		t.Fatalf("expected 3 orders, got %d", summary.TotalOrders)
	}
	if summary.TotalRevenue != 400 {
		t.Fatalf("expected revenue 400, got %v", summary.TotalRevenue)
	}
	if summary.Delivered != 2 || summary.Pending != 1 {
		t.Fatalf("expected delivered=2 pending=1, got %+v", summary)
	}
}

func TestAdminOrderJSONOverridesUserField(t *testing.T) {
	view := AdminOrder{
		Order: models.Order{
			UserID:      primitive.NewObjectID(),
			TotalAmount: 99,
		},
		User: OrderUserSummary{ID: "abc", Name: "Test User", Email: "test@example.com"},
	}

	body, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	jsonBody := string(body)
	if !strings.Contains(jsonBody, `"user":{"id":"abc"`) {
		t.Fatalf("expected populated user summary in json, got %s", jsonBody)
	}
}
