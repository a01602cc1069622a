package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopshere/internal/models"
)

func TestReconcileCartItemsDropsMissingProduct(t *testing.T) {
	gone := primitive.NewObjectID()
	items := []models.CartItem{{ProductID: gone, Quantity: 2}}

	kept, modified := reconcileCartItems(items, map[primitive.ObjectID]models.Product{})
	if !modified {
		t.Fatal("expected cart to be modified when a product vanished")
	}
	if len(kept) != 0 {
		t.Fatalf("expected vanished product to be dropped, got %+v", kept)
	}
}

func TestReconcileCartItemsDropsZeroStock(t *testing.T) {
	productID := primitive.NewObjectID()
	items := []models.CartItem{{ProductID: productID, Quantity: 1}}
	products := map[primitive.ObjectID]models.Product{
		productID: {ID: productID, Stock: 0},
	}

	kept, modified := reconcileCartItems(items, products)
	if !modified || len(kept) != 0 {
		t.Fatalf("expected zero-stock item to be dropped, got modified=%v kept=%+v", modified, kept)
	}
}

func TestReconcileCartItemsClampsQuantity(t *testing.T) {
	productID := primitive.NewObjectID()
	items := []models.CartItem{{ProductID: productID, Quantity: 10}}
	products := map[primitive.ObjectID]models.Product{
		productID: {ID: productID, Stock: 3},
	}

	kept, modified := reconcileCartItems(items, products)
	if !modified {
		t.Fatal("expected cart to be modified when quantity exceeds stock")
	}
	if len(kept) != 1 || kept[0].Quantity != 3 {
		t.Fatalf("expected quantity clamped to 3, got %+v", kept)
	}
}

func TestReconcileCartItemsUnchangedWhenConsistent(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	items := []models.CartItem{
		{ProductID: first, Quantity: 2},
		{ProductID: second, Quantity: 1},
	}
	products := map[primitive.ObjectID]models.Product{
		first:  {ID: first, Stock: 5},
		second: {ID: second, Stock: 1},
	}

	kept, modified := reconcileCartItems(items, products)
	if modified {
		t.Fatal("expected no modification for a consistent cart")
	}
	if len(kept) != 2 || kept[0].Quantity != 2 || kept[1].Quantity != 1 {
		t.Fatalf("expected items untouched, got %+v", kept)
	}
}
