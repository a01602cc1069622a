package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildProductFilterEmpty(t *testing.T) {
	filter := buildProductFilter("", "", "", "")
	if len(filter) != 0 {
		t.Fatalf("expected empty filter, got %+v", filter)
	}
}

func TestBuildProductFilterIgnoresAllCategory(t *testing.T) {
	filter := buildProductFilter("All", "", "", "")
	if _, ok := filter["category"]; ok {
		t.Fatalf(`expected "All" category to be ignored, got %+v`, filter)
	}
}

func TestBuildProductFilterCategoryAndRatings(t *testing.T) {
	filter := buildProductFilter("Shoes", "4", "", "")

	if filter["category"] != "Shoes" {
		t.Fatalf("expected category filter Shoes, got %+v", filter)
	}

	ratings, ok := filter["ratings"].(bson.M)
	if !ok || ratings["$gte"] != 4.0 {
		t.Fatalf("expected ratings $gte 4, got %+v", filter["ratings"])
	}
}

func TestBuildProductFilterPriceCeiling(t *testing.T) {
	filter := buildProductFilter("", "", "1500", "")

	price, ok := filter["price"].(bson.M)
	if !ok || price["$lte"] != 1500.0 {
		t.Fatalf("expected price $lte 1500, got %+v", filter["price"])
	}
}

func TestBuildProductFilterSearchRegex(t *testing.T) {
	filter := buildProductFilter("", "", "", "sneaker")

	name, ok := filter["name"].(bson.M)
	if !ok || name["$regex"] != "sneaker" || name["$options"] != "i" {
		t.Fatalf("expected case-insensitive name regex, got %+v", filter["name"])
	}
}

func TestBuildProductFilterIgnoresNonPositiveValues(t *testing.T) {
	filter := buildProductFilter("", "0", "-5", "")
	if _, ok := filter["ratings"]; ok {
		t.Fatalf("expected ratings=0 to be ignored, got %+v", filter)
	}
	if _, ok := filter["price"]; ok {
		t.Fatalf("expected negative price to be ignored, got %+v", filter)
	}
}

func TestParsePaginationParamsDefaults(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != 1 || limit != 8 {
		t.Fatalf("expected defaults page=1 limit=8, got page=%d limit=%d", page, limit)
	}
}

func TestParsePaginationParamsInvalid(t *testing.T) {
	if _, _, err := parsePaginationParams("0", "8"); err == nil {
		t.Fatal("expected error for page=0")
	}
	if _, _, err := parsePaginationParams("1", "abc"); err == nil {
		t.Fatal("expected error for non-numeric limit")
	}
}
