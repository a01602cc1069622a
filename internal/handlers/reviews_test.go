package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopshere/internal/models"
)

func TestAverageRatingEmptyReviews(t *testing.T) {
	if got := averageRating(nil); got != 0 {
		t.Fatalf("expected 0 for empty reviews, got %v", got)
	}
}

func TestAverageRatingMean(t *testing.T) {
	reviews := []models.Review{
		{Rating: 5},
		{Rating: 4},
		{Rating: 3},
	}
	if got := averageRating(reviews); got != 4 {
		t.Fatalf("expected mean 4, got %v", got)
	}
}

func TestUpsertReviewReplacesExisting(t *testing.T) {
	userID := primitive.NewObjectID()
	reviews := []models.Review{
		{User: userID, Name: "A", Rating: 2, Comment: "meh"},
		{User: primitive.NewObjectID(), Name: "B", Rating: 5, Comment: "great"},
	}

	updated := upsertReview(reviews, models.Review{User: userID, Name: "A", Rating: 4, Comment: "better now"})
	if len(updated) != 2 {
		t.Fatalf("expected 2 reviews after replace, got %d", len(updated))
	}
	if updated[0].Rating != 4 || updated[0].Comment != "better now" {
		t.Fatalf("expected existing review to be replaced, got %+v", updated[0])
	}
}

func TestUpsertReviewAppendsNew(t *testing.T) {
	reviews := []models.Review{
		{User: primitive.NewObjectID(), Rating: 3},
	}

	updated := upsertReview(reviews, models.Review{User: primitive.NewObjectID(), Rating: 5})
	if len(updated) != 2 {
		t.Fatalf("expected 2 reviews after append, got %d", len(updated))
	}
}

func TestRemoveReviewRecomputesToZero(t *testing.T) {
	userID := primitive.NewObjectID()
	reviews := []models.Review{{User: userID, Rating: 5}}

	remaining := removeReview(reviews, userID)
	if len(remaining) != 0 {
		t.Fatalf("expected no reviews left, got %d", len(remaining))
	}
	if got := averageRating(remaining); got != 0 {
		t.Fatalf("expected ratings 0 with no reviews, got %v", got)
	}
}

func TestRemoveReviewKeepsOthers(t *testing.T) {
	target := primitive.NewObjectID()
	other := primitive.NewObjectID()
	reviews := []models.Review{
		{User: target, Rating: 1},
		{User: other, Rating: 5},
	}

	remaining := removeReview(reviews, target)
	if len(remaining) != 1 || remaining[0].User != other {
		t.Fatalf("expected only the other user's review to remain, got %+v", remaining)
	}
	if got := averageRating(remaining); got != 5 {
		t.Fatalf("expected average 5 after removal, got %v", got)
	}
}
