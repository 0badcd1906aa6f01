package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/carbsfoods/penny-carbs-7/internal/logger"
	"github.com/carbsfoods/penny-carbs-7/internal/models"
)

type fakeRepository struct {
	offers []models.DishOffer
	err    error
}

func (f *fakeRepository) ListDishOffers(_ context.Context, foodItemID string) ([]models.DishOffer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.offers, nil
}

func TestGetCheapestOffer(t *testing.T) {
	repo := &fakeRepository{
		offers: []models.DishOffer{
			{ID: "of-1", FoodItemID: "dish-1", CookID: "cook-1", Price: 14.00},
			{ID: "of-2", FoodItemID: "dish-1", CookID: "cook-2", Price: 9.50},
			{ID: "of-3", FoodItemID: "dish-1", CookID: "cook-3", Price: 11.75},
		},
	}
	svc := NewService(repo, logger.New("test"))

	offer, err := svc.GetCheapestOffer(context.Background(), "dish-1", "req-1")
	if err != nil {
		t.Fatalf("GetCheapestOffer returned error: %v", err)
	}
	if offer.ID != "of-2" || offer.Price != 9.50 {
		t.Errorf("expected cheapest offer of-2 at 9.50, got %+v", offer)
	}
}

func TestGetCheapestOffer_NoOffers(t *testing.T) {
	svc := NewService(&fakeRepository{}, logger.New("test"))

	if _, err := svc.GetCheapestOffer(context.Background(), "dish-1", "req-1"); !errors.Is(err, ErrNoOffers) {
		t.Fatalf("expected ErrNoOffers, got %v", err)
	}
}

func TestGetCheapestOffer_QueryFailure(t *testing.T) {
	svc := NewService(&fakeRepository{err: errors.New("db down")}, logger.New("test"))

	if _, err := svc.GetCheapestOffer(context.Background(), "dish-1", "req-1"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
