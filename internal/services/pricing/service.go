package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/carbsfoods/penny-carbs-7/internal/database"
	"github.com/carbsfoods/penny-carbs-7/internal/logger"
	"github.com/carbsfoods/penny-carbs-7/internal/models"
)

// ErrNoOffers means no cook currently offers the dish
var ErrNoOffers = errors.New("no offers for dish")

// Repository lists the available offers for a dish
type Repository interface {
	ListDishOffers(ctx context.Context, foodItemID string) ([]models.DishOffer, error)
}

// PostgresRepository implements Repository against the PostgreSQL pool
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a PostgreSQL-backed repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListDishOffers(ctx context.Context, foodItemID string) ([]models.DishOffer, error) {
	rows, err := r.db.Query(ctx, database.ListDishOffersSQL, foodItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dish offers: %w", err)
	}
	defer rows.Close()

	var offers []models.DishOffer
	for rows.Next() {
		var o models.DishOffer
		if err := rows.Scan(&o.ID, &o.FoodItemID, &o.FoodName, &o.CookID, &o.Price); err != nil {
			return nil, fmt.Errorf("failed to scan dish offer: %w", err)
		}
		offers = append(offers, o)
	}

	return offers, rows.Err()
}

// Service selects dish offers for customers
type Service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService creates a new pricing service
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log,
	}
}

// GetCheapestOffer returns the lowest-priced available offer for a dish. The
// offer sets are small, so the minimum is selected here rather than in SQL.
func (s *Service) GetCheapestOffer(ctx context.Context, foodItemID, requestID string) (*models.DishOffer, error) {
	offers, err := s.repo.ListDishOffers(ctx, foodItemID)
	if err != nil {
		s.logger.Error("offers_query_failed", "Failed to list dish offers", requestID, err, map[string]interface{}{
			"food_item_id": foodItemID,
		})
		return nil, err
	}
	if len(offers) == 0 {
		return nil, ErrNoOffers
	}

	cheapest := offers[0]
	for _, o := range offers[1:] {
		if o.Price < cheapest.Price {
			cheapest = o
		}
	}
	return &cheapest, nil
}
