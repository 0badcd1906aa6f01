package earnings

import (
	"context"
	"fmt"

	"github.com/carbsfoods/penny-carbs-7/internal/database"
	"github.com/carbsfoods/penny-carbs-7/internal/logger"
	"github.com/carbsfoods/penny-carbs-7/internal/models"
)

// Repository lists the line-item totals a cook earned on delivered orders
type Repository interface {
	ListDeliveredLineItems(ctx context.Context, cookID string) ([]DeliveredLineItem, error)
}

// DeliveredLineItem is one earned line-item amount with its order context
type DeliveredLineItem struct {
	OrderID     string
	OrderNumber string
	Amount      float64
}

// PostgresRepository implements Repository against the PostgreSQL pool
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a PostgreSQL-backed repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListDeliveredLineItems(ctx context.Context, cookID string) ([]DeliveredLineItem, error) {
	rows, err := r.db.Query(ctx, database.ListDeliveredLineItemsSQL, cookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivered line items: %w", err)
	}
	defer rows.Close()

	var items []DeliveredLineItem
	for rows.Next() {
		var item DeliveredLineItem
		if err := rows.Scan(&item.OrderID, &item.OrderNumber, &item.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan delivered line item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Service computes cook earnings
type Service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService creates a new earnings service
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log,
	}
}

// GetCookEarnings sums what a cook earned across delivered orders. The result
// sets are small, so the reduction happens here rather than in SQL.
func (s *Service) GetCookEarnings(ctx context.Context, cookID, requestID string) (*models.CookEarnings, error) {
	items, err := s.repo.ListDeliveredLineItems(ctx, cookID)
	if err != nil {
		s.logger.Error("earnings_query_failed", "Failed to list delivered line items", requestID, err, map[string]interface{}{
			"cook_id": cookID,
		})
		return nil, err
	}

	earnings := &models.CookEarnings{
		CookID: cookID,
		Orders: []models.OrderEarnings{},
	}

	byOrder := make(map[string]int)
	for _, item := range items {
		earnings.Total += item.Amount
		if idx, ok := byOrder[item.OrderID]; ok {
			earnings.Orders[idx].Amount += item.Amount
			continue
		}
		byOrder[item.OrderID] = len(earnings.Orders)
		earnings.Orders = append(earnings.Orders, models.OrderEarnings{
			OrderID:     item.OrderID,
			OrderNumber: item.OrderNumber,
			Amount:      item.Amount,
		})
	}

	return earnings, nil
}
