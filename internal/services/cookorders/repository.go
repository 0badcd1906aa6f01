package cookorders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/carbsfoods/penny-carbs-7/internal/database"
	"github.com/carbsfoods/penny-carbs-7/internal/models"
)

// Repository is the data access surface the aggregator composes over. Each
// method is one remote call that may fail independently.
type Repository interface {
	ListAssignments(ctx context.Context, cookID string, statuses []models.AssignmentStatus) ([]models.Assignment, error)
	ListOrders(ctx context.Context, orderIDs []string) ([]models.Order, error)
	ListLineItems(ctx context.Context, orderIDs []string, cookID string) ([]models.LineItem, error)
	// GetContact returns (nil, nil) when no profile exists; absence is not an error.
	GetContact(ctx context.Context, customerID string) (*models.Contact, error)
	GetAssignmentStatus(ctx context.Context, orderID, cookID string) (models.AssignmentStatus, error)
	// UpdateAssignmentStatus applies the change only if the row still has the
	// expected current status. Returns false when no row matched.
	UpdateAssignmentStatus(ctx context.Context, orderID, cookID string, from, to models.AssignmentStatus, respondedAt *time.Time) (bool, error)
	GetOrderNumber(ctx context.Context, orderID string) (string, error)
}

// PostgresRepository implements Repository against the PostgreSQL pool
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a PostgreSQL-backed repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListAssignments(ctx context.Context, cookID string, statuses []models.AssignmentStatus) ([]models.Assignment, error) {
	statusValues := make([]string, len(statuses))
	for i, s := range statuses {
		statusValues[i] = string(s)
	}

	rows, err := r.db.Query(ctx, database.ListAssignmentsSQL, cookID, statusValues)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.OrderID, &a.CookID, &a.Status, &a.RespondedAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment row: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

func (r *PostgresRepository) ListOrders(ctx context.Context, orderIDs []string) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, database.ListOrdersSQL, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.Number, &o.ServiceType, &o.TotalAmount, &o.EventDate,
			&o.EventDetails, &o.DeliveryAddress, &o.GuestCount, &o.CustomerID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

func (r *PostgresRepository) ListLineItems(ctx context.Context, orderIDs []string, cookID string) ([]models.LineItem, error) {
	rows, err := r.db.Query(ctx, database.ListLineItemsSQL, orderIDs, cookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var li models.LineItem
		if err := rows.Scan(&li.ID, &li.OrderID, &li.FoodItemID, &li.FoodName,
			&li.Quantity, &li.UnitPrice, &li.TotalPrice, &li.CookID); err != nil {
			return nil, fmt.Errorf("failed to scan line item row: %w", err)
		}
		items = append(items, li)
	}

	return items, rows.Err()
}

func (r *PostgresRepository) GetContact(ctx context.Context, customerID string) (*models.Contact, error) {
	var c models.Contact
	err := r.db.QueryRow(ctx, database.GetContactSQL, customerID).Scan(&c.FullName, &c.MobileNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query contact: %w", err)
	}
	return &c, nil
}

func (r *PostgresRepository) GetAssignmentStatus(ctx context.Context, orderID, cookID string) (models.AssignmentStatus, error) {
	var status models.AssignmentStatus
	err := r.db.QueryRow(ctx, database.GetAssignmentStatusSQL, orderID, cookID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrAssignmentNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query assignment status: %w", err)
	}
	return status, nil
}

func (r *PostgresRepository) UpdateAssignmentStatus(ctx context.Context, orderID, cookID string, from, to models.AssignmentStatus, respondedAt *time.Time) (bool, error) {
	affected, err := r.db.Exec(ctx, database.UpdateAssignmentStatusSQL,
		string(to), respondedAt, orderID, cookID, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to update assignment status: %w", err)
	}
	return affected > 0, nil
}

func (r *PostgresRepository) GetOrderNumber(ctx context.Context, orderID string) (string, error) {
	var number string
	err := r.db.QueryRow(ctx, database.GetOrderNumberSQL, orderID).Scan(&number)
	if err != nil {
		return "", fmt.Errorf("failed to query order number: %w", err)
	}
	return number, nil
}
