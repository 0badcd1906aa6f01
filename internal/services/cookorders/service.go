package cookorders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carbsfoods/penny-carbs-7/internal/cache"
	"github.com/carbsfoods/penny-carbs-7/internal/logger"
	"github.com/carbsfoods/penny-carbs-7/internal/models"
)

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrInvalidStatus      = errors.New("invalid assignment status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrStatusConflict     = errors.New("assignment status changed concurrently")
)

const (
	cacheOperation = "cook_orders"
	cacheTTL       = 30 * time.Second

	// contactFetchLimit bounds the concurrent contact lookups so the fan-out
	// does not grow with order count.
	contactFetchLimit = 8
)

// EventPublisher publishes assignment status changes for downstream consumers
type EventPublisher interface {
	PublishStatusUpdate(ctx context.Context, msg *models.AssignmentStatusMessage) error
}

// Service aggregates a cook's active orders and applies status updates
type Service struct {
	repo      Repository
	cache     cache.Cache
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService creates a new cook orders service
func NewService(repo Repository, c cache.Cache, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     c,
		publisher: publisher,
		logger:    log,
	}
}

// FetchCookOrders returns one denormalized view per active assignment of the
// cook, newest order first. A cook with no active assignments gets an empty
// list without any further queries being issued.
func (s *Service) FetchCookOrders(ctx context.Context, cookID, requestID string) ([]models.CookOrderView, error) {
	// An unauthenticated actor has no assignments by definition.
	if cookID == "" {
		return []models.CookOrderView{}, nil
	}

	cacheKey := s.cache.GenerateKey(cacheOperation, cookID)
	if views, ok := s.readCache(ctx, cacheKey, requestID); ok {
		return views, nil
	}

	assignments, err := s.repo.ListAssignments(ctx, cookID, models.ActiveAssignmentStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	if len(assignments) == 0 {
		return []models.CookOrderView{}, nil
	}

	statusByOrder := make(map[string]models.AssignmentStatus, len(assignments))
	orderIDs := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if _, seen := statusByOrder[a.OrderID]; !seen {
			orderIDs = append(orderIDs, a.OrderID)
		}
		statusByOrder[a.OrderID] = a.Status
	}

	orders, err := s.repo.ListOrders(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	items, err := s.repo.ListLineItems(ctx, orderIDs, cookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	itemsByOrder := make(map[string][]models.LineItem)
	for _, li := range items {
		itemsByOrder[li.OrderID] = append(itemsByOrder[li.OrderID], li)
	}

	contactByCustomer, err := s.fetchContacts(ctx, orders)
	if err != nil {
		return nil, err
	}

	views := make([]models.CookOrderView, 0, len(orders))
	for _, o := range orders {
		status, ok := statusByOrder[o.ID]
		if !ok {
			// The assignment and order sources are fetched independently and
			// can lag each other; fall back rather than fail the whole read.
			status = models.AssignmentPending
			s.logger.Warn("assignment_status_missing",
				"Order returned without a matching assignment status, defaulting to pending",
				requestID, map[string]interface{}{
					"order_id": o.ID,
					"cook_id":  cookID,
				})
		}

		orderItems := itemsByOrder[o.ID]
		if orderItems == nil {
			orderItems = []models.LineItem{}
		}

		views = append(views, models.CookOrderView{
			Order:            o,
			AssignmentStatus: status,
			Contact:          contactByCustomer[o.CustomerID],
			Items:            orderItems,
		})
	}

	s.writeCache(ctx, cacheKey, views, requestID)

	return views, nil
}

// fetchContacts looks up each distinct customer's contact once, concurrently.
// A missing profile yields a nil contact; any real failure fails the batch.
func (s *Service) fetchContacts(ctx context.Context, orders []models.Order) (map[string]*models.Contact, error) {
	var customerIDs []string
	seen := make(map[string]bool)
	for _, o := range orders {
		if !seen[o.CustomerID] {
			seen[o.CustomerID] = true
			customerIDs = append(customerIDs, o.CustomerID)
		}
	}

	// Each goroutine writes only its own slot, so no lock is needed.
	contacts := make([]*models.Contact, len(customerIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(contactFetchLimit)
	for i, customerID := range customerIDs {
		g.Go(func() error {
			contact, err := s.repo.GetContact(gctx, customerID)
			if err != nil {
				return fmt.Errorf("failed to get contact for customer %s: %w", customerID, err)
			}
			contacts[i] = contact
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	contactByCustomer := make(map[string]*models.Contact, len(customerIDs))
	for i, customerID := range customerIDs {
		contactByCustomer[customerID] = contacts[i]
	}
	return contactByCustomer, nil
}

// UpdateAssignmentStatus moves a cook's assignment to a new status, stamping
// responded_at on acceptance. On success the cook's cached view is
// invalidated and a status change event is published.
func (s *Service) UpdateAssignmentStatus(ctx context.Context, orderID, cookID string, newStatus models.AssignmentStatus, requestID string) error {
	if !models.IsValidAssignmentStatus(newStatus) {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, newStatus)
	}

	current, err := s.repo.GetAssignmentStatus(ctx, orderID, cookID)
	if err != nil {
		return err
	}

	if !models.ValidTransition(current, newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, newStatus)
	}

	var respondedAt *time.Time
	if newStatus == models.AssignmentAccepted {
		now := time.Now().UTC()
		respondedAt = &now
	}

	updated, err := s.repo.UpdateAssignmentStatus(ctx, orderID, cookID, current, newStatus, respondedAt)
	if err != nil {
		return err
	}
	if !updated {
		return ErrStatusConflict
	}

	// The cached view list is now stale; recompute on next read.
	cacheKey := s.cache.GenerateKey(cacheOperation, cookID)
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		s.logger.Warn("cache_invalidation_failed",
			"Failed to invalidate cook orders cache", requestID, map[string]interface{}{
				"cache_key": cacheKey,
				"error":     err.Error(),
			})
	}

	s.publishStatusUpdate(ctx, orderID, cookID, current, newStatus, requestID)

	s.logger.Info("assignment_status_updated",
		fmt.Sprintf("Assignment moved from %s to %s", current, newStatus),
		requestID, map[string]interface{}{
			"order_id":   orderID,
			"cook_id":    cookID,
			"old_status": string(current),
			"new_status": string(newStatus),
		})

	return nil
}

// publishStatusUpdate emits a status change event. The database is the source
// of truth, so a publish failure is logged but does not fail the mutation.
func (s *Service) publishStatusUpdate(ctx context.Context, orderID, cookID string, oldStatus, newStatus models.AssignmentStatus, requestID string) {
	msg := models.NewAssignmentStatusMessage(orderID, cookID, oldStatus, newStatus)
	if number, err := s.repo.GetOrderNumber(ctx, orderID); err == nil {
		msg.OrderNumber = number
	}

	if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
		s.logger.Error("status_publish_failed",
			"Failed to publish assignment status update", requestID, err, map[string]interface{}{
				"order_id": orderID,
				"cook_id":  cookID,
			})
	}
}

// readCache returns the cached view list for the key, if present and valid.
// Cache trouble never fails a read; it only forces the database path.
func (s *Service) readCache(ctx context.Context, cacheKey, requestID string) ([]models.CookOrderView, bool) {
	cached, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		s.logger.Warn("cache_read_failed", "Failed to read cook orders cache", requestID, map[string]interface{}{
			"cache_key": cacheKey,
			"error":     err.Error(),
		})
		return nil, false
	}
	if cached == "" {
		return nil, false
	}

	var views []models.CookOrderView
	if err := json.Unmarshal([]byte(cached), &views); err != nil {
		s.logger.Warn("cache_decode_failed", "Failed to decode cached cook orders", requestID, map[string]interface{}{
			"cache_key": cacheKey,
			"error":     err.Error(),
		})
		return nil, false
	}
	return views, true
}

func (s *Service) writeCache(ctx context.Context, cacheKey string, views []models.CookOrderView, requestID string) {
	data, err := json.Marshal(views)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey, string(data), cacheTTL); err != nil {
		s.logger.Warn("cache_write_failed", "Failed to write cook orders cache", requestID, map[string]interface{}{
			"cache_key": cacheKey,
			"error":     err.Error(),
		})
	}
}
