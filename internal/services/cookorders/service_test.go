package cookorders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carbsfoods/penny-carbs-7/internal/logger"
	"github.com/carbsfoods/penny-carbs-7/internal/models"
)

// fakeRepository emulates the database contract in memory, including the
// filters the SQL applies, and records which calls were issued.
type fakeRepository struct {
	assignments []models.Assignment
	orders      []models.Order
	items       []models.LineItem
	contacts    map[string]*models.Contact
	numbers     map[string]string

	listAssignmentsErr error
	listOrdersErr      error
	listLineItemsErr   error
	getContactErr      error
	updateOK           bool
	updateErr          error

	calls []string

	updatedTo          models.AssignmentStatus
	updatedRespondedAt *time.Time
}

func (f *fakeRepository) ListAssignments(_ context.Context, cookID string, statuses []models.AssignmentStatus) ([]models.Assignment, error) {
	f.calls = append(f.calls, "ListAssignments")
	if f.listAssignmentsErr != nil {
		return nil, f.listAssignmentsErr
	}
	active := make(map[models.AssignmentStatus]bool)
	for _, s := range statuses {
		active[s] = true
	}
	var out []models.Assignment
	for _, a := range f.assignments {
		if a.CookID == cookID && active[a.Status] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListOrders(_ context.Context, orderIDs []string) ([]models.Order, error) {
	f.calls = append(f.calls, "ListOrders")
	if f.listOrdersErr != nil {
		return nil, f.listOrdersErr
	}
	requested := make(map[string]bool)
	for _, id := range orderIDs {
		requested[id] = true
	}
	var out []models.Order
	for _, o := range f.orders {
		if requested[o.ID] {
			out = append(out, o)
		}
	}
	// Emulate ORDER BY created_at DESC
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeRepository) ListLineItems(_ context.Context, orderIDs []string, cookID string) ([]models.LineItem, error) {
	f.calls = append(f.calls, "ListLineItems")
	if f.listLineItemsErr != nil {
		return nil, f.listLineItemsErr
	}
	requested := make(map[string]bool)
	for _, id := range orderIDs {
		requested[id] = true
	}
	var out []models.LineItem
	for _, li := range f.items {
		if requested[li.OrderID] && li.CookID == cookID {
			out = append(out, li)
		}
	}
	return out, nil
}

func (f *fakeRepository) GetContact(_ context.Context, customerID string) (*models.Contact, error) {
	f.calls = append(f.calls, "GetContact")
	if f.getContactErr != nil {
		return nil, f.getContactErr
	}
	return f.contacts[customerID], nil
}

func (f *fakeRepository) GetAssignmentStatus(_ context.Context, orderID, cookID string) (models.AssignmentStatus, error) {
	f.calls = append(f.calls, "GetAssignmentStatus")
	for _, a := range f.assignments {
		if a.OrderID == orderID && a.CookID == cookID {
			return a.Status, nil
		}
	}
	return "", ErrAssignmentNotFound
}

func (f *fakeRepository) UpdateAssignmentStatus(_ context.Context, orderID, cookID string, from, to models.AssignmentStatus, respondedAt *time.Time) (bool, error) {
	f.calls = append(f.calls, "UpdateAssignmentStatus")
	if f.updateErr != nil {
		return false, f.updateErr
	}
	if !f.updateOK {
		return false, nil
	}
	f.updatedTo = to
	f.updatedRespondedAt = respondedAt
	return true, nil
}

func (f *fakeRepository) GetOrderNumber(_ context.Context, orderID string) (string, error) {
	if n, ok := f.numbers[orderID]; ok {
		return n, nil
	}
	return "", errors.New("order not found")
}

func (f *fakeRepository) called(name string) bool {
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

// fakeCache is an in-memory Cache implementation
type fakeCache struct {
	store   map[string]string
	deleted []string
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]string)}
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.store[key] = value.(string)
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	return c.store[key], nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	delete(c.store, key)
	return nil
}

func (c *fakeCache) GenerateKey(operation, key string) string {
	return "test:" + operation + ":" + key
}

// fakePublisher records published status messages
type fakePublisher struct {
	published []*models.AssignmentStatusMessage
	err       error
}

func (p *fakePublisher) PublishStatusUpdate(_ context.Context, msg *models.AssignmentStatusMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

func newTestService(repo Repository, c *fakeCache, pub *fakePublisher) *Service {
	return NewService(repo, c, pub, logger.New("test"))
}

func TestFetchCookOrders_NoActiveAssignments(t *testing.T) {
	repo := &fakeRepository{
		assignments: []models.Assignment{
			{OrderID: "o1", CookID: "cook-1", Status: models.AssignmentDelivered},
			{OrderID: "o2", CookID: "cook-2", Status: models.AssignmentPending},
		},
	}
	svc := newTestService(repo, newFakeCache(), &fakePublisher{})

	views, err := svc.FetchCookOrders(context.Background(), "cook-1", "req-1")
	if err != nil {
		t.Fatalf("FetchCookOrders returned error: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected empty result, got %d views", len(views))
	}
	for _, call := range []string{"ListOrders", "ListLineItems", "GetContact"} {
		if repo.called(call) {
			t.Errorf("expected %s not to be issued when no active assignments exist", call)
		}
	}
}

func TestFetchCookOrders_EmptyCookID(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(repo, newFakeCache(), &fakePublisher{})

	views, err := svc.FetchCookOrders(context.Background(), "", "req-1")
	if err != nil {
		t.Fatalf("FetchCookOrders returned error: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected empty result, got %d views", len(views))
	}
	if len(repo.calls) != 0 {
		t.Errorf("expected no repository calls for empty cook ID, got %v", repo.calls)
	}
}

func TestFetchCookOrders_MergesAndOrders(t *testing.T) {
	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	repo := &fakeRepository{
		assignments: []models.Assignment{
			{OrderID: "o1", CookID: "cook-1", Status: models.AssignmentAccepted},
			{OrderID: "o2", CookID: "cook-1", Status: models.AssignmentPending},
		},
		orders: []models.Order{
			{ID: "o1", Number: "ORD_001", ServiceType: models.ServiceDelivery, CustomerID: "cust-1", CreatedAt: t2},
			{ID: "o2", Number: "ORD_002", ServiceType: models.ServicePickup, CustomerID: "cust-2", CreatedAt: t1},
		},
		items: []models.LineItem{
			{ID: "li-1", OrderID: "o1", FoodName: "Plov", Quantity: 2, CookID: "cook-1"},
			{ID: "li-2", OrderID: "o1", FoodName: "Manty", Quantity: 1, CookID: "cook-1"},
			{ID: "li-3", OrderID: "o2", FoodName: "Lagman", Quantity: 1, CookID: "cook-2"},
		},
		contacts: map[string]*models.Contact{
			"cust-1": {FullName: "Aida K", MobileNumber: "+77010000001"},
		},
	}
	svc := newTestService(repo, newFakeCache(), &fakePublisher{})

	views, err := svc.FetchCookOrders(context.Background(), "cook-1", "req-1")
	if err != nil {
		t.Fatalf("FetchCookOrders returned error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}

	// Newest order first
	if views[0].ID != "o1" || views[1].ID != "o2" {
		t.Errorf("expected order o1 before o2, got %s, %s", views[0].ID, views[1].ID)
	}

	if views[0].AssignmentStatus != models.AssignmentAccepted {
		t.Errorf("expected o1 status accepted, got %s", views[0].AssignmentStatus)
	}
	if views[1].AssignmentStatus != models.AssignmentPending {
		t.Errorf("expected o2 status pending, got %s", views[1].AssignmentStatus)
	}

	// cook-1's two items on o1; cook-2's item on o2 must not leak in
	if len(views[0].Items) != 2 {
		t.Fatalf("expected 2 items on o1, got %d", len(views[0].Items))
	}
	if len(views[1].Items) != 0 {
		t.Fatalf("expected no items on o2, got %d", len(views[1].Items))
	}
	for _, v := range views {
		for _, li := range v.Items {
			if li.OrderID != v.ID {
				t.Errorf("item %s attached to view %s but belongs to order %s", li.ID, v.ID, li.OrderID)
			}
			if li.CookID != "cook-1" {
				t.Errorf("item %s belongs to cook %s, leaked into cook-1's view", li.ID, li.CookID)
			}
		}
	}

	// Contact resolved for cust-1, absent (not an error) for cust-2
	if views[0].Contact == nil || views[0].Contact.FullName != "Aida K" {
		t.Errorf("expected contact for o1, got %+v", views[0].Contact)
	}
	if views[1].Contact != nil {
		t.Errorf("expected absent contact for o2, got %+v", views[1].Contact)
	}
}

func TestFetchCookOrders_FetchFailureAbortsWholeRead(t *testing.T) {
	baseRepo := func() *fakeRepository {
		return &fakeRepository{
			assignments: []models.Assignment{
				{OrderID: "o1", CookID: "cook-1", Status: models.AssignmentAccepted},
			},
			orders: []models.Order{
				{ID: "o1", CustomerID: "cust-1", CreatedAt: time.Now()},
			},
		}
	}

	tests := []struct {
		name  string
		setup func(*fakeRepository)
	}{
		{"orders fetch fails", func(r *fakeRepository) { r.listOrdersErr = errors.New("db down") }},
		{"line items fetch fails", func(r *fakeRepository) { r.listLineItemsErr = errors.New("db down") }},
		{"contact fetch fails", func(r *fakeRepository) { r.getContactErr = errors.New("db down") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := baseRepo()
			tt.setup(repo)
			svc := newTestService(repo, newFakeCache(), &fakePublisher{})

			views, err := svc.FetchCookOrders(context.Background(), "cook-1", "req-1")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if views != nil {
				t.Fatalf("expected no partial result, got %d views", len(views))
			}
		})
	}
}

func TestFetchCookOrders_DefaultsMissingStatusToPending(t *testing.T) {
	// An order the repository returns without a matching assignment gets the
	// pending fallback instead of failing the read.
	repo := &statusGapRepository{fakeRepository: fakeRepository{
		assignments: []models.Assignment{
			{OrderID: "o1", CookID: "cook-1", Status: models.AssignmentAccepted},
		},
		orders: []models.Order{
			{ID: "o1", CustomerID: "cust-1", CreatedAt: time.Now()},
		},
	}}
	svc := newTestService(repo, newFakeCache(), &fakePublisher{})

	views, err := svc.FetchCookOrders(context.Background(), "cook-1", "req-1")
	if err != nil {
		t.Fatalf("FetchCookOrders returned error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	var gapView *models.CookOrderView
	for i := range views {
		if views[i].ID == "o-lagging" {
			gapView = &views[i]
		}
	}
	if gapView == nil {
		t.Fatal("expected view for order o-lagging")
	}
	if gapView.AssignmentStatus != models.AssignmentPending {
		t.Errorf("expected pending fallback, got %s", gapView.AssignmentStatus)
	}
}

// statusGapRepository returns one more order than was asked for, simulating
// lag between the assignment and order sources.
type statusGapRepository struct {
	fakeRepository
}

func (r *statusGapRepository) ListOrders(ctx context.Context, orderIDs []string) ([]models.Order, error) {
	orders, err := r.fakeRepository.ListOrders(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	return append(orders, models.Order{ID: "o-lagging", CustomerID: "cust-1", CreatedAt: time.Now()}), nil
}

func TestFetchCookOrders_SharedCustomerFetchedOnce(t *testing.T) {
	now := time.Now()
	repo := &fakeRepository{
		assignments: []models.Assignment{
			{OrderID: "o1", CookID: "cook-1", Status: models.AssignmentAccepted},
			{OrderID: "o2", CookID: "cook-1", Status: models.AssignmentAccepted},
		},
		orders: []models.Order{
			{ID: "o1", CustomerID: "cust-1", CreatedAt: now},
			{ID: "o2", CustomerID: "cust-1", CreatedAt: now.Add(-time.Hour)},
		},
		contacts: map[string]*models.Contact{
			"cust-1": {FullName: "Aida K", MobileNumber: "+77010000001"},
		},
	}
	svc := newTestService(repo, newFakeCache(), &fakePublisher{})

	if _, err := svc.FetchCookOrders(context.Background(), "cook-1", "req-1"); err != nil {
		t.Fatalf("FetchCookOrders returned error: %v", err)
	}

	contactCalls := 0
	for _, c := range repo.calls {
		if c == "GetContact" {
			contactCalls++
		}
	}
	if contactCalls != 1 {
		t.Errorf("expected 1 contact lookup for a shared customer, got %d", contactCalls)
	}
}

func TestFetchCookOrders_CacheHitSkipsRepository(t *testing.T) {
	repo := &fakeRepository{
		assignments: []models.Assignment{
			{OrderID: "o1", CookID: "cook-1", Status: models.AssignmentAccepted},
		},
		orders: []models.Order{
			{ID: "o1", CustomerID: "cust-1", CreatedAt: time.Now()},
		},
	}
	c := newFakeCache()
	svc := newTestService(repo, c, &fakePublisher{})

	first, err := svc.FetchCookOrders(context.Background(), "cook-1", "req-1")
	if err != nil {
		t.Fatalf("first FetchCookOrders returned error: %v", err)
	}
	repo.calls = nil

	second, err := svc.FetchCookOrders(context.Background(), "cook-1", "req-2")
	if err != nil {
		t.Fatalf("second FetchCookOrders returned error: %v", err)
	}
	if len(repo.calls) != 0 {
		t.Errorf("expected cached read to skip the repository, got calls %v", repo.calls)
	}
	if len(second) != len(first) || second[0].ID != first[0].ID {
		t.Errorf("cached result differs from original: %+v vs %+v", second, first)
	}
}

func TestFetchCookOrders_CacheFailureFallsBackToDatabase(t *testing.T) {
	repo := &fakeRepository{
		assignments: []models.Assignment{
			{OrderID: "o1", CookID: "cook-1", Status: models.AssignmentAccepted},
		},
		orders: []models.Order{
			{ID: "o1", CustomerID: "cust-1", CreatedAt: time.Now()},
		},
	}
	c := newFakeCache()
	c.getErr = errors.New("redis down")
	svc := newTestService(repo, c, &fakePublisher{})

	views, err := svc.FetchCookOrders(context.Background(), "cook-1", "req-1")
	if err != nil {
		t.Fatalf("FetchCookOrders returned error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
}

func TestUpdateAssignmentStatus(t *testing.T) {
	tests := []struct {
		name      string
		current   models.AssignmentStatus
		newStatus models.AssignmentStatus
		updateOK  bool
		wantErr   error
	}{
		{"accept pending", models.AssignmentPending, models.AssignmentAccepted, true, nil},
		{"decline pending", models.AssignmentPending, models.AssignmentDeclined, true, nil},
		{"start preparing", models.AssignmentAccepted, models.AssignmentPreparing, true, nil},
		{"mark cooked", models.AssignmentPreparing, models.AssignmentCooked, true, nil},
		{"deliver", models.AssignmentCooked, models.AssignmentDelivered, true, nil},
		{"cancel active", models.AssignmentPreparing, models.AssignmentCancelled, true, nil},
		{"unknown status", models.AssignmentPending, "burnt", false, ErrInvalidStatus},
		{"skip ahead", models.AssignmentPending, models.AssignmentCooked, false, ErrInvalidTransition},
		{"backwards", models.AssignmentCooked, models.AssignmentAccepted, false, ErrInvalidTransition},
		{"concurrent change", models.AssignmentPending, models.AssignmentAccepted, false, ErrStatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepository{
				assignments: []models.Assignment{
					{OrderID: "o1", CookID: "cook-1", Status: tt.current},
				},
				numbers:  map[string]string{"o1": "ORD_001"},
				updateOK: tt.updateOK,
			}
			c := newFakeCache()
			pub := &fakePublisher{}
			svc := newTestService(repo, c, pub)

			err := svc.UpdateAssignmentStatus(context.Background(), "o1", "cook-1", tt.newStatus, "req-1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				if len(pub.published) != 0 {
					t.Errorf("expected no event published on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateAssignmentStatus returned error: %v", err)
			}

			if repo.updatedTo != tt.newStatus {
				t.Errorf("expected status updated to %s, got %s", tt.newStatus, repo.updatedTo)
			}
			if tt.newStatus == models.AssignmentAccepted && repo.updatedRespondedAt == nil {
				t.Error("expected responded_at to be stamped on acceptance")
			}
			if tt.newStatus != models.AssignmentAccepted && repo.updatedRespondedAt != nil {
				t.Errorf("expected responded_at untouched for %s", tt.newStatus)
			}

			if len(c.deleted) != 1 {
				t.Fatalf("expected 1 cache invalidation, got %d", len(c.deleted))
			}
			if c.deleted[0] != c.GenerateKey("cook_orders", "cook-1") {
				t.Errorf("wrong cache key invalidated: %s", c.deleted[0])
			}

			if len(pub.published) != 1 {
				t.Fatalf("expected 1 published event, got %d", len(pub.published))
			}
			msg := pub.published[0]
			if msg.OldStatus != tt.current || msg.NewStatus != tt.newStatus {
				t.Errorf("event has statuses %s -> %s, want %s -> %s",
					msg.OldStatus, msg.NewStatus, tt.current, tt.newStatus)
			}
			if msg.OrderNumber != "ORD_001" {
				t.Errorf("expected order number on event, got %q", msg.OrderNumber)
			}
		})
	}
}

func TestUpdateAssignmentStatus_NotFound(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(repo, newFakeCache(), &fakePublisher{})

	err := svc.UpdateAssignmentStatus(context.Background(), "missing", "cook-1", models.AssignmentAccepted, "req-1")
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestUpdateAssignmentStatus_PublishFailureDoesNotFailMutation(t *testing.T) {
	repo := &fakeRepository{
		assignments: []models.Assignment{
			{OrderID: "o1", CookID: "cook-1", Status: models.AssignmentPending},
		},
		updateOK: true,
	}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newTestService(repo, newFakeCache(), pub)

	if err := svc.UpdateAssignmentStatus(context.Background(), "o1", "cook-1", models.AssignmentAccepted, "req-1"); err != nil {
		t.Fatalf("expected mutation to succeed despite publish failure, got %v", err)
	}
}
