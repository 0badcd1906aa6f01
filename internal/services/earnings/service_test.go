package earnings

import (
	"context"
	"errors"
	"testing"

	"github.com/carbsfoods/penny-carbs-7/internal/logger"
)

type fakeRepository struct {
	items []DeliveredLineItem
	err   error
}

func (f *fakeRepository) ListDeliveredLineItems(_ context.Context, cookID string) ([]DeliveredLineItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func TestGetCookEarnings(t *testing.T) {
	repo := &fakeRepository{
		items: []DeliveredLineItem{
			{OrderID: "o1", OrderNumber: "ORD_001", Amount: 12.50},
			{OrderID: "o1", OrderNumber: "ORD_001", Amount: 7.25},
			{OrderID: "o2", OrderNumber: "ORD_002", Amount: 30.00},
		},
	}
	svc := NewService(repo, logger.New("test"))

	earnings, err := svc.GetCookEarnings(context.Background(), "cook-1", "req-1")
	if err != nil {
		t.Fatalf("GetCookEarnings returned error: %v", err)
	}

	if earnings.Total != 49.75 {
		t.Errorf("expected total 49.75, got %v", earnings.Total)
	}
	if len(earnings.Orders) != 2 {
		t.Fatalf("expected 2 order entries, got %d", len(earnings.Orders))
	}
	if earnings.Orders[0].OrderID != "o1" || earnings.Orders[0].Amount != 19.75 {
		t.Errorf("expected o1 with 19.75, got %+v", earnings.Orders[0])
	}
	if earnings.Orders[1].OrderID != "o2" || earnings.Orders[1].Amount != 30.00 {
		t.Errorf("expected o2 with 30.00, got %+v", earnings.Orders[1])
	}
}

func TestGetCookEarnings_Empty(t *testing.T) {
	svc := NewService(&fakeRepository{}, logger.New("test"))

	earnings, err := svc.GetCookEarnings(context.Background(), "cook-1", "req-1")
	if err != nil {
		t.Fatalf("GetCookEarnings returned error: %v", err)
	}
	if earnings.Total != 0 {
		t.Errorf("expected zero total, got %v", earnings.Total)
	}
	if len(earnings.Orders) != 0 {
		t.Errorf("expected no order entries, got %d", len(earnings.Orders))
	}
}

func TestGetCookEarnings_QueryFailure(t *testing.T) {
	svc := NewService(&fakeRepository{err: errors.New("db down")}, logger.New("test"))

	if _, err := svc.GetCookEarnings(context.Background(), "cook-1", "req-1"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
