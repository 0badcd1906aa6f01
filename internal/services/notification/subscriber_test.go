package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/carbsfoods/penny-carbs-7/internal/logger"
	"github.com/carbsfoods/penny-carbs-7/internal/models"
)

func TestFormatNotification(t *testing.T) {
	sub := NewSubscriber(nil, logger.New("test"))
	ts := time.Date(2026, 8, 31, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		msg    models.AssignmentStatusMessage
		expect string
	}{
		{
			name: "accepted",
			msg: models.AssignmentStatusMessage{
				OrderNumber: "ORD_001", CookID: "cook-1",
				OldStatus: models.AssignmentPending, NewStatus: models.AssignmentAccepted,
				Timestamp: ts,
			},
			expect: "Order ORD_001 was accepted by cook cook-1",
		},
		{
			name: "delivered",
			msg: models.AssignmentStatusMessage{
				OrderNumber: "ORD_002", CookID: "cook-1",
				OldStatus: models.AssignmentCooked, NewStatus: models.AssignmentDelivered,
				Timestamp: ts,
			},
			expect: "Order ORD_002 has been delivered",
		},
		{
			name: "falls back to order id",
			msg: models.AssignmentStatusMessage{
				OrderID: "o-77", CookID: "cook-1",
				OldStatus: models.AssignmentPending, NewStatus: models.AssignmentDeclined,
				Timestamp: ts,
			},
			expect: "Order o-77 was declined",
		},
		{
			name: "unknown status uses generic line",
			msg: models.AssignmentStatusMessage{
				OrderNumber: "ORD_003", CookID: "cook-1",
				OldStatus: models.AssignmentPending, NewStatus: "weird",
				Timestamp: ts,
			},
			expect: "status changed from 'pending' to 'weird'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sub.formatNotification(&tt.msg)
			if !strings.Contains(got, tt.expect) {
				t.Errorf("formatNotification() = %q, want it to contain %q", got, tt.expect)
			}
			if !strings.Contains(got, "2026-08-31 12:30:00") {
				t.Errorf("formatNotification() = %q, missing timestamp", got)
			}
		})
	}
}
