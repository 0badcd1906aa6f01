package notification

import (
	"context"
	"fmt"

	"github.com/carbsfoods/penny-carbs-7/internal/logger"
	"github.com/carbsfoods/penny-carbs-7/internal/messaging"
	"github.com/carbsfoods/penny-carbs-7/internal/models"
)

// Subscriber consumes assignment status events and surfaces them as
// human-readable notifications
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger
}

// NewSubscriber creates a new notification subscriber
func NewSubscriber(consumer *messaging.Consumer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
	}
}

// Start consumes status events until ctx is cancelled
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handleStatusUpdate)
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// handleStatusUpdate processes one assignment status event
func (s *Subscriber) handleStatusUpdate(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var msg models.AssignmentStatusMessage
	if err := messaging.ParseMessage(body, &msg); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse status message", requestID, err, nil)
		return fmt.Errorf("failed to parse status message: %w", err)
	}

	fmt.Println(s.formatNotification(&msg))

	s.logger.Info("notification_displayed", "Notification displayed", requestID, map[string]interface{}{
		"order_id":   msg.OrderID,
		"cook_id":    msg.CookID,
		"old_status": string(msg.OldStatus),
		"new_status": string(msg.NewStatus),
	})

	return nil
}

// formatNotification creates a human-readable line for one status change
func (s *Subscriber) formatNotification(msg *models.AssignmentStatusMessage) string {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")
	order := msg.OrderNumber
	if order == "" {
		order = msg.OrderID
	}

	switch msg.NewStatus {
	case models.AssignmentAccepted:
		return fmt.Sprintf("[%s] Order %s was accepted by cook %s.", timestamp, order, msg.CookID)
	case models.AssignmentDeclined:
		return fmt.Sprintf("[%s] Order %s was declined by cook %s.", timestamp, order, msg.CookID)
	case models.AssignmentPreparing:
		return fmt.Sprintf("[%s] Order %s is now being prepared by cook %s.", timestamp, order, msg.CookID)
	case models.AssignmentCooked:
		return fmt.Sprintf("[%s] Order %s is cooked and ready for handoff.", timestamp, order)
	case models.AssignmentDelivered:
		return fmt.Sprintf("[%s] Order %s has been delivered. Enjoy!", timestamp, order)
	case models.AssignmentCancelled:
		return fmt.Sprintf("[%s] Order %s has been cancelled.", timestamp, order)
	default:
		return fmt.Sprintf("[%s] Order %s status changed from '%s' to '%s'.",
			timestamp, order, msg.OldStatus, msg.NewStatus)
	}
}
