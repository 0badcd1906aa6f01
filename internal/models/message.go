package models

import "time"

// AssignmentStatusMessage is published to the notifications fanout whenever a
// cook's assignment changes status
type AssignmentStatusMessage struct {
	OrderID     string           `json:"order_id"`
	OrderNumber string           `json:"order_number,omitempty"`
	CookID      string           `json:"cook_id"`
	OldStatus   AssignmentStatus `json:"old_status"`
	NewStatus   AssignmentStatus `json:"new_status"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewAssignmentStatusMessage creates a status change message stamped with the
// current time
func NewAssignmentStatusMessage(orderID, cookID string, oldStatus, newStatus AssignmentStatus) *AssignmentStatusMessage {
	return &AssignmentStatusMessage{
		OrderID:   orderID,
		CookID:    cookID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Timestamp: time.Now().UTC(),
	}
}
