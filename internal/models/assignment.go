package models

import "time"

// AssignmentStatus represents a cook's progress on an assigned order
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentAccepted  AssignmentStatus = "accepted"
	AssignmentDeclined  AssignmentStatus = "declined"
	AssignmentPreparing AssignmentStatus = "preparing"
	AssignmentCooked    AssignmentStatus = "cooked"
	AssignmentDelivered AssignmentStatus = "delivered"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// ActiveAssignmentStatuses are the statuses that keep an order on a cook's
// worklist. Declined, delivered and cancelled assignments drop off it.
var ActiveAssignmentStatuses = []AssignmentStatus{
	AssignmentPending,
	AssignmentAccepted,
	AssignmentPreparing,
	AssignmentCooked,
}

// Assignment binds a cook to an order with a status describing their progress
type Assignment struct {
	OrderID     string           `json:"order_id" db:"order_id"`
	CookID      string           `json:"cook_id" db:"cook_id"`
	Status      AssignmentStatus `json:"status" db:"status"`
	RespondedAt *time.Time       `json:"responded_at,omitempty" db:"responded_at"`
	CreatedAt   time.Time        `json:"created_at,omitempty" db:"created_at"`
}

// IsValidAssignmentStatus reports whether s is a known status value
func IsValidAssignmentStatus(s AssignmentStatus) bool {
	switch s {
	case AssignmentPending, AssignmentAccepted, AssignmentDeclined,
		AssignmentPreparing, AssignmentCooked, AssignmentDelivered, AssignmentCancelled:
		return true
	}
	return false
}

// ValidTransition reports whether an assignment may move from one status to
// another. Cancellation is allowed from any active status.
func ValidTransition(from, to AssignmentStatus) bool {
	if to == AssignmentCancelled {
		switch from {
		case AssignmentPending, AssignmentAccepted, AssignmentPreparing, AssignmentCooked:
			return true
		}
		return false
	}

	switch from {
	case AssignmentPending:
		return to == AssignmentAccepted || to == AssignmentDeclined
	case AssignmentAccepted:
		return to == AssignmentPreparing
	case AssignmentPreparing:
		return to == AssignmentCooked
	case AssignmentCooked:
		return to == AssignmentDelivered
	}
	return false
}
