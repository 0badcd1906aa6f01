package models

import "time"

// ServiceType represents how an order is fulfilled
type ServiceType string

const (
	ServiceDelivery ServiceType = "delivery"
	ServicePickup   ServiceType = "pickup"
	ServiceCatering ServiceType = "catering"
)

// Order represents a customer order as the cook side sees it
type Order struct {
	ID              string      `json:"id" db:"id"`
	Number          string      `json:"order_number" db:"number"`
	ServiceType     ServiceType `json:"service_type" db:"service_type"`
	TotalAmount     float64     `json:"total_amount" db:"total_amount"`
	EventDate       *time.Time  `json:"event_date,omitempty" db:"event_date"`
	EventDetails    *string     `json:"event_details,omitempty" db:"event_details"`
	DeliveryAddress *string     `json:"delivery_address,omitempty" db:"delivery_address"`
	GuestCount      *int        `json:"guest_count,omitempty" db:"guest_count"`
	CustomerID      string      `json:"customer_id" db:"customer_id"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// LineItem represents a single dish on an order, assigned to one cook
type LineItem struct {
	ID         string  `json:"id" db:"id"`
	OrderID    string  `json:"order_id" db:"order_id"`
	FoodItemID string  `json:"food_item_id" db:"food_item_id"`
	FoodName   string  `json:"food_name" db:"food_name"`
	Quantity   int     `json:"quantity" db:"quantity"`
	UnitPrice  float64 `json:"unit_price" db:"unit_price"`
	TotalPrice float64 `json:"total_price" db:"total_price"`
	CookID     string  `json:"cook_id" db:"cook_id"`
}

// Contact is the customer's displayable contact info for an order
type Contact struct {
	FullName     string `json:"full_name" db:"full_name"`
	MobileNumber string `json:"mobile_number" db:"mobile_number"`
}

// CookOrderView is the denormalized, request-scoped merge of an order, its
// assignment status, the customer contact and the cook's line items. It is
// rebuilt on every read and never persisted.
type CookOrderView struct {
	Order
	AssignmentStatus AssignmentStatus `json:"assignment_status"`
	Contact          *Contact         `json:"contact,omitempty"`
	Items            []LineItem       `json:"items"`
}

// OrderEarnings is one delivered order's contribution to a cook's earnings
type OrderEarnings struct {
	OrderID     string  `json:"order_id"`
	OrderNumber string  `json:"order_number"`
	Amount      float64 `json:"amount"`
}

// CookEarnings summarizes what a cook has earned across delivered orders
type CookEarnings struct {
	CookID string          `json:"cook_id"`
	Total  float64         `json:"total"`
	Orders []OrderEarnings `json:"orders"`
}

// DishOffer is one cook's priced offer for a dish
type DishOffer struct {
	ID         string  `json:"id" db:"id"`
	FoodItemID string  `json:"food_item_id" db:"food_item_id"`
	FoodName   string  `json:"food_name" db:"food_name"`
	CookID     string  `json:"cook_id" db:"cook_id"`
	Price      float64 `json:"price" db:"price"`
}
