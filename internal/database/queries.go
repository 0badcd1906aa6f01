package database

// Assignment queries
const (
	ListAssignmentsSQL = `
		SELECT order_id, cook_id, status, responded_at, created_at
		FROM order_cooks
		WHERE cook_id = $1 AND status = ANY($2)`

	GetAssignmentStatusSQL = `
		SELECT status FROM order_cooks
		WHERE order_id = $1 AND cook_id = $2`

	UpdateAssignmentStatusSQL = `
		UPDATE order_cooks
		SET status = $1, responded_at = COALESCE($2, responded_at)
		WHERE order_id = $3 AND cook_id = $4 AND status = $5`
)

// Order queries
const (
	ListOrdersSQL = `
		SELECT id, number, service_type, total_amount, event_date, event_details,
			   delivery_address, guest_count, customer_id, created_at
		FROM orders
		WHERE id = ANY($1)
		ORDER BY created_at DESC`

	GetOrderNumberSQL = `
		SELECT number FROM orders WHERE id = $1`
)

// Line item queries
const (
	ListLineItemsSQL = `
		SELECT id, order_id, food_item_id, food_name, quantity, unit_price, total_price, cook_id
		FROM order_line_items
		WHERE order_id = ANY($1) AND cook_id = $2
		ORDER BY order_id, id`

	ListDeliveredLineItemsSQL = `
		SELECT li.order_id, o.number, li.total_price
		FROM order_line_items li
		JOIN orders o ON o.id = li.order_id
		JOIN order_cooks oc ON oc.order_id = li.order_id AND oc.cook_id = li.cook_id
		WHERE li.cook_id = $1 AND oc.status = 'delivered'
		ORDER BY o.created_at DESC, li.id`
)

// Contact queries
const (
	GetContactSQL = `
		SELECT full_name, mobile_number FROM profiles WHERE id = $1`
)

// Dish offer queries
const (
	ListDishOffersSQL = `
		SELECT id, food_item_id, food_name, cook_id, price
		FROM dish_offers
		WHERE food_item_id = $1 AND available = TRUE`
)
