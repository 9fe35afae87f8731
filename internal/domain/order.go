package domain

import "time"

// Order statuses move forward only; there is no state machine beyond
// this enumeration.
const (
	OrderStatusNew       = "new"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusCancelled = "cancelled"
)

// Order links a client to the products they purchased. ProductIDs is backed
// by the order_products join table and is what the onlyOrdered product
// filter consults.
type Order struct {
	ID         int64     `json:"id"`
	ClientID   int64     `json:"client_id"`
	Status     string    `json:"status"`
	ProductIDs []int64   `json:"product_ids"`
	CreatedBy  *string   `json:"created_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
