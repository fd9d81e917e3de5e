package domain

import "time"

// Highlight features a product on the home page. There is at most one
// highlight per product.
type Highlight struct {
	ProductID string    `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}
