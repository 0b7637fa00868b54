package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a denormalized line item captured from the orders/create
// webhook, kept for packing lists. SellingPlanName is non-empty when
// the line carried a selling-plan allocation.
type OrderItem struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ShopDomain      string    `json:"shop_domain" gorm:"index;not null"`
	ShopifyOrderID  int64     `json:"shopify_order_id" gorm:"index;not null"`
	OrderName       string    `json:"order_name"`
	CustomerID      uuid.UUID `json:"customer_id" gorm:"type:uuid;index"`
	Title           string    `json:"title"`
	VariantTitle    string    `json:"variant_title"`
	Quantity        int       `json:"quantity"`
	SellingPlanName string    `json:"selling_plan_name"`
	CreatedAt       time.Time `json:"created_at"`
}
