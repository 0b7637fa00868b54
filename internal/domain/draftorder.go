package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Attribute is a Shopify note attribute (customAttributes on draft
// orders, note_attributes on order webhooks).
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DraftOrderLineItem is one line of a draft order: either a variant
// line (VariantGID set) or a custom line (Title + Price set).
type DraftOrderLineItem struct {
	VariantGID string           `json:"variant_gid,omitempty"`
	Title      string           `json:"title,omitempty"`
	Quantity   int              `json:"quantity"`
	Price      *decimal.Decimal `json:"price,omitempty"`
}

// Draft order discount value types, per the Admin API enum.
const (
	DraftDiscountFixed      = "FIXED_AMOUNT"
	DraftDiscountPercentage = "PERCENTAGE"
)

// DraftOrderDiscount is an order-level applied discount.
type DraftOrderDiscount struct {
	Description string          `json:"description"`
	ValueType   string          `json:"value_type"`
	Value       decimal.Decimal `json:"value"`
}

// DraftOrderInput is everything needed to create a draft order for a
// phone/manual order, including the pickup note attributes the order
// webhook will later parse.
type DraftOrderInput struct {
	CustomerGID string              `json:"customer_gid,omitempty"`
	Email       string              `json:"email,omitempty"`
	LineItems   []DraftOrderLineItem `json:"line_items"`
	Discount    *DraftOrderDiscount `json:"discount,omitempty"`
	Note        string              `json:"note,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Attributes  []Attribute         `json:"attributes,omitempty"`
}

// DraftOrder is the subset of the Admin API draft order the app shows.
type DraftOrder struct {
	GID        string      `json:"gid"`
	Name       string      `json:"name"`
	Status     string      `json:"status"`
	TotalPrice string      `json:"total_price"`
	InvoiceURL string      `json:"invoice_url,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// SellingPlanDefinition is one frequency option sent to Shopify when
// creating or updating a selling plan group.
type SellingPlanDefinition struct {
	Name            string          `json:"name"`
	IntervalUnit    IntervalUnit    `json:"interval_unit"`
	IntervalCount   int             `json:"interval_count"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// SellingPlanGroupDefinition is the local definition a plan group is
// created from.
type SellingPlanGroupDefinition struct {
	Name         string                  `json:"name"`
	MerchantCode string                  `json:"merchant_code"`
	Plans        []SellingPlanDefinition `json:"plans"`
}

// SellingPlanGroupResult carries the GIDs Shopify assigned on create.
type SellingPlanGroupResult struct {
	GroupGID string   `json:"group_gid"`
	PlanGIDs []string `json:"plan_gids"`
}

// DiscountCodeInput defines a basic percentage discount code.
type DiscountCodeInput struct {
	Title    string          `json:"title"`
	Code     string          `json:"code"`
	Percent  decimal.Decimal `json:"percent"`
	StartsAt time.Time       `json:"starts_at"`
	EndsAt   *time.Time      `json:"ends_at,omitempty"`
}
