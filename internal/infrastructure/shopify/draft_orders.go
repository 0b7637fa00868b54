package shopify

import (
	"context"
	"fmt"
	"time"

	"pickupstand/internal/domain"
)

const draftOrderFields = `
	id
	name
	status
	totalPrice
	invoiceUrl
	createdAt
	customAttributes {
		key
		value
	}`

type gqlDraftOrder struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Status           string `json:"status"`
	TotalPrice       string `json:"totalPrice"`
	InvoiceURL       string `json:"invoiceUrl"`
	CreatedAt        string `json:"createdAt"`
	CustomAttributes []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"customAttributes"`
}

func (g *gqlDraftOrder) toDomain() *domain.DraftOrder {
	d := &domain.DraftOrder{
		GID:        g.ID,
		Name:       g.Name,
		Status:     g.Status,
		TotalPrice: g.TotalPrice,
		InvoiceURL: g.InvoiceURL,
	}
	if t, err := time.Parse(time.RFC3339, g.CreatedAt); err == nil {
		d.CreatedAt = t
	}
	for _, a := range g.CustomAttributes {
		d.Attributes = append(d.Attributes, domain.Attribute{Name: a.Key, Value: a.Value})
	}
	return d
}

// DraftOrderCreate runs the draftOrderCreate mutation.
func (c *Client) DraftOrderCreate(ctx context.Context, shop, accessToken string, input domain.DraftOrderInput) (*domain.DraftOrder, error) {
	query := fmt.Sprintf(`
		mutation draftOrderCreate($input: DraftOrderInput!) {
			draftOrderCreate(input: $input) {
				draftOrder {%s}
				userErrors {
					field
					message
				}
			}
		}`, draftOrderFields)

	var resp struct {
		DraftOrderCreate struct {
			DraftOrder *gqlDraftOrder `json:"draftOrder"`
			UserErrors []UserError    `json:"userErrors"`
		} `json:"draftOrderCreate"`
	}

	vars := map[string]interface{}{"input": buildDraftOrderInput(input)}
	if err := c.gql(ctx, shop, accessToken, query, vars, &resp); err != nil {
		return nil, err
	}
	if err := userErrorsOrNil("draftOrderCreate", resp.DraftOrderCreate.UserErrors); err != nil {
		return nil, err
	}
	if resp.DraftOrderCreate.DraftOrder == nil {
		return nil, fmt.Errorf("draftOrderCreate returned no draft order")
	}
	return resp.DraftOrderCreate.DraftOrder.toDomain(), nil
}

// DraftOrderComplete completes a draft order with payment pending, the
// flow used for pay-at-pickup phone orders.
func (c *Client) DraftOrderComplete(ctx context.Context, shop, accessToken, draftGID string) (*domain.DraftOrder, error) {
	query := fmt.Sprintf(`
		mutation draftOrderComplete($id: ID!) {
			draftOrderComplete(id: $id, paymentPending: true) {
				draftOrder {%s}
				userErrors {
					field
					message
				}
			}
		}`, draftOrderFields)

	var resp struct {
		DraftOrderComplete struct {
			DraftOrder *gqlDraftOrder `json:"draftOrder"`
			UserErrors []UserError    `json:"userErrors"`
		} `json:"draftOrderComplete"`
	}

	vars := map[string]interface{}{"id": draftGID}
	if err := c.gql(ctx, shop, accessToken, query, vars, &resp); err != nil {
		return nil, err
	}
	if err := userErrorsOrNil("draftOrderComplete", resp.DraftOrderComplete.UserErrors); err != nil {
		return nil, err
	}
	if resp.DraftOrderComplete.DraftOrder == nil {
		return nil, fmt.Errorf("draftOrderComplete returned no draft order")
	}
	return resp.DraftOrderComplete.DraftOrder.toDomain(), nil
}

// ListOpenDraftOrders lists open draft orders for the admin UI.
func (c *Client) ListOpenDraftOrders(ctx context.Context, shop, accessToken string, first int) ([]*domain.DraftOrder, error) {
	if first <= 0 {
		first = 50
	}
	query := fmt.Sprintf(`
		query listOpenDraftOrders($first: Int!) {
			draftOrders(first: $first, query: "status:open", reverse: true) {
				edges {
					node {%s}
				}
			}
		}`, draftOrderFields)

	var resp struct {
		DraftOrders struct {
			Edges []struct {
				Node gqlDraftOrder `json:"node"`
			} `json:"edges"`
		} `json:"draftOrders"`
	}

	vars := map[string]interface{}{"first": first}
	if err := c.gql(ctx, shop, accessToken, query, vars, &resp); err != nil {
		return nil, err
	}

	orders := make([]*domain.DraftOrder, 0, len(resp.DraftOrders.Edges))
	for _, e := range resp.DraftOrders.Edges {
		node := e.Node
		orders = append(orders, node.toDomain())
	}
	return orders, nil
}

// buildDraftOrderInput shapes the Admin API DraftOrderInput object.
func buildDraftOrderInput(input domain.DraftOrderInput) map[string]interface{} {
	lineItems := make([]map[string]interface{}, 0, len(input.LineItems))
	for _, li := range input.LineItems {
		item := map[string]interface{}{"quantity": li.Quantity}
		if li.VariantGID != "" {
			item["variantId"] = li.VariantGID
		} else {
			// custom line item
			item["title"] = li.Title
			if li.Price != nil {
				item["originalUnitPrice"] = li.Price.String()
			}
		}
		lineItems = append(lineItems, item)
	}

	out := map[string]interface{}{"lineItems": lineItems}

	if input.CustomerGID != "" {
		out["purchasingEntity"] = map[string]interface{}{"customerId": input.CustomerGID}
	} else if input.Email != "" {
		out["email"] = input.Email
	}
	if input.Note != "" {
		out["note"] = input.Note
	}
	if len(input.Tags) > 0 {
		out["tags"] = input.Tags
	}
	if len(input.Attributes) > 0 {
		attrs := make([]map[string]interface{}, 0, len(input.Attributes))
		for _, a := range input.Attributes {
			attrs = append(attrs, map[string]interface{}{"key": a.Name, "value": a.Value})
		}
		out["customAttributes"] = attrs
	}
	if input.Discount != nil {
		applied := map[string]interface{}{
			"description": input.Discount.Description,
			"value":       input.Discount.Value.InexactFloat64(),
			"valueType":   input.Discount.ValueType,
		}
		out["appliedDiscount"] = applied
	}
	return out
}
