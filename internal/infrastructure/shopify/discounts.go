package shopify

import (
	"context"
	"fmt"
	"time"

	"pickupstand/internal/domain"

	"github.com/shopspring/decimal"
)

// The API wants percentages as a 0..1 fraction.
var hundred = decimal.NewFromInt(100)

// buildBasicCodeDiscount shapes the DiscountCodeBasicInput object.
func buildBasicCodeDiscount(input domain.DiscountCodeInput) map[string]interface{} {
	discount := map[string]interface{}{
		"title": input.Title,
		"code":  input.Code,
		"customerGets": map[string]interface{}{
			"value": map[string]interface{}{
				"percentage": input.Percent.Div(hundred).InexactFloat64(),
			},
			"items": map[string]interface{}{
				"all": true,
			},
		},
		"customerSelection": map[string]interface{}{
			"all": true,
		},
		"startsAt": input.StartsAt.Format(time.RFC3339),
	}
	if input.EndsAt != nil {
		discount["endsAt"] = input.EndsAt.Format(time.RFC3339)
	}
	return discount
}

// DiscountCodeCreate creates a basic percentage discount code and
// returns the discount node GID.
func (c *Client) DiscountCodeCreate(ctx context.Context, shop, accessToken string, input domain.DiscountCodeInput) (string, error) {
	query := `
		mutation discountCodeBasicCreate($basicCodeDiscount: DiscountCodeBasicInput!) {
			discountCodeBasicCreate(basicCodeDiscount: $basicCodeDiscount) {
				codeDiscountNode {
					id
				}
				userErrors {
					field
					message
				}
			}
		}`

	var resp struct {
		DiscountCodeBasicCreate struct {
			CodeDiscountNode *struct {
				ID string `json:"id"`
			} `json:"codeDiscountNode"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"discountCodeBasicCreate"`
	}

	vars := map[string]interface{}{"basicCodeDiscount": buildBasicCodeDiscount(input)}
	if err := c.gql(ctx, shop, accessToken, query, vars, &resp); err != nil {
		return "", err
	}
	if err := userErrorsOrNil("discountCodeBasicCreate", resp.DiscountCodeBasicCreate.UserErrors); err != nil {
		return "", err
	}
	if resp.DiscountCodeBasicCreate.CodeDiscountNode == nil {
		return "", fmt.Errorf("discountCodeBasicCreate returned no discount node")
	}
	return resp.DiscountCodeBasicCreate.CodeDiscountNode.ID, nil
}

// DiscountCodeUpdate updates a basic discount code.
func (c *Client) DiscountCodeUpdate(ctx context.Context, shop, accessToken, discountGID string, input domain.DiscountCodeInput) error {
	query := `
		mutation discountCodeBasicUpdate($id: ID!, $basicCodeDiscount: DiscountCodeBasicInput!) {
			discountCodeBasicUpdate(id: $id, basicCodeDiscount: $basicCodeDiscount) {
				codeDiscountNode {
					id
				}
				userErrors {
					field
					message
				}
			}
		}`

	var resp struct {
		DiscountCodeBasicUpdate struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"discountCodeBasicUpdate"`
	}

	vars := map[string]interface{}{"id": discountGID, "basicCodeDiscount": buildBasicCodeDiscount(input)}
	if err := c.gql(ctx, shop, accessToken, query, vars, &resp); err != nil {
		return err
	}
	return userErrorsOrNil("discountCodeBasicUpdate", resp.DiscountCodeBasicUpdate.UserErrors)
}

// DiscountCodeDeactivate deactivates a discount code.
func (c *Client) DiscountCodeDeactivate(ctx context.Context, shop, accessToken, discountGID string) error {
	query := `
		mutation discountCodeDeactivate($id: ID!) {
			discountCodeDeactivate(id: $id) {
				codeDiscountNode {
					id
				}
				userErrors {
					field
					message
				}
			}
		}`

	var resp struct {
		DiscountCodeDeactivate struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"discountCodeDeactivate"`
	}

	vars := map[string]interface{}{"id": discountGID}
	if err := c.gql(ctx, shop, accessToken, query, vars, &resp); err != nil {
		return err
	}
	return userErrorsOrNil("discountCodeDeactivate", resp.DiscountCodeDeactivate.UserErrors)
}
