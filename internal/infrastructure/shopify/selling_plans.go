package shopify

import (
	"context"
	"fmt"
	"strings"

	"pickupstand/internal/domain"
)

func gqlInterval(unit domain.IntervalUnit) string {
	if unit == domain.IntervalMonth {
		return "MONTH"
	}
	return "WEEK"
}

// buildSellingPlansToCreate shapes the sellingPlansToCreate input for
// group create/update from the local definition.
func buildSellingPlansToCreate(def domain.SellingPlanGroupDefinition) []map[string]interface{} {
	plans := make([]map[string]interface{}, 0, len(def.Plans))
	for _, p := range def.Plans {
		recurring := map[string]interface{}{
			"interval":      gqlInterval(p.IntervalUnit),
			"intervalCount": p.IntervalCount,
		}
		plans = append(plans, map[string]interface{}{
			"name":     p.Name,
			"options":  []string{p.Name},
			"category": "SUBSCRIPTION",
			"billingPolicy": map[string]interface{}{
				"recurring": recurring,
			},
			"deliveryPolicy": map[string]interface{}{
				"recurring": recurring,
			},
			"pricingPolicies": []map[string]interface{}{
				{
					"fixed": map[string]interface{}{
						"adjustmentType": "PERCENTAGE",
						"adjustmentValue": map[string]interface{}{
							"percentage": p.DiscountPercent.InexactFloat64(),
						},
					},
				},
			},
		})
	}
	return plans
}

// SellingPlanGroupCreate creates a selling plan group and returns the
// GIDs Shopify assigned.
func (c *Client) SellingPlanGroupCreate(ctx context.Context, shop, accessToken string, def domain.SellingPlanGroupDefinition) (*domain.SellingPlanGroupResult, error) {
	query := `
		mutation sellingPlanGroupCreate($input: SellingPlanGroupInput!) {
			sellingPlanGroupCreate(input: $input) {
				sellingPlanGroup {
					id
					sellingPlans(first: 25) {
						edges {
							node {
								id
							}
						}
					}
				}
				userErrors {
					field
					message
				}
			}
		}`

	var resp struct {
		SellingPlanGroupCreate struct {
			SellingPlanGroup *struct {
				ID           string `json:"id"`
				SellingPlans struct {
					Edges []struct {
						Node struct {
							ID string `json:"id"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"sellingPlans"`
			} `json:"sellingPlanGroup"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"sellingPlanGroupCreate"`
	}

	vars := map[string]interface{}{
		"input": map[string]interface{}{
			"name":         def.Name,
			"merchantCode": def.MerchantCode,
			"options":      []string{"Delivery every"},
			"sellingPlansToCreate": buildSellingPlansToCreate(def),
		},
	}
	if err := c.gql(ctx, shop, accessToken, query, vars, &resp); err != nil {
		return nil, err
	}
	if err := userErrorsOrNil("sellingPlanGroupCreate", resp.SellingPlanGroupCreate.UserErrors); err != nil {
		return nil, err
	}
	group := resp.SellingPlanGroupCreate.SellingPlanGroup
	if group == nil {
		return nil, fmt.Errorf("sellingPlanGroupCreate returned no group")
	}

	result := &domain.SellingPlanGroupResult{GroupGID: group.ID}
	for _, e := range group.SellingPlans.Edges {
		result.PlanGIDs = append(result.PlanGIDs, e.Node.ID)
	}
	return result, nil
}

// SellingPlanGroupUpdate replaces a group's name, merchant code, and
// plans. Existing plans are dropped and recreated from the definition.
func (c *Client) SellingPlanGroupUpdate(ctx context.Context, shop, accessToken, groupGID string, def domain.SellingPlanGroupDefinition) error {
	query := `
		mutation sellingPlanGroupUpdate($id: ID!, $input: SellingPlanGroupInput!) {
			sellingPlanGroupUpdate(id: $id, input: $input) {
				sellingPlanGroup {
					id
				}
				userErrors {
					field
					message
				}
			}
		}`

	var resp struct {
		SellingPlanGroupUpdate struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"sellingPlanGroupUpdate"`
	}

	vars := map[string]interface{}{
		"id": groupGID,
		"input": map[string]interface{}{
			"name":                 def.Name,
			"merchantCode":         def.MerchantCode,
			"sellingPlansToCreate": buildSellingPlansToCreate(def),
		},
	}
	if err := c.gql(ctx, shop, accessToken, query, vars, &resp); err != nil {
		return err
	}
	return userErrorsOrNil("sellingPlanGroupUpdate", resp.SellingPlanGroupUpdate.UserErrors)
}

// SellingPlanGroupDelete deletes a selling plan group.
func (c *Client) SellingPlanGroupDelete(ctx context.Context, shop, accessToken, groupGID string) error {
	query := `
		mutation sellingPlanGroupDelete($id: ID!) {
			sellingPlanGroupDelete(id: $id) {
				deletedSellingPlanGroupId
				userErrors {
					field
					message
				}
			}
		}`

	var resp struct {
		SellingPlanGroupDelete struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"sellingPlanGroupDelete"`
	}

	vars := map[string]interface{}{"id": groupGID}
	if err := c.gql(ctx, shop, accessToken, query, vars, &resp); err != nil {
		return err
	}
	return userErrorsOrNil("sellingPlanGroupDelete", resp.SellingPlanGroupDelete.UserErrors)
}

// SellingPlanGroupAddProducts assigns products to a plan group.
func (c *Client) SellingPlanGroupAddProducts(ctx context.Context, shop, accessToken, groupGID string, productGIDs []string) error {
	return c.sellingPlanGroupProducts(ctx, shop, accessToken, "sellingPlanGroupAddProducts", groupGID, productGIDs)
}

// SellingPlanGroupRemoveProducts unassigns products from a plan group.
func (c *Client) SellingPlanGroupRemoveProducts(ctx context.Context, shop, accessToken, groupGID string, productGIDs []string) error {
	return c.sellingPlanGroupProducts(ctx, shop, accessToken, "sellingPlanGroupRemoveProducts", groupGID, productGIDs)
}

func (c *Client) sellingPlanGroupProducts(ctx context.Context, shop, accessToken, mutation, groupGID string, productGIDs []string) error {
	query := fmt.Sprintf(`
		mutation %s($id: ID!, $productIds: [ID!]!) {
			%s(id: $id, productIds: $productIds) {
				userErrors {
					field
					message
				}
			}
		}`, mutation, mutation)

	// The payload field is named after the mutation; decode generically.
	var resp map[string]struct {
		UserErrors []UserError `json:"userErrors"`
	}

	vars := map[string]interface{}{"id": groupGID, "productIds": productGIDs}
	if err := c.gql(ctx, shop, accessToken, query, vars, &resp); err != nil {
		return err
	}
	for name, payload := range resp {
		if strings.EqualFold(name, mutation) {
			return userErrorsOrNil(mutation, payload.UserErrors)
		}
	}
	return nil
}
