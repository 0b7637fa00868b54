package shopify

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// UserError is one entry of a mutation's userErrors field.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// UserErrorsError wraps the userErrors a GraphQL mutation returned.
type UserErrorsError struct {
	Op     string
	Errors []UserError
}

func (e *UserErrorsError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ue := range e.Errors {
		msgs[i] = ue.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, strings.Join(msgs, "; "))
}

// userErrorsOrNil converts a userErrors slice into an error value.
func userErrorsOrNil(op string, errs []UserError) error {
	if len(errs) == 0 {
		return nil
	}
	return &UserErrorsError{Op: op, Errors: errs}
}

const (
	gqlMaxAttempts  = 3
	gqlInitialDelay = 500 * time.Millisecond
)

// gql runs an Admin GraphQL request with a small capped backoff on
// THROTTLED/429 responses. Everything else fails fast.
func (c *Client) gql(ctx context.Context, shopDomain, accessToken, query string, variables map[string]interface{}, response interface{}) error {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return err
	}

	delay := gqlInitialDelay
	for attempt := 1; ; attempt++ {
		err = client.GraphQL.Query(ctx, query, variables, response)
		if err == nil {
			return nil
		}
		if attempt >= gqlMaxAttempts || !isThrottled(err) {
			return fmt.Errorf("graphql request failed: %w", err)
		}

		c.logger.Warn().
			Err(err).
			Str("shop", shopDomain).
			Int("attempt", attempt).
			Msg("Shopify GraphQL throttled, backing off")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func isThrottled(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "throttled") || strings.Contains(msg, "429")
}
