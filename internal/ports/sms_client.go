package ports

import "context"

// SmsClient defines the outbound SMS operations.
type SmsClient interface {
	// Send queues an SMS and returns the provider message SID and the
	// initial delivery status.
	Send(ctx context.Context, to, body string) (sid string, status string, err error)

	// ValidateSignature checks an inbound webhook signature. Adapters
	// may be configured to skip validation, in which case it returns
	// true.
	ValidateSignature(url string, params map[string]string, signature string) bool
}
