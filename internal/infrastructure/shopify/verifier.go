package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// WebhookVerifier verifies the X-Shopify-Hmac-SHA256 signature of
// webhook payloads using the app's shared secret.
type WebhookVerifier struct {
	secret []byte
}

// NewWebhookVerifier creates a verifier for the given secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Verify checks the payload against the base64-encoded HMAC header.
func (v *WebhookVerifier) Verify(payload []byte, hmacHeader string) error {
	if hmacHeader == "" {
		return errors.New("missing hmac header")
	}
	expected, err := base64.StdEncoding.DecodeString(hmacHeader)
	if err != nil {
		return errors.New("malformed hmac header")
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), expected) {
		return errors.New("hmac mismatch")
	}
	return nil
}
