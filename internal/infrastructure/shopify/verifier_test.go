package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookVerifier(t *testing.T) {
	v := NewWebhookVerifier("shpss_secret")
	payload := []byte(`{"id":123,"name":"#1001"}`)

	t.Run("valid signature passes", func(t *testing.T) {
		assert.NoError(t, v.Verify(payload, sign("shpss_secret", payload)))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		assert.Error(t, v.Verify(payload, sign("other_secret", payload)))
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		sig := sign("shpss_secret", payload)
		assert.Error(t, v.Verify([]byte(`{"id":124}`), sig))
	})

	t.Run("missing header fails", func(t *testing.T) {
		assert.Error(t, v.Verify(payload, ""))
	})

	t.Run("non-base64 header fails", func(t *testing.T) {
		assert.Error(t, v.Verify(payload, "!!not-base64!!"))
	})
}
