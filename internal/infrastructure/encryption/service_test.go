package encryption

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString(make([]byte, 32))
}

func TestNewService(t *testing.T) {
	t.Run("rejects non-base64 key", func(t *testing.T) {
		_, err := NewService("not base64!!!")
		assert.Error(t, err)
	})

	t.Run("rejects wrong key length", func(t *testing.T) {
		_, err := NewService(base64.StdEncoding.EncodeToString(make([]byte, 16)))
		assert.Error(t, err)
	})

	t.Run("accepts 32-byte key", func(t *testing.T) {
		_, err := NewService(testKey())
		assert.NoError(t, err)
	})
}

func TestEncryptDecrypt(t *testing.T) {
	svc, err := NewService(testKey())
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		ct, err := svc.Encrypt("shpat_secret_token")
		require.NoError(t, err)
		assert.NotEqual(t, "shpat_secret_token", ct)

		pt, err := svc.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, "shpat_secret_token", pt)
	})

	t.Run("nonces differ per call", func(t *testing.T) {
		a, err := svc.Encrypt("x")
		require.NoError(t, err)
		b, err := svc.Encrypt("x")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("tampered ciphertext fails", func(t *testing.T) {
		ct, err := svc.Encrypt("x")
		require.NoError(t, err)
		_, err = svc.Decrypt(ct[:len(ct)-2])
		assert.Error(t, err)
	})

	t.Run("short ciphertext fails", func(t *testing.T) {
		_, err := svc.Decrypt("AAAA")
		assert.Error(t, err)
	})
}
