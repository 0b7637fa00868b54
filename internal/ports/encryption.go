package ports

// EncryptionService encrypts secrets at rest (Shopify access tokens,
// Google refresh tokens).
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
