package ports

import "context"

// KeyStore resolves the account's private signing key at startup. The key is
// read once, handed to the signer, and never passed around afterwards.
type KeyStore interface {
	PrivateKey(ctx context.Context) (string, error)
}
