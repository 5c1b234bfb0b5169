package signer

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/bnema/layeredge-farmer/internal/domain"
	"github.com/bnema/layeredge-farmer/internal/ports"
	"github.com/ethereum/go-ethereum/crypto"
)

const personalMessagePrefix = "\x19Ethereum Signed Message:\n"

// Ethereum signs plaintext messages with an EIP-191 personal-message
// envelope, matching what the dashboard's web frontend asks wallets to sign.
// The signature is deterministic (RFC 6979 nonces) and the type is safe for
// concurrent use once constructed.
type Ethereum struct {
	key *ecdsa.PrivateKey
}

var _ ports.Signer = (*Ethereum)(nil)

// NewEthereum parses a hex-encoded secp256k1 private key, with or without a
// 0x prefix. A key that fails to parse wraps domain.ErrMalformedKey.
func NewEthereum(hexKey string) (*Ethereum, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty key", domain.ErrMalformedKey)
	}

	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedKey, err)
	}

	return &Ethereum{key: key}, nil
}

func (s *Ethereum) Sign(message string) ([]byte, error) {
	digest := personalHash(message)

	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}

	return sig, nil
}

// Address derives the wallet address belonging to the signing key.
func (s *Ethereum) Address() domain.WalletAddress {
	return domain.WalletAddress(crypto.PubkeyToAddress(s.key.PublicKey).Hex())
}

func personalHash(message string) []byte {
	envelope := fmt.Sprintf("%s%d%s", personalMessagePrefix, len(message), message)
	return crypto.Keccak256([]byte(envelope))
}
