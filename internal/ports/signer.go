package ports

// Signer produces a deterministic signature over a plaintext message.
// Implementations are pure and safe for concurrent use.
type Signer interface {
	Sign(message string) ([]byte, error)
}
