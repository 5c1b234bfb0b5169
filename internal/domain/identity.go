package domain

// WalletAddress identifies the rewards account on the dashboard. It is
// treated as an opaque identifier; the dashboard does the checksumming.
type WalletAddress string

// Identity is the process-wide account identity shared read-only by every
// worker. The private signing key deliberately lives inside the signer
// adapter, not here, so it cannot leak through logs or stats snapshots.
type Identity struct {
	Wallet WalletAddress
}
