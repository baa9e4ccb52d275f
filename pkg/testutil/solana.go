package testutil

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"
)

// GenerateSolanaKeypair returns a fresh keypair for accounts that need to
// sign transactions.
func GenerateSolanaKeypair(t *testing.T) ed25519.PrivateKey {
	_, private, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return private
}

// GenerateSolanaKeys returns n fresh public keys for accounts that are only
// referenced, never signed for outside of Bank.Execute.
func GenerateSolanaKeys(t *testing.T, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, n)
	for i := range keys {
		keys[i] = PublicKey(GenerateSolanaKeypair(t))
	}
	return keys
}

// PublicKey returns the public half of a keypair.
func PublicKey(private ed25519.PrivateKey) ed25519.PublicKey {
	return private.Public().(ed25519.PublicKey)
}
