package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ValidateAddress checks that s is a base58-encoded 32-byte Solana address.
func ValidateAddress(s string) error {
	if s == "" {
		return fmt.Errorf("empty address")
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("decode address %q: %w", s, err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("address %q decodes to %d bytes, want 32", s, len(decoded))
	}
	return nil
}

// IsOnCurve reports whether the address decodes to a point on the ed25519
// curve. Wallet addresses are on-curve; program derived addresses are not.
func IsOnCurve(s string) bool {
	decoded, err := base58.Decode(s)
	if err != nil || len(decoded) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}
