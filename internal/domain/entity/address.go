package entity

import (
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Address is a wallet address that has already been decoded and checked
// against the Solana public key format.
type Address struct {
	key solana.PublicKey
}

// ParseAddress validates raw input as a base58 encoded 32 byte public key.
// It never touches the network.
func ParseAddress(raw string) (Address, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Address{}, &InvalidAddressError{Input: raw, Err: errEmptyAddress}
	}
	key, err := solana.PublicKeyFromBase58(trimmed)
	if err != nil {
		return Address{}, &InvalidAddressError{Input: raw, Err: err}
	}
	return Address{key: key}, nil
}

// PublicKey returns the decoded key.
func (a Address) PublicKey() solana.PublicKey {
	return a.key
}

func (a Address) String() string {
	return a.key.String()
}
