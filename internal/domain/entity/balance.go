package entity

import "time"

// TokenAccountBalance is one token account as reported by getTokenAccountsByOwner.
// Amount is the raw integer amount exactly as the RPC returned it.
type TokenAccountBalance struct {
	Account  string
	Mint     string
	Amount   string
	Decimals uint8
}

// SignatureInfo is one entry of getSignaturesForAddress.
type SignatureInfo struct {
	Signature          string
	Slot               uint64
	BlockTime          *time.Time
	ConfirmationStatus string
	Failed             bool
}

// RawChainSnapshot is everything read from a single endpoint for one address.
// It is built per attempt and not modified after it is returned.
type RawChainSnapshot struct {
	Endpoint      string
	NativeBalance uint64
	TokenAccounts []TokenAccountBalance
	Signatures    []SignatureInfo
}
