package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidAddress is matched by every address validation failure.
	ErrInvalidAddress = errors.New("invalid wallet address")
	// ErrChainUnavailable is matched when every configured chain endpoint failed.
	ErrChainUnavailable = errors.New("chain data unavailable")

	errEmptyAddress = errors.New("address is empty")
)

// InvalidAddressError carries the rejected input and the decoder error.
type InvalidAddressError struct {
	Input string
	Err   error
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid wallet address %q: %v", e.Input, e.Err)
}

func (e *InvalidAddressError) Is(target error) bool {
	return target == ErrInvalidAddress
}

func (e *InvalidAddressError) Unwrap() error {
	return e.Err
}

// EndpointFailure records why a single chain endpoint was abandoned.
type EndpointFailure struct {
	Endpoint string
	Err      error
}

// ChainUnavailableError is returned once the endpoint list is exhausted.
// Attempts are kept in the order the endpoints were tried.
type ChainUnavailableError struct {
	Attempts []EndpointFailure
}

func (e *ChainUnavailableError) Error() string {
	if len(e.Attempts) == 0 {
		return "chain data unavailable: no endpoints configured"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Endpoint, a.Err))
	}
	return fmt.Sprintf("chain data unavailable after %d endpoint(s): %s", len(e.Attempts), strings.Join(parts, "; "))
}

func (e *ChainUnavailableError) Is(target error) bool {
	return target == ErrChainUnavailable
}

// Unwrap exposes the last underlying error for diagnostics.
func (e *ChainUnavailableError) Unwrap() error {
	return e.Last()
}

// Last returns the error of the final endpoint attempt, or nil.
func (e *ChainUnavailableError) Last() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}
