package utils

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// ScaleRawAmount converts an integer amount in the smallest unit into a
// human-readable amount, e.g. raw="1000000", decimals=6 => 1.
func ScaleRawAmount(raw string, decimals uint8) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse raw amount %q: %w", raw, err)
	}
	if !d.Equal(d.Truncate(0)) {
		return decimal.Zero, fmt.Errorf("raw amount %q is not an integer", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("raw amount %q is negative", raw)
	}
	return d.Shift(-int32(decimals)), nil
}

// ScaleUint is ScaleRawAmount for native balances reported as integers.
func ScaleUint(raw uint64, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), 0).Shift(-decimals)
}

// exactFloatDigits covers the 1074 fractional binary digits a float64 can
// carry, so the decimal expansion is exact.
const exactFloatDigits = 1100

// Fixed renders v to places decimals the way Number.prototype.toFixed does:
// the exact binary value is rounded, ties away from zero. 1.005 is stored as
// 1.00499... and renders as "1.00". Non-finite values render as zero.
func Fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero.StringFixed(places)
	}
	exact, err := decimal.NewFromString(new(big.Float).SetFloat64(v).Text('f', exactFloatDigits))
	if err != nil {
		return decimal.NewFromFloat(v).StringFixed(places)
	}
	return exact.StringFixed(places)
}
