package metrics

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Monetary values stay in decimal form from the first parse until final
// serialization. The helpers below are the only places where raw wire
// representations (scaled integers, JSON numbers) become decimals.

// FromRaw converts a raw integer amount with the given decimals into human
// units, exactly.
func FromRaw(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// FromNumber parses a JSON number into a decimal. An absent field decodes
// to the empty json.Number; that is a zero by policy, not an error.
func FromNumber(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad number %q", ErrMalformed, n)
	}
	return d, nil
}

// ParseRawAmount parses a stringly-encoded raw integer amount.
func ParseRawAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad raw amount %q", ErrMalformed, s)
	}
	return v, nil
}
