package util

import (
	"errors"

	"github.com/shopspring/decimal"
)

// BaseAmountPrecision is the number of fractional digits kept on derived
// base amounts.
const BaseAmountPrecision = 6

var ErrNonPositivePrice = errors.New("price must be positive")

// QuoteToBase converts a quote-denominated amount to the base amount at the
// given price: quoteAmount / price truncated to BaseAmountPrecision digits.
// Truncation (not round-half-up) keeps recomputation idempotent across
// repeated updates. Callers validate positivity; the zero-price guard here is
// terminal, not a recoverable condition.
func QuoteToBase(price, quoteAmount decimal.Decimal) (decimal.Decimal, error) {
	if price.Sign() <= 0 {
		return decimal.Decimal{}, ErrNonPositivePrice
	}

	// QuoRem truncates toward zero at exactly the requested precision, which
	// for positive operands is the floor. Dividing first and rounding after
	// could carry a rounded guard digit across the 6th place.
	quotient, _ := quoteAmount.QuoRem(price, BaseAmountPrecision)

	return quotient, nil
}
