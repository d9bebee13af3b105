package domain

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is an amount in the minor unit of its currency.
type Cents int64

// ApplyRate returns amount × rate rounded half away from zero.
func ApplyRate(amount Cents, rate float64) Cents {
	return Cents(decimal.NewFromInt(int64(amount)).Mul(decimal.NewFromFloat(rate)).Round(0).IntPart())
}

// TaxOn returns amount × rate truncated toward zero.
func TaxOn(amount Cents, rate float64) Cents {
	return Cents(decimal.NewFromInt(int64(amount)).Mul(decimal.NewFromFloat(rate)).Truncate(0).IntPart())
}

// NormalizeCurrency upper-cases a three letter currency code.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", Invalid("invalid_currency", "currency must be a 3-letter code")
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return "", Invalid("invalid_currency", "currency must be a 3-letter code")
		}
	}
	return code, nil
}

// ValidRate reports whether rate is a finite fraction in [0, max].
func ValidRate(rate, max float64) bool {
	return !math.IsNaN(rate) && !math.IsInf(rate, 0) && rate >= 0 && rate <= max
}

// ClampRate limits rate to [0, 1].
func ClampRate(rate float64) float64 {
	switch {
	case math.IsNaN(rate) || rate < 0:
		return 0
	case rate > 1:
		return 1
	default:
		return rate
	}
}
