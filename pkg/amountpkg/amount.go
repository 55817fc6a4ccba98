// Package amountpkg parses and validates money amounts.
package amountpkg

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// Scale is the number of fractional digits the ledger stores.
const Scale = 2

// Precision is the total number of digits of a stored amount, matching NUMERIC(18, 2).
const Precision = 18

// maxInputLength bounds the raw input before it is parsed.
const maxInputLength = 40

// MaxAmount is the largest amount and the largest balance the ledger stores.
var MaxAmount = decimal.New(1, Precision-Scale).Sub(decimal.New(1, -Scale))

// Parse converts s into a non-negative amount with at most Scale fractional digits
// that does not exceed MaxAmount.
//
// Exponent notation is rejected.
func Parse(s string) (decimal.Decimal, error) {
	if len(s) > maxInputLength || strings.ContainsAny(s, "eE") {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	if !amount.Equal(amount.Round(Scale)) {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	if amount.IsNegative() {
		return decimal.Zero, domain.ErrNegativeAmount
	}

	if amount.GreaterThan(MaxAmount) {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	return amount, nil
}

// ValidAmount validates whether the field holds an amount accepted by Parse.
var ValidAmount validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, err := Parse(s)
		return err == nil
	}

	return false
}
