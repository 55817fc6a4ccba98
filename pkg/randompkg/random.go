// Package randompkg generates random fixtures for ledger tests.
package randompkg

import (
	"crypto/rand"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Float64 is a shortcut for generating a random float between 0 and 1 using crypto/rand.
func Float64() float64 {
	return float64(Intn(1<<32)) / (1 << 32)
}

// IntBetween generates a random integer in [min, max].
func IntBetween(min, max int) int64 {
	return int64(min) + Intn(max-min+1)
}

// FloatBetween generates a random number between min and max rounded down to 2 decimals.
func FloatBetween(min, max float64) float64 {
	numInRange := min + Float64()*(max-min)
	return math.Floor(numInRange*100) / 100
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// Name generates a random account holder name.
func Name() string {
	return String(6)
}

// Password generates a random credential.
func Password() string {
	return String(12)
}

// AccountNumber generates a random positive account number.
func AccountNumber() int64 {
	return IntBetween(1, 1_000_000)
}

// MoneyAmountBetween generates a random amount of money between min and max with cents precision.
func MoneyAmountBetween(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(FloatBetween(min, max)).Round(2)
}
