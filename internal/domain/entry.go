package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidPage indicates a page number or page size below 1.
var ErrInvalidPage = fmt.Errorf("%w: invalid page", ErrValidation)

// Entry records one committed balance change of an account.
//
// Amount is positive for deposits and negative for withdrawals.
type Entry struct {
	ID            int64           `json:"id"`
	AccountNumber int64           `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
}
