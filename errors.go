package pnl

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrOverdraft is returned when a withdrawal asks for more shares than the
// position holds.
var ErrOverdraft = errors.New("withdrawal exceeds remaining shares")

// OverdraftError details a rejected withdrawal. The ledger is left unchanged.
type OverdraftError struct {
	Requested decimal.Decimal // shares asked for
	Available decimal.Decimal // shares held when the withdrawal was processed
}

func (e *OverdraftError) Error() string {
	return fmt.Sprintf("cannot withdraw %s shares: only %s remaining", e.Requested, e.Available)
}

// Unwrap makes errors.Is(err, ErrOverdraft) hold.
func (e *OverdraftError) Unwrap() error { return ErrOverdraft }
