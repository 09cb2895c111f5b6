package pnl

import (
	"iter"

	"github.com/shopspring/decimal"
)

// lot is what the fifo queue needs to know about a deposit.
type lot interface {
	remaining() decimal.Decimal
	// reduce removes sold shares from the lot, sold never exceeds remaining().
	reduce(sold decimal.Decimal)
}

// fifo is a queue of lots consumed in the order they were pushed.
//
// Exhausted lots are kept in place and skipped, so the index of a lot never
// changes. The zero value is an empty queue.
type fifo[L lot] struct {
	lots []L
}

func (f *fifo[L]) push(l L) { f.lots = append(f.lots, l) }

// remaining returns the quantity held across all lots.
func (f *fifo[L]) remaining() decimal.Decimal {
	total := decimal.Zero
	for _, l := range f.lots {
		total = total.Add(l.remaining())
	}
	return total
}

// all iterates over every lot ever pushed, oldest first.
func (f *fifo[L]) all() iter.Seq[L] {
	return func(yield func(L) bool) {
		for _, l := range f.lots {
			if !yield(l) {
				return
			}
		}
	}
}

// held iterates over lots with a positive remaining quantity, oldest first.
func (f *fifo[L]) held() iter.Seq[L] {
	return func(yield func(L) bool) {
		for _, l := range f.lots {
			if !l.remaining().IsPositive() {
				continue
			}
			if !yield(l) {
				return
			}
		}
	}
}

// consume sells quantity from the oldest lots first.
//
// sell is called once per lot touched with the quantity taken from it, before
// the lot is reduced. If the queue holds less than quantity nothing is sold and
// an *OverdraftError is returned.
func (f *fifo[L]) consume(quantity decimal.Decimal, sell func(l L, sold decimal.Decimal)) error {
	if available := f.remaining(); available.LessThan(quantity) {
		return &OverdraftError{Requested: quantity, Available: available}
	}

	toSell := quantity
	for l := range f.held() {
		if toSell.IsZero() {
			break
		}
		sold := decimal.Min(toSell, l.remaining())
		sell(l, sold)
		l.reduce(sold)
		toSell = toSell.Sub(sold)
	}
	return nil
}
