package pnl

import (
	"github.com/shopspring/decimal"
)

// Transaction is a deposit or withdrawal in a single-asset vault.
type Transaction struct {
	Shares       decimal.Decimal // positive for a deposit, negative for a withdrawal
	Price        decimal.Decimal // USD per unit of underlying
	ExchangeRate decimal.Decimal // underlying per share (price per full share)
}

// Lot is a deposit, consumed by later withdrawals.
type Lot struct {
	BoughtShares      decimal.Decimal
	RemainingShares   decimal.Decimal
	EntryPrice        decimal.Decimal
	EntryExchangeRate decimal.Decimal
}

func (l *Lot) remaining() decimal.Decimal   { return l.RemainingShares }
func (l *Lot) reduce(sold decimal.Decimal) { l.RemainingShares = l.RemainingShares.Sub(sold) }

// entry values shares of this lot at its entry conditions.
func (l *Lot) entry(shares decimal.Decimal) Result {
	underlying := shares.Mul(l.EntryExchangeRate)
	return Result{Shares: underlying, USD: underlying.Mul(l.EntryPrice)}
}

// Result is an amount in underlying terms (Shares) together with its USD value.
// It is used for PnL figures as well as valuations.
type Result struct {
	Shares decimal.Decimal
	USD    decimal.Decimal
}

func (r Result) Add(o Result) Result {
	return Result{Shares: r.Shares.Add(o.Shares), USD: r.USD.Add(o.USD)}
}

func (r Result) Sub(o Result) Result {
	return Result{Shares: r.Shares.Sub(o.Shares), USD: r.USD.Sub(o.USD)}
}

func (r Result) Equal(o Result) bool { return r.Shares.Equal(o.Shares) && r.USD.Equal(o.USD) }
func (r Result) IsZero() bool        { return r.Shares.IsZero() && r.USD.IsZero() }

func (r Result) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("shares", r.Shares)
	w.Append("usd", r.USD)
	return w.MarshalJSON()
}

// Ledger tracks a single-asset vault position as a FIFO queue of lots.
// The zero value is an empty ledger.
type Ledger struct {
	lots     fifo[*Lot]
	realized Result
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger { return &Ledger{} }

// AddTransaction applies tx to the position.
//
// A zero share delta is ignored. A deposit opens a lot. A withdrawal consumes
// lots oldest first and books the realized PnL; if it exceeds the remaining
// shares it returns an *OverdraftError and the ledger is unchanged.
//
// The USD value of a withdrawn slice uses the entry price of its lot, not
// tx.Price: realized PnL measures the growth of the underlying, priced at
// entry. Price moves are reported by UnrealizedPnl only.
func (l *Ledger) AddTransaction(tx Transaction) error {
	switch {
	case tx.Shares.IsZero():
		return nil
	case tx.Shares.IsPositive():
		l.lots.push(&Lot{
			BoughtShares:      tx.Shares,
			RemainingShares:   tx.Shares,
			EntryPrice:        tx.Price,
			EntryExchangeRate: tx.ExchangeRate,
		})
		return nil
	}

	var booked Result
	err := l.lots.consume(tx.Shares.Neg(), func(lot *Lot, sold decimal.Decimal) {
		withdrawn := sold.Mul(tx.ExchangeRate)
		exit := Result{Shares: withdrawn, USD: withdrawn.Mul(lot.EntryPrice)}
		booked = booked.Add(exit.Sub(lot.entry(sold)))
	})
	if err != nil {
		return err
	}
	l.realized = l.realized.Add(booked)
	return nil
}

// RealizedPnl returns the PnL booked by withdrawals so far.
func (l *Ledger) RealizedPnl() Result { return l.realized }

// UnrealizedPnl returns the PnL of the remaining shares if they were valued at
// the given price and exchange rate.
func (l *Ledger) UnrealizedPnl(price, exchangeRate decimal.Decimal) Result {
	return l.MarketValue(price, exchangeRate).Sub(l.CostBasis())
}

// MarketValue returns the underlying amount and USD value of the remaining
// shares at the given price and exchange rate.
func (l *Ledger) MarketValue(price, exchangeRate decimal.Decimal) Result {
	underlying := l.RemainingShares().Mul(exchangeRate)
	return Result{Shares: underlying, USD: underlying.Mul(price)}
}

// CostBasis returns the entry underlying amount and USD value of the remaining
// shares.
func (l *Ledger) CostBasis() Result {
	var total Result
	for lot := range l.lots.held() {
		total = total.Add(lot.entry(lot.RemainingShares))
	}
	return total
}

// RemainingShares returns the shares still held.
func (l *Ledger) RemainingShares() decimal.Decimal { return l.lots.remaining() }

// RemainingSharesAvgEntryPrice returns the entry price averaged over the
// remaining shares, zero if none.
func (l *Ledger) RemainingSharesAvgEntryPrice() decimal.Decimal {
	var avg weighted
	for lot := range l.lots.held() {
		avg.add(lot.EntryPrice, lot.RemainingShares)
	}
	return avg.average()
}

// RemainingSharesAvgEntryExchangeRate returns the entry exchange rate averaged
// over the remaining shares, zero if none.
func (l *Ledger) RemainingSharesAvgEntryExchangeRate() decimal.Decimal {
	var avg weighted
	for lot := range l.lots.held() {
		avg.add(lot.EntryExchangeRate, lot.RemainingShares)
	}
	return avg.average()
}

// Lots returns a copy of every lot, oldest first, exhausted ones included.
func (l *Ledger) Lots() []Lot {
	var lots []Lot
	for lot := range l.lots.all() {
		lots = append(lots, *lot)
	}
	return lots
}
