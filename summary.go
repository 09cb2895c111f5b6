package pnl

import (
	"github.com/shopspring/decimal"
)

// Quote is the current state of a single-asset vault.
type Quote struct {
	Price        decimal.Decimal // USD per unit of underlying
	ExchangeRate decimal.Decimal // underlying per share
}

// Summary is the state of a single-asset position at a quote.
type Summary struct {
	Quote                Quote
	RemainingShares      decimal.Decimal
	AvgEntryPrice        decimal.Decimal
	AvgEntryExchangeRate decimal.Decimal
	CostBasis            Result
	MarketValue          Result
	Realized             Result
	Unrealized           Result
}

// NewSummary reads every figure of the ledger at the quote.
func NewSummary(l *Ledger, q Quote) Summary {
	return Summary{
		Quote:                q,
		RemainingShares:      l.RemainingShares(),
		AvgEntryPrice:        l.RemainingSharesAvgEntryPrice(),
		AvgEntryExchangeRate: l.RemainingSharesAvgEntryExchangeRate(),
		CostBasis:            l.CostBasis(),
		MarketValue:          l.MarketValue(q.Price, q.ExchangeRate),
		Realized:             l.RealizedPnl(),
		Unrealized:           l.UnrealizedPnl(q.Price, q.ExchangeRate),
	}
}

// Total is the realized plus unrealized PnL.
func (s Summary) Total() Result { return s.Realized.Add(s.Unrealized) }

// Return is the unrealized USD PnL relative to the cost basis.
func (s Summary) Return() Percent { return ratio(s.Unrealized.USD, s.CostBasis.USD) }

// YieldReturn is the unrealized growth of the underlying relative to the
// underlying deposited, independent of the price.
func (s Summary) YieldReturn() Percent { return ratio(s.Unrealized.Shares, s.CostBasis.Shares) }

func (s Summary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("price", s.Quote.Price)
	w.Append("exchangeRate", s.Quote.ExchangeRate)
	w.Append("remainingShares", s.RemainingShares)
	w.Append("avgEntryPrice", s.AvgEntryPrice)
	w.Append("avgEntryExchangeRate", s.AvgEntryExchangeRate)
	w.Append("costBasis", s.CostBasis)
	w.Append("marketValue", s.MarketValue)
	w.Append("realized", s.Realized)
	w.Append("unrealized", s.Unrealized)
	w.Append("return", s.Return())
	return w.MarshalJSON()
}

// ClmSummary is the state of a concentrated-liquidity position at a quote.
type ClmSummary struct {
	Quote       ClmQuote
	Remaining   ClmRemaining
	EntryPrice  ClmEntryPrice
	CostBasis   Result
	MarketValue Result
	Realized    Result
	Unrealized  Result
	HoldUSD     decimal.Decimal
	Claimed     Claimed
}

// NewClmSummary reads every figure of the ledger at the quote.
func NewClmSummary(l *ClmLedger, q ClmQuote) ClmSummary {
	return ClmSummary{
		Quote:       q,
		Remaining:   l.RemainingShares(),
		EntryPrice:  l.RemainingSharesAvgEntryPrice(),
		CostBasis:   l.CostBasis(),
		MarketValue: l.MarketValue(q),
		Realized:    l.RealizedPnl(),
		Unrealized:  l.UnrealizedPnl(q),
		HoldUSD:     l.HoldUSD(q),
		Claimed:     l.Claimed(),
	}
}

// Total is the realized and unrealized PnL plus the claimed rewards, in USD.
func (s ClmSummary) Total() decimal.Decimal {
	return s.Realized.USD.Add(s.Unrealized.USD).Add(s.Claimed.TotalUSD)
}

// VsHold is the USD difference between staying in the pool and holding the
// entry tokens.
func (s ClmSummary) VsHold() decimal.Decimal { return s.MarketValue.USD.Sub(s.HoldUSD) }

// Return is the unrealized USD PnL relative to the cost basis.
func (s ClmSummary) Return() Percent { return ratio(s.Unrealized.USD, s.CostBasis.USD) }

func (s ClmSummary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("token0ToUsd", s.Quote.Token0ToUsd)
	w.Append("token1ToUsd", s.Quote.Token1ToUsd)
	w.Append("remaining", s.Remaining)
	w.Append("entryPrice", s.EntryPrice)
	w.Append("costBasis", s.CostBasis)
	w.Append("marketValue", s.MarketValue)
	w.Append("realized", s.Realized)
	w.Append("unrealized", s.Unrealized)
	w.Append("holdUsd", s.HoldUSD)
	w.Append("claimed", s.Claimed)
	w.Append("return", s.Return())
	return w.MarshalJSON()
}
