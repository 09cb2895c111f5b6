package pnl

import (
	"maps"

	"github.com/shopspring/decimal"
)

// Claim is a reward harvested alongside a concentrated-liquidity transaction.
type Claim struct {
	Address       string          `json:"address"`       // reward token address
	RewardToUsd   decimal.Decimal `json:"rewardToUsd"`   // USD per reward token
	ClaimedAmount decimal.Decimal `json:"claimedAmount"` // tokens claimed
}

// ClmTransaction is a deposit, withdrawal or claim in a concentrated-liquidity
// vault, where a share is a claim on two pool tokens.
//
// Amounts are the magnitudes moved by the transaction; the direction is given
// by the sign of Shares.
type ClmTransaction struct {
	Shares decimal.Decimal // positive for a deposit, negative for a withdrawal, zero for a claim only

	UnderlyingToUsd decimal.Decimal
	Token0ToUsd     decimal.Decimal
	Token1ToUsd     decimal.Decimal

	UnderlyingAmount decimal.Decimal
	Token0Amount     decimal.Decimal
	Token1Amount     decimal.Decimal

	Claims []Claim
}

// ClmLot is a concentrated-liquidity deposit: its shares and the pool tokens
// they represented at entry.
type ClmLot struct {
	BoughtShares    decimal.Decimal
	RemainingShares decimal.Decimal

	UnderlyingToUsd decimal.Decimal
	Token0ToUsd     decimal.Decimal
	Token1ToUsd     decimal.Decimal

	// token amounts backing RemainingShares, shrinking pro rata on withdrawal.
	UnderlyingAmount decimal.Decimal
	Token0Amount     decimal.Decimal
	Token1Amount     decimal.Decimal
}

func (l *ClmLot) remaining() decimal.Decimal { return l.RemainingShares }

func (l *ClmLot) reduce(sold decimal.Decimal) {
	taken := l.portion(sold)
	l.UnderlyingAmount = l.UnderlyingAmount.Sub(taken.underlying)
	l.Token0Amount = l.Token0Amount.Sub(taken.token0)
	l.Token1Amount = l.Token1Amount.Sub(taken.token1)
	l.RemainingShares = l.RemainingShares.Sub(sold)
}

// EntryUSD is the value of the lot's token amounts at their entry prices.
func (l *ClmLot) EntryUSD() decimal.Decimal {
	return l.Token0Amount.Mul(l.Token0ToUsd).Add(l.Token1Amount.Mul(l.Token1ToUsd))
}

// legs is a slice of a lot or a transaction.
type legs struct {
	underlying, token0, token1, usd decimal.Decimal
}

// portion returns the share of the lot backing shares, with its entry value.
func (l *ClmLot) portion(shares decimal.Decimal) legs {
	if shares.Equal(l.RemainingShares) {
		return legs{l.UnderlyingAmount, l.Token0Amount, l.Token1Amount, l.EntryUSD()}
	}
	// each leg is rounded once, by its own division
	return legs{
		underlying: l.prorate(l.UnderlyingAmount, shares),
		token0:     l.prorate(l.Token0Amount, shares),
		token1:     l.prorate(l.Token1Amount, shares),
		usd:        l.prorate(l.EntryUSD(), shares),
	}
}

func (l *ClmLot) prorate(amount, shares decimal.Decimal) decimal.Decimal {
	return safeDiv(amount.Mul(shares), l.RemainingShares)
}

// ClaimedToken is the total claimed for one reward token.
type ClaimedToken struct {
	Amount decimal.Decimal `json:"amount"`
	USD    decimal.Decimal `json:"usd"`
}

// Claimed is the total of all reward claims of a position.
type Claimed struct {
	TotalUSD decimal.Decimal         `json:"totalUsd"`
	Tokens   map[string]ClaimedToken `json:"tokens"` // by reward token address
}

// ClmRemaining is what a concentrated-liquidity position still holds, valued
// in pool tokens at entry.
type ClmRemaining struct {
	Shares     decimal.Decimal `json:"shares"`
	Underlying decimal.Decimal `json:"underlying"`
	Token0     decimal.Decimal `json:"token0"`
	Token1     decimal.Decimal `json:"token1"`
}

// ClmEntryPrice is the average USD entry price of each pool token.
type ClmEntryPrice struct {
	Token0 decimal.Decimal `json:"token0"`
	Token1 decimal.Decimal `json:"token1"`
}

// ClmQuote is the current state of a concentrated-liquidity vault.
type ClmQuote struct {
	Token0ToUsd     decimal.Decimal
	Token1ToUsd     decimal.Decimal
	UnderlyingToUsd decimal.Decimal

	// pool tokens currently backing one share
	Token0PerShare     decimal.Decimal
	Token1PerShare     decimal.Decimal
	UnderlyingPerShare decimal.Decimal
}

// ClmLedger tracks a concentrated-liquidity vault position as a FIFO queue of
// lots, and accumulates reward claims. The zero value is an empty ledger.
type ClmLedger struct {
	lots     fifo[*ClmLot]
	realized Result
	claimed  Claimed
}

// NewClmLedger returns an empty ledger.
func NewClmLedger() *ClmLedger { return &ClmLedger{} }

// AddTransaction applies tx to the position.
//
// A deposit opens a lot with the token amounts it brought. A withdrawal
// consumes lots oldest first, each lot giving up its token amounts pro rata;
// the realized PnL of a slice is the transaction's token amounts at their
// current prices, pro rata of the shares taken from the lot, minus the entry
// value of those shares. Claims with a positive amount are accumulated
// whatever the share delta.
//
// If a withdrawal exceeds the remaining shares it returns an *OverdraftError
// and nothing is applied, claims included.
func (l *ClmLedger) AddTransaction(tx ClmTransaction) error {
	switch {
	case tx.Shares.IsPositive():
		l.lots.push(&ClmLot{
			BoughtShares:     tx.Shares,
			RemainingShares:  tx.Shares,
			UnderlyingToUsd:  tx.UnderlyingToUsd,
			Token0ToUsd:      tx.Token0ToUsd,
			Token1ToUsd:      tx.Token1ToUsd,
			UnderlyingAmount: tx.UnderlyingAmount.Abs(),
			Token0Amount:     tx.Token0Amount.Abs(),
			Token1Amount:     tx.Token1Amount.Abs(),
		})
	case tx.Shares.IsNegative():
		if err := l.withdraw(tx); err != nil {
			return err
		}
	}

	for _, c := range tx.Claims {
		l.claim(c)
	}
	return nil
}

func (l *ClmLedger) withdraw(tx ClmTransaction) error {
	shares := tx.Shares.Neg()
	exit := legs{
		underlying: tx.UnderlyingAmount.Abs(),
		token0:     tx.Token0Amount.Abs(),
		token1:     tx.Token1Amount.Abs(),
	}
	exit.usd = exit.token0.Mul(tx.Token0ToUsd).Add(exit.token1.Mul(tx.Token1ToUsd))

	// exit legs are booked once, against the summed entry legs.
	var entry Result
	err := l.lots.consume(shares, func(lot *ClmLot, sold decimal.Decimal) {
		p := lot.portion(sold)
		entry = entry.Add(Result{Shares: p.underlying, USD: p.usd})
	})
	if err != nil {
		return err
	}
	booked := Result{Shares: exit.underlying, USD: exit.usd}.Sub(entry)
	l.realized = l.realized.Add(booked)
	return nil
}

func (l *ClmLedger) claim(c Claim) {
	if !c.ClaimedAmount.IsPositive() {
		return
	}
	usd := c.ClaimedAmount.Mul(c.RewardToUsd)
	if l.claimed.Tokens == nil {
		l.claimed.Tokens = make(map[string]ClaimedToken)
	}
	t := l.claimed.Tokens[c.Address]
	l.claimed.Tokens[c.Address] = ClaimedToken{
		Amount: t.Amount.Add(c.ClaimedAmount),
		USD:    t.USD.Add(usd),
	}
	l.claimed.TotalUSD = l.claimed.TotalUSD.Add(usd)
}

// RealizedPnl returns the PnL booked by withdrawals so far.
func (l *ClmLedger) RealizedPnl() Result { return l.realized }

// Claimed returns a copy of the claims accumulated so far.
func (l *ClmLedger) Claimed() Claimed {
	tokens := make(map[string]ClaimedToken, len(l.claimed.Tokens))
	maps.Copy(tokens, l.claimed.Tokens)
	return Claimed{TotalUSD: l.claimed.TotalUSD, Tokens: tokens}
}

// RemainingShares returns the shares still held and the entry token amounts
// backing them.
func (l *ClmLedger) RemainingShares() ClmRemaining {
	var r ClmRemaining
	for lot := range l.lots.held() {
		r.Shares = r.Shares.Add(lot.RemainingShares)
		r.Underlying = r.Underlying.Add(lot.UnderlyingAmount)
		r.Token0 = r.Token0.Add(lot.Token0Amount)
		r.Token1 = r.Token1.Add(lot.Token1Amount)
	}
	return r
}

// RemainingSharesAvgEntryPrice returns the entry price of each token averaged
// over the token amounts still held. A token with no amount held averages to
// zero.
func (l *ClmLedger) RemainingSharesAvgEntryPrice() ClmEntryPrice {
	var t0, t1 weighted
	for lot := range l.lots.held() {
		t0.add(lot.Token0ToUsd, lot.Token0Amount)
		t1.add(lot.Token1ToUsd, lot.Token1Amount)
	}
	return ClmEntryPrice{Token0: t0.average(), Token1: t1.average()}
}

// CostBasis returns the entry underlying amount and USD value of the remaining
// shares.
func (l *ClmLedger) CostBasis() Result {
	var total Result
	for lot := range l.lots.held() {
		total = total.Add(Result{Shares: lot.UnderlyingAmount, USD: lot.EntryUSD()})
	}
	return total
}

// MarketValue returns the underlying amount and USD value of the remaining
// shares at the quote.
func (l *ClmLedger) MarketValue(q ClmQuote) Result {
	shares := l.lots.remaining()
	usd := shares.Mul(q.Token0PerShare).Mul(q.Token0ToUsd).
		Add(shares.Mul(q.Token1PerShare).Mul(q.Token1ToUsd))
	return Result{Shares: shares.Mul(q.UnderlyingPerShare), USD: usd}
}

// UnrealizedPnl returns the PnL of the remaining shares at the quote.
func (l *ClmLedger) UnrealizedPnl(q ClmQuote) Result {
	return l.MarketValue(q).Sub(l.CostBasis())
}

// HoldUSD returns what the entry token amounts of the remaining shares would
// be worth at the quote had they been held outside the pool.
func (l *ClmLedger) HoldUSD(q ClmQuote) decimal.Decimal {
	r := l.RemainingShares()
	return r.Token0.Mul(q.Token0ToUsd).Add(r.Token1.Mul(q.Token1ToUsd))
}

// Lots returns a copy of every lot, oldest first, exhausted ones included.
func (l *ClmLedger) Lots() []ClmLot {
	var lots []ClmLot
	for lot := range l.lots.all() {
		lots = append(lots, *lot)
	}
	return lots
}
