package pnl

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func deposit(shares, price, rate string) Transaction {
	return Transaction{Shares: D(shares), Price: D(price), ExchangeRate: D(rate)}
}

func withdraw(shares, price, rate string) Transaction {
	return Transaction{Shares: D(shares).Neg(), Price: D(price), ExchangeRate: D(rate)}
}

func mustAdd(t *testing.T, l *Ledger, txs ...Transaction) {
	t.Helper()
	for _, tx := range txs {
		if err := l.AddTransaction(tx); err != nil {
			t.Fatalf("AddTransaction(%v) unexpected error: %v", tx, err)
		}
	}
}

func TestLedger_Scenario(t *testing.T) {
	l := NewLedger()

	mustAdd(t, l, deposit("100", "1", "1.0"))
	if got, want := l.RemainingShares(), D(100); !got.Equal(want) {
		t.Errorf("RemainingShares() = %v, want %v", got, want)
	}

	mustAdd(t, l, deposit("50", "2", "1.0"))
	if got, want := l.RemainingShares(), D(150); !got.Equal(want) {
		t.Errorf("RemainingShares() = %v, want %v", got, want)
	}
	if got, want := l.RemainingSharesAvgEntryPrice().Round(6), D("1.333333"); !got.Equal(want) {
		t.Errorf("RemainingSharesAvgEntryPrice() = %v, want %v", got, want)
	}

	mustAdd(t, l, withdraw("120", "3", "1.2"))

	if got, want := l.RealizedPnl(), (Result{Shares: D(24), USD: D(28)}); !got.Equal(want) {
		t.Errorf("RealizedPnl() = %v, want %v", got, want)
	}
	if got, want := l.RemainingShares(), D(30); !got.Equal(want) {
		t.Errorf("RemainingShares() = %v, want %v", got, want)
	}
	// only the second lot remains
	if got, want := l.RemainingSharesAvgEntryPrice(), D(2); !got.Equal(want) {
		t.Errorf("RemainingSharesAvgEntryPrice() = %v, want %v", got, want)
	}
	if got, want := l.RemainingSharesAvgEntryExchangeRate(), D(1); !got.Equal(want) {
		t.Errorf("RemainingSharesAvgEntryExchangeRate() = %v, want %v", got, want)
	}

	lots := l.Lots()
	if got, want := len(lots), 2; got != want {
		t.Fatalf("len(Lots()) = %d, want %d", got, want)
	}
	if got, want := lots[0].RemainingShares, D(0); !got.Equal(want) {
		t.Errorf("first lot RemainingShares = %v, want %v", got, want)
	}
	if got, want := lots[0].BoughtShares, D(100); !got.Equal(want) {
		t.Errorf("first lot BoughtShares = %v, want %v", got, want)
	}
	if got, want := lots[1].RemainingShares, D(30); !got.Equal(want) {
		t.Errorf("second lot RemainingShares = %v, want %v", got, want)
	}
}

func TestLedger_UnrealizedPnl(t *testing.T) {
	l := NewLedger()
	mustAdd(t, l,
		deposit("100", "1", "1"),
		deposit("50", "2", "1"),
		withdraw("120", "3", "1.2"),
	)

	testCases := []struct {
		name        string
		price, rate string
		want        Result
	}{
		{
			name:  "at entry conditions",
			price: "2",
			rate:  "1",
			want:  Result{},
		},
		{
			name:  "yield only",
			price: "2",
			rate:  "1.5",
			want:  Result{Shares: D(15), USD: D(30)}, // 45*2 - 30*2
		},
		{
			name:  "price and yield",
			price: "3",
			rate:  "1.5",
			want:  Result{Shares: D(15), USD: D(75)}, // 45*3 - 30*2
		},
		{
			name:  "price drop",
			price: "1",
			rate:  "1",
			want:  Result{Shares: D(0), USD: D(-30)},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := l.UnrealizedPnl(D(tc.price), D(tc.rate)); !got.Equal(tc.want) {
				t.Errorf("UnrealizedPnl(%s, %s) = %v, want %v", tc.price, tc.rate, got, tc.want)
			}
		})
	}
}

func TestLedger_Empty(t *testing.T) {
	var l Ledger // zero value is usable

	if got := l.RemainingShares(); !got.IsZero() {
		t.Errorf("RemainingShares() = %v, want 0", got)
	}
	if got := l.RemainingSharesAvgEntryPrice(); !got.IsZero() {
		t.Errorf("RemainingSharesAvgEntryPrice() = %v, want 0", got)
	}
	if got := l.RemainingSharesAvgEntryExchangeRate(); !got.IsZero() {
		t.Errorf("RemainingSharesAvgEntryExchangeRate() = %v, want 0", got)
	}
	if got := l.RealizedPnl(); !got.IsZero() {
		t.Errorf("RealizedPnl() = %v, want zero", got)
	}
	if got := l.UnrealizedPnl(D(1234), D("1.7")); !got.IsZero() {
		t.Errorf("UnrealizedPnl() = %v, want zero", got)
	}
	if got := l.Lots(); len(got) != 0 {
		t.Errorf("Lots() = %v, want none", got)
	}
}

func TestLedger_FullLiquidation(t *testing.T) {
	l := NewLedger()
	mustAdd(t, l,
		deposit("10.5", "1800", "1.01"),
		deposit("3.25", "2100", "1.02"),
		withdraw("4", "2000", "1.03"),
	)
	mustAdd(t, l, Transaction{Shares: l.RemainingShares().Neg(), Price: D(2500), ExchangeRate: D("1.04")})

	if got := l.RemainingShares(); !got.IsZero() {
		t.Fatalf("RemainingShares() = %v, want 0", got)
	}
	for _, q := range []Quote{{D(0), D(0)}, {D(1), D(1)}, {D(99999), D("3.14")}} {
		if got := l.UnrealizedPnl(q.Price, q.ExchangeRate); !got.IsZero() {
			t.Errorf("UnrealizedPnl(%v, %v) = %v, want zero", q.Price, q.ExchangeRate, got)
		}
	}
	if got := l.RemainingSharesAvgEntryPrice(); !got.IsZero() {
		t.Errorf("RemainingSharesAvgEntryPrice() = %v, want 0", got)
	}
}

func TestLedger_ZeroTransaction(t *testing.T) {
	l := NewLedger()
	mustAdd(t, l, deposit("100", "1", "1"), withdraw("40", "1", "1.1"))

	lots, realized := l.Lots(), l.RealizedPnl()
	mustAdd(t, l, Transaction{Shares: decimal.Zero, Price: D(42), ExchangeRate: D(7)})

	if got := l.Lots(); !reflect.DeepEqual(got, lots) {
		t.Errorf("Lots() = %v, want %v", got, lots)
	}
	if got := l.RealizedPnl(); !reflect.DeepEqual(got, realized) {
		t.Errorf("RealizedPnl() = %v, want %v", got, realized)
	}
}

func TestLedger_FIFOOrder(t *testing.T) {
	l := NewLedger()
	mustAdd(t, l,
		deposit("100", "1", "1"),
		deposit("100", "5", "1"),
		withdraw("50", "5", "1.2"),
	)

	// all of it comes from the first lot, priced at $1
	if got, want := l.RealizedPnl(), (Result{Shares: D(10), USD: D(10)}); !got.Equal(want) {
		t.Errorf("RealizedPnl() = %v, want %v", got, want)
	}
	lots := l.Lots()
	if got, want := lots[0].RemainingShares, D(50); !got.Equal(want) {
		t.Errorf("first lot RemainingShares = %v, want %v", got, want)
	}
	if got, want := lots[1].RemainingShares, D(100); !got.Equal(want) {
		t.Errorf("second lot RemainingShares = %v, want %v", got, want)
	}
}

// The USD leg of a withdrawal uses the lot's entry price whatever the price of
// the transaction.
func TestLedger_WithdrawalPricedAtEntry(t *testing.T) {
	for _, price := range []string{"0", "1", "1000"} {
		l := NewLedger()
		mustAdd(t, l, deposit("10", "2", "1"), withdraw("10", price, "1.5"))
		if got, want := l.RealizedPnl(), (Result{Shares: D(5), USD: D(10)}); !got.Equal(want) {
			t.Errorf("withdrawal at price %s: RealizedPnl() = %v, want %v", price, got, want)
		}
	}
}

func TestLedger_Overdraft(t *testing.T) {
	l := NewLedger()
	mustAdd(t, l, deposit("10", "1", "1"), deposit("5", "2", "1"))
	lots, realized := l.Lots(), l.RealizedPnl()

	err := l.AddTransaction(withdraw("16", "1", "1.1"))
	if !errors.Is(err, ErrOverdraft) {
		t.Fatalf("AddTransaction() error = %v, want ErrOverdraft", err)
	}
	var overdraft *OverdraftError
	if !errors.As(err, &overdraft) {
		t.Fatalf("AddTransaction() error = %T, want *OverdraftError", err)
	}
	if got, want := overdraft.Requested, D(16); !got.Equal(want) {
		t.Errorf("Requested = %v, want %v", got, want)
	}
	if got, want := overdraft.Available, D(15); !got.Equal(want) {
		t.Errorf("Available = %v, want %v", got, want)
	}

	if got := l.Lots(); !reflect.DeepEqual(got, lots) {
		t.Errorf("Lots() after overdraft = %v, want %v", got, lots)
	}
	if got := l.RealizedPnl(); !got.Equal(realized) {
		t.Errorf("RealizedPnl() after overdraft = %v, want %v", got, realized)
	}
}

func TestLedger_CostBasisAndMarketValue(t *testing.T) {
	l := NewLedger()
	mustAdd(t, l, deposit("100", "2", "1.1"), deposit("100", "4", "1.2"))

	if got, want := l.CostBasis(), (Result{Shares: D(230), USD: D(700)}); !got.Equal(want) {
		t.Errorf("CostBasis() = %v, want %v", got, want)
	}
	if got, want := l.MarketValue(D(3), D("1.5")), (Result{Shares: D(300), USD: D(900)}); !got.Equal(want) {
		t.Errorf("MarketValue() = %v, want %v", got, want)
	}
	if got, want := l.RemainingSharesAvgEntryExchangeRate(), D("1.15"); !got.Equal(want) {
		t.Errorf("RemainingSharesAvgEntryExchangeRate() = %v, want %v", got, want)
	}
}
