package store

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/etnz/pnl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func dep(id string, d int, shares, price string) pnl.Event {
	return pnl.Event{Command: pnl.CmdDeposit, Time: day(d), ID: id, Shares: pnl.D(shares), Price: pnl.D(price), ExchangeRate: pnl.D(1)}
}

func wd(id string, d int, shares, rate string) pnl.Event {
	return pnl.Event{Command: pnl.CmdWithdraw, Time: day(d), ID: id, Shares: pnl.D(shares), Price: pnl.D(1), ExchangeRate: pnl.D(rate)}
}

func TestNewKey(t *testing.T) {
	k, err := NewKey(" 0xABCdef ", "Beefy-WETH")
	require.NoError(t, err)
	assert.Equal(t, Key{Wallet: "0xabcdef", Vault: "beefy-weth"}, k)
	assert.Equal(t, "0xabcdef/beefy-weth", k.String())

	_, err = NewKey("0xabc", " ")
	assert.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "")
	assert.ErrorContains(t, err, "unknown driver")
}

func TestStore_AppendAndTimeline(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	key, _ := NewKey("0xa", "v1")

	// stored out of order, read back sorted; same time keeps insertion order
	added, err := s.Append(ctx, key, dep("b", 2, "50", "2"), dep("a", 1, "100", "1"), wd("c", 3, "120", "1.2"))
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = s.Append(ctx, key, dep("a", 1, "100", "1"), dep("d", 3, "10", "3"))
	require.NoError(t, err)
	assert.Equal(t, 1, added, "known ids are skipped")

	tl, err := s.Timeline(ctx, key)
	require.NoError(t, err)
	var ids []string
	for e := range tl.Events() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)

	l, err := tl.Ledger()
	require.NoError(t, err)
	assert.True(t, l.RealizedPnl().Equal(pnl.Result{Shares: pnl.D(24), USD: pnl.D(28)}), "realized %v", l.RealizedPnl())
	assert.True(t, l.RemainingShares().Equal(pnl.D(40)), "remaining %v", l.RemainingShares())
}

func TestStore_AppendAssignsIDs(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	key, _ := NewKey("0xa", "v1")

	_, err := s.Append(ctx, key, dep("", 1, "1", "1"), dep("", 1, "2", "1"))
	require.NoError(t, err)

	tl, err := s.Timeline(ctx, key)
	require.NoError(t, err)
	require.Equal(t, 2, tl.Len())
	for e := range tl.Events() {
		assert.NotEmpty(t, e.ID)
	}
}

func TestStore_AppendWithoutIDsTwice(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	key, _ := NewKey("0xa", "v1")

	// the repeated deposit is a second, genuine deposit
	const jsonl = `{"command":"deposit","time":"2024-01-01T00:00:00Z","shares":10,"price":1,"exchangeRate":1}
{"command":"deposit","time":"2024-01-01T00:00:00Z","shares":10,"price":1,"exchangeRate":1}
{"command":"withdraw","time":"2024-01-02T00:00:00Z","shares":5,"price":1,"exchangeRate":1}
`
	appendFile := func() int {
		tl, err := pnl.DecodeTimeline(strings.NewReader(jsonl))
		require.NoError(t, err)
		added, err := s.Append(ctx, key, slices.Collect(tl.Events())...)
		require.NoError(t, err)
		return added
	}
	assert.Equal(t, 3, appendFile())
	assert.Equal(t, 0, appendFile(), "importing the same file again adds nothing")

	tl, err := s.Timeline(ctx, key)
	require.NoError(t, err)
	l, err := tl.Ledger()
	require.NoError(t, err)
	assert.True(t, l.RemainingShares().Equal(pnl.D(15)), "remaining %v", l.RemainingShares())
}

func TestStore_AppendInvalid(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	key, _ := NewKey("0xa", "v1")

	bad := dep("x", 2, "1", "1")
	bad.Command = "swap"
	_, err := s.Append(ctx, key, dep("ok", 1, "1", "1"), bad)
	require.Error(t, err)

	tl, err := s.Timeline(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, tl.Len(), "nothing stored")
}

func TestStore_KeysAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	k1, _ := NewKey("0xb", "v1")
	k2, _ := NewKey("0xa", "v2")
	k3, _ := NewKey("0xa", "v1")
	for i, k := range []Key{k1, k2, k3} {
		_, err := s.Append(ctx, k, dep(k.String(), i+1, "1", "1"))
		require.NoError(t, err)
	}

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Key{k3, k2, k1}, keys)

	n, err := s.Delete(ctx, k2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	keys, err = s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Key{k3, k1}, keys)
}

func TestStore_Positions(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	good, _ := NewKey("0xa", "good")
	broken, _ := NewKey("0xa", "broken")
	unquoted, _ := NewKey("0xb", "good")

	_, err := s.Append(ctx, good, dep("g1", 1, "100", "1"), wd("g2", 2, "50", "1.1"))
	require.NoError(t, err)
	_, err = s.Append(ctx, broken, dep("b1", 1, "1", "1"), wd("b2", 2, "2", "1"))
	require.NoError(t, err)
	_, err = s.Append(ctx, unquoted, dep("u1", 1, "1", "1"))
	require.NoError(t, err)

	quote := func(k Key) (pnl.Quote, error) {
		if k.Wallet == "0xb" {
			return pnl.Quote{}, errors.New("no price")
		}
		return pnl.Quote{Price: pnl.D(2), ExchangeRate: pnl.D("1.2")}, nil
	}
	positions, err := s.Positions(ctx, quote, 2)
	require.NoError(t, err)
	require.Len(t, positions, 3)

	// sorted by key
	assert.Equal(t, broken, positions[0].Key)
	assert.ErrorIs(t, positions[0].Err, pnl.ErrOverdraft)

	assert.Equal(t, good, positions[1].Key)
	require.NoError(t, positions[1].Err)
	sum := positions[1].Summary
	assert.True(t, sum.RemainingShares.Equal(pnl.D(50)), "remaining %v", sum.RemainingShares)
	assert.True(t, sum.Realized.Equal(pnl.Result{Shares: pnl.D(5), USD: pnl.D(5)}), "realized %v", sum.Realized)
	assert.True(t, sum.Unrealized.Equal(pnl.Result{Shares: pnl.D(10), USD: pnl.D(70)}), "unrealized %v", sum.Unrealized)

	assert.Equal(t, unquoted, positions[2].Key)
	assert.True(t, strings.Contains(positions[2].Err.Error(), "no price"))
}

func TestStore_PositionsClm(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	key, _ := NewKey("0xa", "clm")

	_, err := s.Append(ctx, key, pnl.Event{
		Command: pnl.CmdDeposit, Time: day(1), ID: "c1", Shares: pnl.D(10),
		Token0Amount: pnl.D(1), Token0ToUsd: pnl.D(2500), Token1Amount: pnl.D(2500), Token1ToUsd: pnl.D(1),
	})
	require.NoError(t, err)

	quote := func(Key) (pnl.Quote, error) { return pnl.Quote{Price: pnl.D(1), ExchangeRate: pnl.D(1)}, nil }
	positions, err := s.Positions(ctx, quote, 0)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.ErrorIs(t, positions[0].Err, ErrClmPosition)
}
