// Package pnl computes the profit and loss of a wallet's position in a
// yield-bearing vault.
//
// A position is described by a timeline of deposits and withdrawals, each
// carrying a share delta, the exchange rate between shares and the underlying
// asset, and the USD price of the underlying. Replaying that timeline into a
// ledger reduces it to:
//   - Remaining shares: what the wallet still holds.
//   - Cost basis: the entry value of those shares, lot by lot.
//   - Realized PnL: gains and losses locked in by withdrawals.
//   - Unrealized PnL: gains and losses on the remaining shares at a current quote.
//
// Lots are matched first-in first-out and every quantity is an exact decimal.
//
// Two ledgers share the same lot matching:
//   - Ledger handles single-asset vaults, where a share converts into one
//     underlying token.
//   - ClmLedger handles concentrated-liquidity vaults, where a share is a claim
//     on two pool tokens priced independently, and also accumulates reward
//     claims.
//
// Ledgers are pure computation with no I/O. They are built fresh from the
// position history for every computation and are not safe for concurrent use.
// The Timeline type and its JSONL encoding are the durable form of that history
// used by the vpnl command, the store and the server.
package pnl
