package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/etnz/pnl"
	"github.com/etnz/pnl/config"
	"github.com/etnz/pnl/store"
	"github.com/shopspring/decimal"
)

// decimalFlag is a flag.Value holding a decimal.
type decimalFlag struct {
	decimal.Decimal
	set bool
}

func (d *decimalFlag) String() string { return d.Decimal.String() }

func (d *decimalFlag) Set(s string) error {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	if v.IsNegative() {
		return fmt.Errorf("%s cannot be negative", s)
	}
	d.Decimal, d.set = v, true
	return nil
}

// quoteFlags reads a single-asset quote from the command line, or from a
// JSON document.
type quoteFlags struct {
	price     decimalFlag
	rate      decimalFlag
	file      string
	pricePath string
	ratePath  string
}

func (q *quoteFlags) SetFlags(f *flag.FlagSet) {
	f.Var(&q.price, "price", "Current USD price of the underlying")
	f.Var(&q.rate, "rate", "Current exchange rate, underlying per share")
	f.StringVar(&q.file, "quote-file", "", "JSON document to read the quote from, instead of -price and -rate")
	f.StringVar(&q.pricePath, "price-path", "", "JSONPath of the price in the quote file")
	f.StringVar(&q.ratePath, "rate-path", "", "JSONPath of the exchange rate in the quote file")
}

// quote returns the quote of vault.
func (q *quoteFlags) quote(vault string) (pnl.Quote, error) {
	if q.file == "" {
		if !q.price.set || !q.rate.set {
			return pnl.Quote{}, fmt.Errorf("-price and -rate are required without -quote-file")
		}
		return pnl.Quote{Price: q.price.Decimal, ExchangeRate: q.rate.Decimal}, nil
	}

	paths := pnl.QuotePaths{Price: q.pricePath, ExchangeRate: q.ratePath}
	if paths.Price == "" {
		paths.Price = cfg.Quotes.Price
	}
	if paths.ExchangeRate == "" {
		paths.ExchangeRate = cfg.Quotes.ExchangeRate
	}
	f, err := os.Open(q.file)
	if err != nil {
		return pnl.Quote{}, err
	}
	defer f.Close()
	return pnl.DecodeQuote(f, paths.For(vault))
}

// quoteSource returns a quote for every position from the configured quote
// document, or nil if none is configured.
func quoteSource(qc config.QuotesConfig) (store.QuoteFunc, error) {
	if qc.File == "" {
		return nil, nil
	}
	f, err := os.Open(qc.File)
	if err != nil {
		return nil, fmt.Errorf("quote file: %w", err)
	}
	defer f.Close()
	doc, err := pnl.ReadJSON(f)
	if err != nil {
		return nil, err
	}
	return func(k store.Key) (pnl.Quote, error) {
		return qc.QuotePaths.For(k.Vault).Quote(doc)
	}, nil
}
