package pnl

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// QuotePaths locates the figures of a Quote in a JSON document.
// A path may contain "{vault}", replaced by For.
type QuotePaths struct {
	Price        string `yaml:"price"`
	ExchangeRate string `yaml:"exchangeRate"`
}

// For returns the paths with "{vault}" replaced by vault.
func (p QuotePaths) For(vault string) QuotePaths {
	return QuotePaths{
		Price:        strings.ReplaceAll(p.Price, "{vault}", vault),
		ExchangeRate: strings.ReplaceAll(p.ExchangeRate, "{vault}", vault),
	}
}

// Quote extracts a quote from a decoded JSON document.
func (p QuotePaths) Quote(doc any) (Quote, error) {
	var q Quote
	var err error
	if q.Price, err = ExtractDecimal(doc, p.Price); err != nil {
		return Quote{}, fmt.Errorf("price: %w", err)
	}
	if q.ExchangeRate, err = ExtractDecimal(doc, p.ExchangeRate); err != nil {
		return Quote{}, fmt.Errorf("exchange rate: %w", err)
	}
	return q, nil
}

// ClmQuotePaths locates the figures of a ClmQuote in a JSON document. Empty
// paths leave their figure at zero.
type ClmQuotePaths struct {
	Token0ToUsd        string `yaml:"token0ToUsd"`
	Token1ToUsd        string `yaml:"token1ToUsd"`
	UnderlyingToUsd    string `yaml:"underlyingToUsd"`
	Token0PerShare     string `yaml:"token0PerShare"`
	Token1PerShare     string `yaml:"token1PerShare"`
	UnderlyingPerShare string `yaml:"underlyingPerShare"`
}

// Quote extracts a quote from a decoded JSON document.
func (p ClmQuotePaths) Quote(doc any) (ClmQuote, error) {
	var q ClmQuote
	for _, f := range []struct {
		name string
		path string
		dst  *decimal.Decimal
	}{
		{"token0ToUsd", p.Token0ToUsd, &q.Token0ToUsd},
		{"token1ToUsd", p.Token1ToUsd, &q.Token1ToUsd},
		{"underlyingToUsd", p.UnderlyingToUsd, &q.UnderlyingToUsd},
		{"token0PerShare", p.Token0PerShare, &q.Token0PerShare},
		{"token1PerShare", p.Token1PerShare, &q.Token1PerShare},
		{"underlyingPerShare", p.UnderlyingPerShare, &q.UnderlyingPerShare},
	} {
		if f.path == "" {
			continue
		}
		d, err := ExtractDecimal(doc, f.path)
		if err != nil {
			return ClmQuote{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = d
	}
	return q, nil
}

// ReadJSON decodes a JSON document keeping numbers exact.
func ReadJSON(r io.Reader) (any, error) {
	var doc any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding quote document: %w", err)
	}
	return doc, nil
}

// ExtractDecimal evaluates a JSONPath expression against doc and reads the
// result as a decimal. Numbers and numeric strings are accepted.
func ExtractDecimal(doc any, path string) (decimal.Decimal, error) {
	if path == "" {
		return decimal.Zero, fmt.Errorf("empty path")
	}
	jval, err := jsonpath.Get(path, doc)
	if err != nil {
		return decimal.Zero, fmt.Errorf("evaluating %q: %w", path, err)
	}
	// jsonpath returns a list for filters and wildcards, even with one match.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return decimal.Zero, fmt.Errorf("evaluating %q: no match", path)
		}
		jval = jlist[0]
	}

	switch v := jval.(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("evaluating %q: %w", path, err)
		}
		return d, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, fmt.Errorf("evaluating %q: invalid number %q", path, v)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, fmt.Errorf("evaluating %q: not a number: %v", path, jval)
	}
}

// DecodeQuote reads a JSON document and extracts a quote from it.
func DecodeQuote(r io.Reader, p QuotePaths) (Quote, error) {
	doc, err := ReadJSON(r)
	if err != nil {
		return Quote{}, err
	}
	return p.Quote(doc)
}

// DecodeClmQuote reads a JSON document and extracts a concentrated-liquidity
// quote from it.
func DecodeClmQuote(r io.Reader, p ClmQuotePaths) (ClmQuote, error) {
	doc, err := ReadJSON(r)
	if err != nil {
		return ClmQuote{}, err
	}
	return p.Quote(doc)
}
