// Package asset maps human-readable instrument symbols to the venue's
// integer asset ids and carries the per-asset size-decimal metadata that
// drives price and size rounding.
package asset

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/util"
)

// ErrNotFound is returned when a symbol resolves to no known instrument.
var ErrNotFound = errors.New("unknown instrument symbol")

// SpotAssetBase is the offset of spot asset ids: a spot pair at listing
// index i trades as asset SpotAssetBase + i. The listing can in theory
// reorder, so spot ids are only stable within the cache TTL window and
// must not be persisted by callers.
const SpotAssetBase = 10000

// DefaultSzDecimals is the fallback for perpetuals missing from the
// static decimals table, keeping resolution robust against an
// incomplete table.
const DefaultSzDecimals = 2

// Instrument is a resolved tradeable asset.
type Instrument struct {
	Symbol     string
	AssetID    int
	SzDecimals int
	IsSpot     bool
	// BaseToken/QuoteToken are listing token indices, spot only.
	BaseToken  int
	QuoteToken int
}

// Listing is the venue-supplied spot universe: tradeable pairs plus the
// token table their indices point into.
type Listing struct {
	Universe []PairInfo  `json:"universe"`
	Tokens   []TokenInfo `json:"tokens"`
}

// PairInfo describes one spot pair. Tokens holds [base, quote] indices
// into Listing.Tokens.
type PairInfo struct {
	Name        string `json:"name"`
	Tokens      [2]int `json:"tokens"`
	Index       int    `json:"index"`
	IsCanonical bool   `json:"isCanonical"`
}

// TokenInfo describes one spot token.
type TokenInfo struct {
	Name        string `json:"name"`
	SzDecimals  int    `json:"szDecimals"`
	WeiDecimals int    `json:"weiDecimals"`
	Index       int    `json:"index"`
	IsCanonical bool   `json:"isCanonical"`
}

// quoteSuffixes are stripped from perp symbols before the static table
// lookup, so "ETHUSDT", "ETH-PERP" and "ETH" all resolve identically.
var quoteSuffixes = []string{"USDT", "USDC", "PERP"}

// ListingFetcher fetches the current spot listing from the venue.
type ListingFetcher func(ctx context.Context) (Listing, error)

// Registry resolves symbols to instruments. Perpetual resolution is
// purely static; spot resolution goes through a TTL-cached listing
// refetched lazily on expiry.
type Registry struct {
	fetch ListingFetcher
	clock util.Clock
	ttl   time.Duration

	mu        sync.Mutex
	listing   Listing
	fetchedAt time.Time
	haveSpot  bool
}

// NewRegistry builds a Registry. fetch may be nil, in which case only
// perpetual and explicit @index resolution are available.
func NewRegistry(fetch ListingFetcher, clock util.Clock, ttl time.Duration) *Registry {
	if clock == nil {
		clock = util.RealClock{}
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Registry{fetch: fetch, clock: clock, ttl: ttl}
}

// Resolve maps a symbol to an Instrument. Perpetuals are matched first
// against the static table after suffix stripping. Everything else is
// treated as spot: an explicit "@index" reference maps directly to
// SpotAssetBase+index with no network call, a pair name ("PURR/USDC")
// or bare base-token name ("purr") is resolved case-insensitively via
// the cached listing.
func (r *Registry) Resolve(ctx context.Context, symbol string) (Instrument, error) {
	if symbol == "" {
		return Instrument{}, fmt.Errorf("%w: empty symbol", ErrNotFound)
	}

	if strings.HasPrefix(symbol, "@") {
		index, err := strconv.Atoi(symbol[1:])
		if err != nil || index < 0 {
			return Instrument{}, fmt.Errorf("%w: bad spot index reference %q", ErrNotFound, symbol)
		}
		return r.spotByIndex(ctx, symbol, index)
	}

	base := stripQuoteSuffix(symbol)
	if id, ok := perpAssets[base]; ok {
		return Instrument{
			Symbol:     base,
			AssetID:    id,
			SzDecimals: r.SzDecimals(base),
		}, nil
	}

	return r.resolveSpot(ctx, symbol)
}

// SzDecimals returns the size-decimal count for a perpetual symbol,
// falling back to DefaultSzDecimals for symbols missing from the table.
func (r *Registry) SzDecimals(symbol string) int {
	if d, ok := perpSzDecimals[stripQuoteSuffix(symbol)]; ok {
		return d
	}
	return DefaultSzDecimals
}

func stripQuoteSuffix(symbol string) string {
	upper := strings.ToUpper(symbol)
	for _, suffix := range quoteSuffixes {
		if trimmed, ok := strings.CutSuffix(upper, suffix); ok && trimmed != "" {
			trimmed = strings.TrimSuffix(trimmed, "-")
			trimmed = strings.TrimSuffix(trimmed, "/")
			return trimmed
		}
	}
	return upper
}

// spotByIndex builds an instrument for an explicit index reference. The
// cached listing enriches it with token metadata when available, but no
// fetch is triggered: the mapping to the asset id is position-only.
func (r *Registry) spotByIndex(ctx context.Context, symbol string, index int) (Instrument, error) {
	in := Instrument{
		Symbol:     symbol,
		AssetID:    SpotAssetBase + index,
		SzDecimals: DefaultSzDecimals,
		IsSpot:     true,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.haveSpot && index < len(r.listing.Universe) {
		pair := r.listing.Universe[index]
		in.BaseToken = pair.Tokens[0]
		in.QuoteToken = pair.Tokens[1]
		if pair.Tokens[0] < len(r.listing.Tokens) {
			in.SzDecimals = r.listing.Tokens[pair.Tokens[0]].SzDecimals
		}
	}
	return in, nil
}

func (r *Registry) resolveSpot(ctx context.Context, symbol string) (Instrument, error) {
	listing, err := r.spotListing(ctx)
	if err != nil {
		return Instrument{}, err
	}

	want := strings.ToUpper(symbol)
	for _, pair := range listing.Universe {
		name := strings.ToUpper(pair.Name)
		baseName := ""
		if pair.Tokens[0] < len(listing.Tokens) {
			baseName = strings.ToUpper(listing.Tokens[pair.Tokens[0]].Name)
		}
		if name != want && baseName != want {
			continue
		}

		szDecimals := DefaultSzDecimals
		if pair.Tokens[0] < len(listing.Tokens) {
			szDecimals = listing.Tokens[pair.Tokens[0]].SzDecimals
		}
		return Instrument{
			Symbol:     pair.Name,
			AssetID:    SpotAssetBase + pair.Index,
			SzDecimals: szDecimals,
			IsSpot:     true,
			BaseToken:  pair.Tokens[0],
			QuoteToken: pair.Tokens[1],
		}, nil
	}

	return Instrument{}, fmt.Errorf("%w: %s", ErrNotFound, symbol)
}

// spotListing returns the cached listing, refetching once the TTL has
// elapsed. Two concurrent refreshes would be benign, but the fetch runs
// under the lock anyway since callers of spot resolution are rare and
// the simpler invariant is easier to reason about.
func (r *Registry) spotListing(ctx context.Context) (Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.haveSpot && r.clock.Now().Sub(r.fetchedAt) < r.ttl {
		return r.listing, nil
	}
	if r.fetch == nil {
		if r.haveSpot {
			return r.listing, nil
		}
		return Listing{}, fmt.Errorf("%w: no spot listing source configured", ErrNotFound)
	}

	listing, err := r.fetch(ctx)
	if err != nil {
		// Keep serving a stale listing over failing hard.
		if r.haveSpot {
			return r.listing, nil
		}
		return Listing{}, fmt.Errorf("failed to fetch spot listing: %w", err)
	}

	r.listing = listing
	r.fetchedAt = r.clock.Now()
	r.haveSpot = true
	return r.listing, nil
}
