package hyper

import (
	"context"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/hyper/asset"
)

// Read-only queries. All of them POST {type, ...params} to the info
// endpoint with no signing involved.

type infoRequest map[string]any

func (c *Client) info(ctx context.Context, req infoRequest, out any) error {
	return c.transport.post(ctx, infoPath, req, out)
}

// Meta returns the perpetual asset universe, cached for metaTTL.
func (c *Client) Meta(ctx context.Context) (Meta, error) {
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	if c.meta != nil && c.clock.Now().Sub(c.metaAt) < metaTTL {
		return *c.meta, nil
	}

	var meta Meta
	if err := c.info(ctx, infoRequest{"type": "meta"}, &meta); err != nil {
		return Meta{}, err
	}

	c.meta = &meta
	c.metaAt = c.clock.Now()
	return meta, nil
}

// SpotMeta returns the spot listing. It feeds the asset registry's
// spot cache and is also useful standalone.
func (c *Client) SpotMeta(ctx context.Context) (asset.Listing, error) {
	var listing asset.Listing
	if err := c.info(ctx, infoRequest{"type": "spotMeta"}, &listing); err != nil {
		return asset.Listing{}, err
	}
	return listing, nil
}

// AllMids returns the current mid price per coin, as decimal strings.
func (c *Client) AllMids(ctx context.Context) (map[string]string, error) {
	var mids map[string]string
	if err := c.info(ctx, infoRequest{"type": "allMids"}, &mids); err != nil {
		return nil, err
	}
	return mids, nil
}

// MidPrice returns the mid for one coin as a float.
func (c *Client) MidPrice(ctx context.Context, coin string) (float64, error) {
	mids, err := c.AllMids(ctx)
	if err != nil {
		return 0, err
	}
	in, err := c.registry.Resolve(ctx, coin)
	if err != nil {
		return 0, &ConstructionError{Op: "resolve " + coin, Err: err}
	}
	mid, ok := mids[in.Symbol]
	if !ok {
		return 0, &ConstructionError{Op: "mid price lookup", Err: asset.ErrNotFound}
	}
	px, err := strconv.ParseFloat(mid, 64)
	if err != nil {
		return 0, &ConstructionError{Op: "parse mid price", Err: err}
	}
	return px, nil
}

// UserState returns the margin/position snapshot for the account this
// key trades for (main wallet when the key is an agent).
func (c *Client) UserState(ctx context.Context) (UserState, error) {
	addr, err := c.accountAddress(ctx)
	if err != nil {
		return UserState{}, err
	}
	return c.UserStateFor(ctx, addr)
}

// UserStateFor returns the snapshot for an explicit address.
func (c *Client) UserStateFor(ctx context.Context, user common.Address) (UserState, error) {
	var state UserState
	err := c.info(ctx, infoRequest{"type": "clearinghouseState", "user": user.Hex()}, &state)
	return state, err
}

// SpotUserState returns spot token balances.
func (c *Client) SpotUserState(ctx context.Context) (SpotUserState, error) {
	addr, err := c.accountAddress(ctx)
	if err != nil {
		return SpotUserState{}, err
	}
	var state SpotUserState
	err = c.info(ctx, infoRequest{"type": "spotClearinghouseState", "user": addr.Hex()}, &state)
	return state, err
}

// OpenOrders lists the account's resting orders.
func (c *Client) OpenOrders(ctx context.Context) ([]OpenOrder, error) {
	addr, err := c.accountAddress(ctx)
	if err != nil {
		return nil, err
	}
	var orders []OpenOrder
	err = c.info(ctx, infoRequest{"type": "openOrders", "user": addr.Hex()}, &orders)
	return orders, err
}

// UserFills lists recent fills for the account.
func (c *Client) UserFills(ctx context.Context) ([]Fill, error) {
	addr, err := c.accountAddress(ctx)
	if err != nil {
		return nil, err
	}
	var fills []Fill
	err = c.info(ctx, infoRequest{"type": "userFills", "user": addr.Hex()}, &fills)
	return fills, err
}

// FundingHistory returns funding entries for a coin since startTime
// (unix millis).
func (c *Client) FundingHistory(ctx context.Context, coin string, startTime int64) ([]FundingEntry, error) {
	in, err := c.registry.Resolve(ctx, coin)
	if err != nil {
		return nil, &ConstructionError{Op: "resolve " + coin, Err: err}
	}
	var entries []FundingEntry
	err = c.info(ctx, infoRequest{"type": "fundingHistory", "coin": in.Symbol, "startTime": startTime}, &entries)
	return entries, err
}

// L2Snapshot returns the current order book for a coin.
func (c *Client) L2Snapshot(ctx context.Context, coin string) (L2Book, error) {
	in, err := c.registry.Resolve(ctx, coin)
	if err != nil {
		return L2Book{}, &ConstructionError{Op: "resolve " + coin, Err: err}
	}
	var book L2Book
	err = c.info(ctx, infoRequest{"type": "l2Book", "coin": in.Symbol}, &book)
	return book, err
}

// UserRole looks up whether an address is a user, agent, vault, or
// unknown to the venue.
func (c *Client) UserRole(ctx context.Context, user common.Address) (UserRole, error) {
	var role UserRole
	err := c.info(ctx, infoRequest{"type": "userRole", "user": user.Hex()}, &role)
	return role, err
}
