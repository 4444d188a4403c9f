package hyper

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/crypto"
	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/hyper/asset"
)

// DefaultSlippage is the max slippage applied by the market-order
// helpers when none is given (5%).
const DefaultSlippage = 0.05

// signedEnvelope is the write-endpoint payload: the action, the nonce
// it was hashed with, and the recoverable signature. vaultAddress and
// expiresAfter must match the values framed into the action hash or
// verification fails venue-side.
type signedEnvelope struct {
	Action       Act              `json:"action"`
	Nonce        uint64           `json:"nonce"`
	Signature    crypto.Signature `json:"signature"`
	VaultAddress *string          `json:"vaultAddress,omitempty"`
	ExpiresAfter *uint64          `json:"expiresAfter,omitempty"`
}

// postAction signs an L1 action and submits it, decoding the outer
// status envelope into out.
func (c *Client) postAction(ctx context.Context, action Act, out any) error {
	if c.signer == nil {
		return &ConstructionError{Op: "sign " + action.ActionType(), Err: fmt.Errorf("client has no signing key")}
	}

	nonce := c.nextNonce()
	expiresAfter := c.expiresAfter.Load()

	sig, err := crypto.SignL1Action(c.signer, action, nonce, c.vaultAddress, expiresAfter, c.isMainnet)
	if err != nil {
		return &ConstructionError{Op: "sign " + action.ActionType(), Err: err}
	}

	env := signedEnvelope{
		Action:       action,
		Nonce:        nonce,
		Signature:    sig,
		ExpiresAfter: expiresAfter,
	}
	if c.vaultAddress != nil {
		v := c.vaultAddress.Hex()
		env.VaultAddress = &v
	}
	return c.submit(ctx, env, out)
}

// postUserSigned signs one of the transfer-family actions and submits
// it. These never carry a vault address or expiry.
func (c *Client) postUserSigned(ctx context.Context, action Act, nonce uint64, primaryType string, payloadTypes []apitypes.Type, message apitypes.TypedDataMessage, out any) error {
	if c.signer == nil {
		return &ConstructionError{Op: "sign " + action.ActionType(), Err: fmt.Errorf("client has no signing key")}
	}
	sig, err := crypto.SignUserSignedAction(c.signer, primaryType, payloadTypes, message, c.isMainnet)
	if err != nil {
		return &ConstructionError{Op: "sign " + action.ActionType(), Err: err}
	}
	return c.submit(ctx, signedEnvelope{Action: action, Nonce: nonce, Signature: sig}, out)
}

func (c *Client) submit(ctx context.Context, env signedEnvelope, out any) error {
	var resp exchangeResponse
	if err := c.transport.post(ctx, exchangePath, env, &resp); err != nil {
		return err
	}
	return resp.decode(out)
}

// checkOrderStatuses maps an embedded per-order error onto the venue
// rejection type: a 200 whose status says "error" is still a rejection
// and must not be retried.
func checkOrderStatuses(statuses []OrderStatus) error {
	for _, s := range statuses {
		if s.Error != "" {
			return &VenueError{Body: s.Error}
		}
	}
	return nil
}

/* ---------------------------- orders ---------------------------- */

// Order places a single order.
func (c *Client) Order(ctx context.Context, req OrderRequest) (OrderResponse, error) {
	return c.BulkOrders(ctx, []OrderRequest{req}, GroupingNa)
}

// BulkOrders places a batch of orders under one grouping mode. All
// numeric fields are rounded to venue rules during wire conversion.
func (c *Client) BulkOrders(ctx context.Context, reqs []OrderRequest, grouping Grouping) (OrderResponse, error) {
	if len(reqs) == 0 {
		return OrderResponse{}, &ConstructionError{Op: "place orders", Err: fmt.Errorf("at least one order required")}
	}
	if grouping == "" {
		grouping = GroupingNa
	}

	wires := make([]OrderWire, len(reqs))
	for i, req := range reqs {
		in, err := c.registry.Resolve(ctx, req.Coin)
		if err != nil {
			return OrderResponse{}, &ConstructionError{Op: "resolve " + req.Coin, Err: err}
		}
		wire, err := orderToWire(req, in)
		if err != nil {
			return OrderResponse{}, &ConstructionError{Op: "build order " + req.Coin, Err: err}
		}
		wires[i] = wire
	}

	action := OrderAction{Type: "order", Orders: wires, Grouping: grouping}
	var resp OrderResponse
	if err := c.postAction(ctx, action, &resp); err != nil {
		return OrderResponse{}, err
	}
	return resp, checkOrderStatuses(resp.Data.Statuses)
}

// ModifyOrder replaces a single resting order.
func (c *Client) ModifyOrder(ctx context.Context, mod ModifyRequest) (OrderResponse, error) {
	return c.BatchModify(ctx, []ModifyRequest{mod})
}

// BatchModify replaces multiple resting orders in one action.
func (c *Client) BatchModify(ctx context.Context, mods []ModifyRequest) (OrderResponse, error) {
	if len(mods) == 0 {
		return OrderResponse{}, &ConstructionError{Op: "modify orders", Err: fmt.Errorf("at least one modify required")}
	}

	wires := make([]ModifyWire, len(mods))
	for i, mod := range mods {
		in, err := c.registry.Resolve(ctx, mod.Order.Coin)
		if err != nil {
			return OrderResponse{}, &ConstructionError{Op: "resolve " + mod.Order.Coin, Err: err}
		}
		wire, err := orderToWire(mod.Order, in)
		if err != nil {
			return OrderResponse{}, &ConstructionError{Op: "build modify " + mod.Order.Coin, Err: err}
		}

		var oid any
		switch {
		case mod.Cloid != "":
			oid = mod.Cloid
		case mod.Oid != 0:
			oid = mod.Oid
		default:
			return OrderResponse{}, &ConstructionError{Op: "modify orders", Err: fmt.Errorf("modify %d has neither oid nor cloid", i)}
		}
		wires[i] = ModifyWire{Oid: oid, Order: wire}
	}

	action := BatchModifyAction{Type: "batchModify", Modifies: wires}
	var resp OrderResponse
	if err := c.postAction(ctx, action, &resp); err != nil {
		return OrderResponse{}, err
	}
	return resp, checkOrderStatuses(resp.Data.Statuses)
}

// Cancel cancels one order by id.
func (c *Client) Cancel(ctx context.Context, coin string, oid int64) (CancelResponse, error) {
	return c.BulkCancel(ctx, []CancelRequest{{Coin: coin, Oid: oid}})
}

// BulkCancel cancels a batch of orders by id.
func (c *Client) BulkCancel(ctx context.Context, cancels []CancelRequest) (CancelResponse, error) {
	if len(cancels) == 0 {
		return CancelResponse{}, &ConstructionError{Op: "cancel orders", Err: fmt.Errorf("at least one cancel required")}
	}

	wires := make([]CancelWire, len(cancels))
	for i, cancel := range cancels {
		in, err := c.registry.Resolve(ctx, cancel.Coin)
		if err != nil {
			return CancelResponse{}, &ConstructionError{Op: "resolve " + cancel.Coin, Err: err}
		}
		wires[i] = CancelWire{Asset: in.AssetID, OrderID: cancel.Oid}
	}

	action := CancelAction{Type: "cancel", Cancels: wires}
	var resp CancelResponse
	if err := c.postAction(ctx, action, &resp); err != nil {
		return CancelResponse{}, err
	}
	return resp, nil
}

// CancelByCloid cancels one order by client order id.
func (c *Client) CancelByCloid(ctx context.Context, coin string, cloid string) (CancelResponse, error) {
	in, err := c.registry.Resolve(ctx, coin)
	if err != nil {
		return CancelResponse{}, &ConstructionError{Op: "resolve " + coin, Err: err}
	}

	action := CancelByCloidAction{
		Type:    "cancelByCloid",
		Cancels: []CancelByCloidWire{{Asset: in.AssetID, Cloid: cloid}},
	}
	var resp CancelResponse
	if err := c.postAction(ctx, action, &resp); err != nil {
		return CancelResponse{}, err
	}
	return resp, nil
}

/* ------------------------ market helpers ------------------------ */

// MarketOpen submits an aggressive IoC limit order at a slippage-
// adjusted price computed from the current mid. slippage <= 0 uses
// DefaultSlippage.
func (c *Client) MarketOpen(ctx context.Context, coin string, isBuy bool, sz float64, slippage float64) (OrderResponse, error) {
	px, err := c.slippagePrice(ctx, coin, isBuy, slippage)
	if err != nil {
		return OrderResponse{}, err
	}
	return c.Order(ctx, OrderRequest{
		Coin:      coin,
		IsBuy:     isBuy,
		Sz:        sz,
		LimitPx:   px,
		OrderType: OrderType{Limit: &LimitOrder{Tif: TifIoc}},
	})
}

// MarketClose closes the account's position in coin with a reduce-only
// IoC order sized to the full position.
func (c *Client) MarketClose(ctx context.Context, coin string, slippage float64) (OrderResponse, error) {
	state, err := c.UserState(ctx)
	if err != nil {
		return OrderResponse{}, err
	}

	in, err := c.registry.Resolve(ctx, coin)
	if err != nil {
		return OrderResponse{}, &ConstructionError{Op: "resolve " + coin, Err: err}
	}

	var szi float64
	found := false
	for _, ap := range state.AssetPositions {
		if ap.Position.Coin == in.Symbol {
			szi, err = strconv.ParseFloat(ap.Position.Szi, 64)
			if err != nil {
				return OrderResponse{}, &ConstructionError{Op: "parse position size", Err: err}
			}
			found = true
			break
		}
	}
	if !found || szi == 0 {
		return OrderResponse{}, &ConstructionError{Op: "close " + coin, Err: fmt.Errorf("no open position")}
	}

	isBuy := szi < 0
	px, err := c.slippagePrice(ctx, coin, isBuy, slippage)
	if err != nil {
		return OrderResponse{}, err
	}
	return c.Order(ctx, OrderRequest{
		Coin:       coin,
		IsBuy:      isBuy,
		Sz:         math.Abs(szi),
		LimitPx:    px,
		ReduceOnly: true,
		OrderType:  OrderType{Limit: &LimitOrder{Tif: TifIoc}},
	})
}

// slippagePrice shifts the current mid by the slippage fraction in the
// aggressive direction, then rounds to venue rules so the wire price is
// always valid.
func (c *Client) slippagePrice(ctx context.Context, coin string, isBuy bool, slippage float64) (float64, error) {
	if slippage <= 0 {
		slippage = DefaultSlippage
	}
	mid, err := c.MidPrice(ctx, coin)
	if err != nil {
		return 0, err
	}
	in, err := c.registry.Resolve(ctx, coin)
	if err != nil {
		return 0, &ConstructionError{Op: "resolve " + coin, Err: err}
	}

	px := mid * (1 - slippage)
	if isBuy {
		px = mid * (1 + slippage)
	}
	return asset.RoundPrice(px, in), nil
}

/* --------------------- leverage and margin ---------------------- */

// UpdateLeverage sets the leverage for an asset in cross or isolated
// mode.
func (c *Client) UpdateLeverage(ctx context.Context, coin string, leverage int, isCross bool) (DefaultResponse, error) {
	in, err := c.registry.Resolve(ctx, coin)
	if err != nil {
		return DefaultResponse{}, &ConstructionError{Op: "resolve " + coin, Err: err}
	}

	action := UpdateLeverageAction{Type: "updateLeverage", Asset: in.AssetID, IsCross: isCross, Leverage: leverage}
	var resp DefaultResponse
	err = c.postAction(ctx, action, &resp)
	return resp, err
}

// UpdateIsolatedMargin adds (positive) or removes (negative) USD margin
// on an isolated position.
func (c *Client) UpdateIsolatedMargin(ctx context.Context, coin string, amountUsd float64) (DefaultResponse, error) {
	in, err := c.registry.Resolve(ctx, coin)
	if err != nil {
		return DefaultResponse{}, &ConstructionError{Op: "resolve " + coin, Err: err}
	}

	action := UpdateIsolatedMarginAction{
		Type:  "updateIsolatedMargin",
		Asset: in.AssetID,
		IsBuy: true,
		Ntli:  usdToMicro(amountUsd),
	}
	var resp DefaultResponse
	err = c.postAction(ctx, action, &resp)
	return resp, err
}

/* ----------------------- schedule cancel ------------------------ */

// ScheduleCancel arms the dead-man's switch: all open orders cancel at
// cancelAt (unix millis). A zero value disarms a pending schedule.
func (c *Client) ScheduleCancel(ctx context.Context, cancelAt int64) (DefaultResponse, error) {
	action := ScheduleCancelAction{Type: "scheduleCancel"}
	if cancelAt > 0 {
		action.Time = &cancelAt
	}
	var resp DefaultResponse
	err := c.postAction(ctx, action, &resp)
	return resp, err
}

/* -------------------------- transfers --------------------------- */

// UsdClassTransfer moves USDC between the spot and perpetual
// sub-balances of the same account.
func (c *Client) UsdClassTransfer(ctx context.Context, amountUsd float64, toPerp bool) (DefaultResponse, error) {
	action := SpotUserAction{
		Type:          "spotUser",
		ClassTransfer: ClassTransfer{Usdc: usdToMicro(amountUsd), ToPerp: toPerp},
	}
	var resp DefaultResponse
	err := c.postAction(ctx, action, &resp)
	return resp, err
}

// UsdSend transfers USDC to another address on the venue.
func (c *Client) UsdSend(ctx context.Context, destination string, amountUsd float64) (DefaultResponse, error) {
	nonce := c.nextNonce()
	amount := asset.PriceToWire(amountUsd)
	action := UsdSendAction{
		Type:             "usdSend",
		SignatureChainID: crypto.SignatureChainID,
		HyperliquidChain: c.chainName(),
		Destination:      destination,
		Amount:           amount,
		Time:             int64(nonce),
	}
	message := apitypes.TypedDataMessage{
		"destination": destination,
		"amount":      amount,
		"time":        strconv.FormatUint(nonce, 10),
	}
	var resp DefaultResponse
	err := c.postUserSigned(ctx, action, nonce, "HyperliquidTransaction:UsdSend", crypto.UsdSendTypes, message, &resp)
	return resp, err
}

// Withdraw initiates a withdrawal to an external address via the
// bridge.
func (c *Client) Withdraw(ctx context.Context, destination string, amountUsd float64) (DefaultResponse, error) {
	nonce := c.nextNonce()
	amount := asset.PriceToWire(amountUsd)
	action := WithdrawAction{
		Type:             "withdraw3",
		SignatureChainID: crypto.SignatureChainID,
		HyperliquidChain: c.chainName(),
		Destination:      destination,
		Amount:           amount,
		Time:             int64(nonce),
	}
	message := apitypes.TypedDataMessage{
		"destination": destination,
		"amount":      amount,
		"time":        strconv.FormatUint(nonce, 10),
	}
	var resp DefaultResponse
	err := c.postUserSigned(ctx, action, nonce, "HyperliquidTransaction:Withdraw", crypto.WithdrawTypes, message, &resp)
	return resp, err
}

// SpotSend transfers a spot token to another address. token is the
// venue's "NAME:0xtokenid" form.
func (c *Client) SpotSend(ctx context.Context, destination string, token string, amount float64) (DefaultResponse, error) {
	nonce := c.nextNonce()
	amountStr := asset.PriceToWire(amount)
	action := SpotSendAction{
		Type:             "spotSend",
		SignatureChainID: crypto.SignatureChainID,
		HyperliquidChain: c.chainName(),
		Destination:      destination,
		Token:            token,
		Amount:           amountStr,
		Time:             int64(nonce),
	}
	message := apitypes.TypedDataMessage{
		"destination": destination,
		"token":       token,
		"amount":      amountStr,
		"time":        strconv.FormatUint(nonce, 10),
	}
	var resp DefaultResponse
	err := c.postUserSigned(ctx, action, nonce, "HyperliquidTransaction:SpotSend", crypto.SpotSendTypes, message, &resp)
	return resp, err
}

/* ----------------------------- TWAP ----------------------------- */

// TwapOrder schedules a TWAP: sz sliced over minutes, optionally with
// randomized slice timing. Returns the running TWAP id.
func (c *Client) TwapOrder(ctx context.Context, coin string, isBuy bool, sz float64, reduceOnly bool, minutes int, randomize bool) (TwapOrderResponse, error) {
	in, err := c.registry.Resolve(ctx, coin)
	if err != nil {
		return TwapOrderResponse{}, &ConstructionError{Op: "resolve " + coin, Err: err}
	}

	rounded := asset.RoundSize(sz, in)
	if rounded == 0 {
		return TwapOrderResponse{}, &ConstructionError{Op: "twap " + coin, Err: fmt.Errorf("size %v rounds to zero", sz)}
	}

	action := TwapOrderAction{
		Type: "twapOrder",
		Twap: TwapWire{
			Asset:      in.AssetID,
			IsBuy:      isBuy,
			Sz:         asset.SizeToWire(rounded, in.SzDecimals),
			ReduceOnly: reduceOnly,
			Minutes:    minutes,
			Randomize:  randomize,
		},
	}
	var resp TwapOrderResponse
	if err := c.postAction(ctx, action, &resp); err != nil {
		return TwapOrderResponse{}, err
	}
	if resp.Data.Status.Error != "" {
		return TwapOrderResponse{}, &VenueError{Body: resp.Data.Status.Error}
	}
	return resp, nil
}

// TwapCancel stops a running TWAP schedule.
func (c *Client) TwapCancel(ctx context.Context, coin string, twapID int64) (DefaultResponse, error) {
	in, err := c.registry.Resolve(ctx, coin)
	if err != nil {
		return DefaultResponse{}, &ConstructionError{Op: "resolve " + coin, Err: err}
	}

	action := TwapCancelAction{Type: "twapCancel", Asset: in.AssetID, TwapID: twapID}
	var resp DefaultResponse
	err = c.postAction(ctx, action, &resp)
	return resp, err
}

func (c *Client) chainName() string {
	if c.isMainnet {
		return "Mainnet"
	}
	return "Testnet"
}

// usdToMicro converts a USD amount to the integer micro-USD the venue
// uses for margin and class-transfer amounts.
func usdToMicro(amount float64) int64 {
	return int64(math.Round(amount * 1e6))
}
