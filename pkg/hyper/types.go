package hyper

import (
	"encoding/json"
	"fmt"
)

// Side is the venue's one-letter order side.
type Side string

const (
	SideBid Side = "B"
	SideAsk Side = "A"
)

// Tif is time-in-force for limit orders.
type Tif string

const (
	TifGtc Tif = "Gtc" // good till cancel
	TifIoc Tif = "Ioc" // immediate or cancel
	TifAlo Tif = "Alo" // add liquidity only
)

// Tpsl distinguishes take-profit from stop-loss triggers.
type Tpsl string

const (
	TpslTakeProfit Tpsl = "tp"
	TpslStopLoss   Tpsl = "sl"
)

// Grouping is the batch grouping mode for order actions.
type Grouping string

const (
	GroupingNa           Grouping = "na"
	GroupingNormalTpsl   Grouping = "normalTpsl"
	GroupingPositionTpsl Grouping = "positionTpsl"
)

// OrderType is the caller-facing tagged variant: exactly one of Limit
// or Trigger must be set.
type OrderType struct {
	Limit   *LimitOrder
	Trigger *TriggerOrder
}

type LimitOrder struct {
	Tif Tif
}

type TriggerOrder struct {
	IsMarket  bool
	TriggerPx float64
	Tpsl      Tpsl
}

// OrderRequest is caller intent for a single order, in human units.
// Price and size are rounded to venue rules during wire conversion.
type OrderRequest struct {
	Coin       string
	IsBuy      bool
	Sz         float64
	LimitPx    float64
	OrderType  OrderType
	ReduceOnly bool
	Cloid      string // optional 0x-prefixed 16-byte client order id
}

// ModifyRequest replaces an existing order, identified by oid or cloid.
type ModifyRequest struct {
	Oid   int64
	Cloid string
	Order OrderRequest
}

// CancelRequest identifies one order to cancel.
type CancelRequest struct {
	Coin string
	Oid  int64
}

// --- Read-side payloads ---

// Meta is the perpetual asset universe.
type Meta struct {
	Universe []PerpAssetInfo `json:"universe"`
}

type PerpAssetInfo struct {
	Name         string `json:"name"`
	SzDecimals   int    `json:"szDecimals"`
	MaxLeverage  int    `json:"maxLeverage"`
	OnlyIsolated bool   `json:"onlyIsolated,omitempty"`
}

// Leverage is a position's leverage mode and value.
type Leverage struct {
	Type   string  `json:"type"` // "cross" or "isolated"
	Value  int     `json:"value"`
	RawUsd *string `json:"rawUsd,omitempty"`
}

type Position struct {
	Coin           string   `json:"coin"`
	Szi            string   `json:"szi"`
	EntryPx        *string  `json:"entryPx"`
	Leverage       Leverage `json:"leverage"`
	LiquidationPx  *string  `json:"liquidationPx"`
	MarginUsed     string   `json:"marginUsed"`
	PositionValue  string   `json:"positionValue"`
	ReturnOnEquity string   `json:"returnOnEquity"`
	UnrealizedPnl  string   `json:"unrealizedPnl"`
}

type AssetPosition struct {
	Type     string   `json:"type"`
	Position Position `json:"position"`
}

type MarginSummary struct {
	AccountValue    string `json:"accountValue"`
	TotalMarginUsed string `json:"totalMarginUsed"`
	TotalNtlPos     string `json:"totalNtlPos"`
	TotalRawUsd     string `json:"totalRawUsd"`
}

// UserState is the account margin/position snapshot.
type UserState struct {
	AssetPositions     []AssetPosition `json:"assetPositions"`
	MarginSummary      MarginSummary   `json:"marginSummary"`
	CrossMarginSummary MarginSummary   `json:"crossMarginSummary"`
	Withdrawable       string          `json:"withdrawable"`
}

// SpotBalance is one token balance in the spot sub-account.
type SpotBalance struct {
	Coin  string `json:"coin"`
	Token int    `json:"token"`
	Hold  string `json:"hold"`
	Total string `json:"total"`
}

type SpotUserState struct {
	Balances []SpotBalance `json:"balances"`
}

type OpenOrder struct {
	Coin      string `json:"coin"`
	Side      Side   `json:"side"`
	LimitPx   string `json:"limitPx"`
	Sz        string `json:"sz"`
	Oid       int64  `json:"oid"`
	Timestamp int64  `json:"timestamp"`
	Cloid     string `json:"cloid,omitempty"`
}

type Fill struct {
	Coin          string `json:"coin"`
	Px            string `json:"px"`
	Sz            string `json:"sz"`
	Side          Side   `json:"side"`
	Time          int64  `json:"time"`
	StartPosition string `json:"startPosition"`
	Dir           string `json:"dir"`
	ClosedPnl     string `json:"closedPnl"`
	Hash          string `json:"hash"`
	Oid           int64  `json:"oid"`
	Crossed       bool   `json:"crossed"`
	Fee           string `json:"fee"`
	FeeToken      string `json:"feeToken"`
}

type FundingEntry struct {
	Coin        string `json:"coin"`
	FundingRate string `json:"fundingRate"`
	Premium     string `json:"premium"`
	Time        int64  `json:"time"`
}

// UserRole is the venue's answer to the role lookup: whether this key
// is a plain user, an agent for some main wallet, a vault, or unknown.
type UserRole struct {
	Role string       `json:"role"` // "user" | "agent" | "vault" | "missing"
	Data *UserRoleRef `json:"data,omitempty"`
}

type UserRoleRef struct {
	User string `json:"user"` // main wallet the agent acts for
}

// L2Book is an order book snapshot; Levels is [bids, asks].
type L2Book struct {
	Coin   string       `json:"coin"`
	Levels [2][]L2Level `json:"levels"`
	Time   int64        `json:"time"`
}

type L2Level struct {
	Px string `json:"px"`
	Sz string `json:"sz"`
	N  int    `json:"n"`
}

// --- Exchange responses ---

// exchangeResponse is the venue's outer status envelope on the write
// endpoint. A non-"ok" status carries an error string in Response.
type exchangeResponse struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

func (r *exchangeResponse) decode(out any) error {
	if r.Status != "ok" {
		var msg string
		if err := json.Unmarshal(r.Response, &msg); err != nil {
			msg = string(r.Response)
		}
		return &VenueError{Body: msg}
	}
	if out == nil || len(r.Response) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Response, out); err != nil {
		return fmt.Errorf("failed to decode exchange response: %w", err)
	}
	return nil
}

// OrderStatus is the per-order outcome inside an order or modify
// response: exactly one of Resting, Filled or Error is populated.
type OrderStatus struct {
	Resting *RestingOrder `json:"resting,omitempty"`
	Filled  *FilledOrder  `json:"filled,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type RestingOrder struct {
	Oid   int64  `json:"oid"`
	Cloid string `json:"cloid,omitempty"`
}

type FilledOrder struct {
	Oid     int64  `json:"oid"`
	TotalSz string `json:"totalSz"`
	AvgPx   string `json:"avgPx"`
}

type OrderResponse struct {
	Type string `json:"type"`
	Data struct {
		Statuses []OrderStatus `json:"statuses"`
	} `json:"data"`
}

type CancelResponse struct {
	Type string `json:"type"`
	Data struct {
		Statuses []string `json:"statuses"`
	} `json:"data"`
}

type TwapOrderResponse struct {
	Type string `json:"type"`
	Data struct {
		Status struct {
			Running *struct {
				TwapID int64 `json:"twapId"`
			} `json:"running,omitempty"`
			Error string `json:"error,omitempty"`
		} `json:"status"`
	} `json:"data"`
}

type DefaultResponse struct {
	Type string `json:"type"`
}
