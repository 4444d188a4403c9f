package hyper

// Action payloads. Struct field order here is load-bearing: the action
// hash is keccak over the msgpack encoding, and msgpack emits fields in
// declared order. Reordering a field produces a digest the venue will
// reject (or worse, one that authorizes something else), so these
// structs are the closed set of action variants and every new variant
// must be added here rather than built ad hoc.

// Act is implemented by every action variant. The type tag doubles as
// the wire discriminator and the envelope routing key.
type Act interface {
	ActionType() string
}

// OrderWire is the venue's canonical on-wire order representation.
// Price and size are decimal strings, never binary floats.
type OrderWire struct {
	Asset      int           `json:"a" msgpack:"a"`
	IsBuy      bool          `json:"b" msgpack:"b"`
	LimitPx    string        `json:"p" msgpack:"p"`
	Sz         string        `json:"s" msgpack:"s"`
	ReduceOnly bool          `json:"r" msgpack:"r"`
	OrderType  OrderTypeWire `json:"t" msgpack:"t"`
	Cloid      *string       `json:"c,omitempty" msgpack:"c,omitempty"`
}

// OrderTypeWire is the tagged order-type variant: exactly one of Limit
// or Trigger is set.
type OrderTypeWire struct {
	Limit   *LimitWire   `json:"limit,omitempty" msgpack:"limit,omitempty"`
	Trigger *TriggerWire `json:"trigger,omitempty" msgpack:"trigger,omitempty"`
}

type LimitWire struct {
	Tif Tif `json:"tif" msgpack:"tif"`
}

type TriggerWire struct {
	IsMarket  bool   `json:"isMarket" msgpack:"isMarket"`
	TriggerPx string `json:"triggerPx" msgpack:"triggerPx"`
	Tpsl      Tpsl   `json:"tpsl" msgpack:"tpsl"`
}

// OrderAction places a batch of orders under one grouping mode.
type OrderAction struct {
	Type     string      `json:"type" msgpack:"type"`
	Orders   []OrderWire `json:"orders" msgpack:"orders"`
	Grouping Grouping    `json:"grouping" msgpack:"grouping"`
}

func (OrderAction) ActionType() string { return "order" }

// CancelWire identifies one order to cancel by (asset, oid).
type CancelWire struct {
	Asset   int   `json:"a" msgpack:"a"`
	OrderID int64 `json:"o" msgpack:"o"`
}

type CancelAction struct {
	Type    string       `json:"type" msgpack:"type"`
	Cancels []CancelWire `json:"cancels" msgpack:"cancels"`
}

func (CancelAction) ActionType() string { return "cancel" }

// CancelByCloidWire carries long-form keys, unlike CancelWire.
type CancelByCloidWire struct {
	Asset int    `json:"asset" msgpack:"asset"`
	Cloid string `json:"cloid" msgpack:"cloid"`
}

type CancelByCloidAction struct {
	Type    string              `json:"type" msgpack:"type"`
	Cancels []CancelByCloidWire `json:"cancels" msgpack:"cancels"`
}

func (CancelByCloidAction) ActionType() string { return "cancelByCloid" }

// ModifyWire pairs an existing order id (int64 oid or string cloid)
// with its replacement order.
type ModifyWire struct {
	Oid   any       `json:"oid" msgpack:"oid"`
	Order OrderWire `json:"order" msgpack:"order"`
}

type BatchModifyAction struct {
	Type     string       `json:"type" msgpack:"type"`
	Modifies []ModifyWire `json:"modifies" msgpack:"modifies"`
}

func (BatchModifyAction) ActionType() string { return "batchModify" }

type UpdateLeverageAction struct {
	Type     string `json:"type" msgpack:"type"`
	Asset    int    `json:"asset" msgpack:"asset"`
	IsCross  bool   `json:"isCross" msgpack:"isCross"`
	Leverage int    `json:"leverage" msgpack:"leverage"`
}

func (UpdateLeverageAction) ActionType() string { return "updateLeverage" }

// UpdateIsolatedMarginAction moves margin into or out of an isolated
// position. Ntli is notional in integer micro-USD.
type UpdateIsolatedMarginAction struct {
	Type  string `json:"type" msgpack:"type"`
	Asset int    `json:"asset" msgpack:"asset"`
	IsBuy bool   `json:"isBuy" msgpack:"isBuy"`
	Ntli  int64  `json:"ntli" msgpack:"ntli"`
}

func (UpdateIsolatedMarginAction) ActionType() string { return "updateIsolatedMargin" }

// ScheduleCancelAction arms (Time set) or disarms (Time nil) the
// dead-man's switch that cancels all open orders at the given time.
type ScheduleCancelAction struct {
	Type string `json:"type" msgpack:"type"`
	Time *int64 `json:"time,omitempty" msgpack:"time,omitempty"`
}

func (ScheduleCancelAction) ActionType() string { return "scheduleCancel" }

// SpotUserAction transfers USDC between the spot and perpetual
// sub-balances of the same account.
type SpotUserAction struct {
	Type          string        `json:"type" msgpack:"type"`
	ClassTransfer ClassTransfer `json:"classTransfer" msgpack:"classTransfer"`
}

// ClassTransfer carries the amount in integer micro-USDC.
type ClassTransfer struct {
	Usdc   int64 `json:"usdc" msgpack:"usdc"`
	ToPerp bool  `json:"toPerp" msgpack:"toPerp"`
}

func (SpotUserAction) ActionType() string { return "spotUser" }

// TwapWire describes a TWAP schedule: the total size is sliced over
// Minutes, optionally randomizing slice timing.
type TwapWire struct {
	Asset      int    `json:"a" msgpack:"a"`
	IsBuy      bool   `json:"b" msgpack:"b"`
	Sz         string `json:"s" msgpack:"s"`
	ReduceOnly bool   `json:"r" msgpack:"r"`
	Minutes    int    `json:"m" msgpack:"m"`
	Randomize  bool   `json:"t" msgpack:"t"`
}

type TwapOrderAction struct {
	Type string   `json:"type" msgpack:"type"`
	Twap TwapWire `json:"twap" msgpack:"twap"`
}

func (TwapOrderAction) ActionType() string { return "twapOrder" }

type TwapCancelAction struct {
	Type   string `json:"type" msgpack:"type"`
	Asset  int    `json:"a" msgpack:"a"`
	TwapID int64  `json:"t" msgpack:"t"`
}

func (TwapCancelAction) ActionType() string { return "twapCancel" }

// The transfer family below is user-signed rather than L1-signed: the
// payload fields are signed directly under the transfer domain, and the
// wire form carries the signature chain id and network name that were
// part of the signed message.

type UsdSendAction struct {
	Type             string `json:"type" msgpack:"type"`
	SignatureChainID string `json:"signatureChainId" msgpack:"signatureChainId"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	Destination      string `json:"destination" msgpack:"destination"`
	Amount           string `json:"amount" msgpack:"amount"`
	Time             int64  `json:"time" msgpack:"time"`
}

func (UsdSendAction) ActionType() string { return "usdSend" }

type WithdrawAction struct {
	Type             string `json:"type" msgpack:"type"`
	SignatureChainID string `json:"signatureChainId" msgpack:"signatureChainId"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	Destination      string `json:"destination" msgpack:"destination"`
	Amount           string `json:"amount" msgpack:"amount"`
	Time             int64  `json:"time" msgpack:"time"`
}

func (WithdrawAction) ActionType() string { return "withdraw3" }

type SpotSendAction struct {
	Type             string `json:"type" msgpack:"type"`
	SignatureChainID string `json:"signatureChainId" msgpack:"signatureChainId"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	Destination      string `json:"destination" msgpack:"destination"`
	Token            string `json:"token" msgpack:"token"`
	Amount           string `json:"amount" msgpack:"amount"`
	Time             int64  `json:"time" msgpack:"time"`
}

func (SpotSendAction) ActionType() string { return "spotSend" }
