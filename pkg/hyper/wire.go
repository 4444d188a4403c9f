package hyper

import (
	"fmt"

	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/hyper/asset"
)

// orderToWire converts caller intent into the venue's wire order,
// rounding price and size to the instrument's rules. Every numeric
// field crosses here; there is no other path onto the wire, so callers
// cannot submit an unrounded value.
func orderToWire(req OrderRequest, in asset.Instrument) (OrderWire, error) {
	px := asset.RoundPrice(req.LimitPx, in)
	sz := asset.RoundSize(req.Sz, in)
	if sz == 0 {
		return OrderWire{}, fmt.Errorf("size %v rounds to zero at %d decimals", req.Sz, in.SzDecimals)
	}

	wire := OrderWire{
		Asset:      in.AssetID,
		IsBuy:      req.IsBuy,
		LimitPx:    asset.PriceToWire(px),
		Sz:         asset.SizeToWire(sz, in.SzDecimals),
		ReduceOnly: req.ReduceOnly,
	}
	if req.Cloid != "" {
		cloid := req.Cloid
		wire.Cloid = &cloid
	}

	switch {
	case req.OrderType.Limit != nil && req.OrderType.Trigger != nil:
		return OrderWire{}, fmt.Errorf("order type must be limit or trigger, not both")
	case req.OrderType.Limit != nil:
		wire.OrderType.Limit = &LimitWire{Tif: req.OrderType.Limit.Tif}
	case req.OrderType.Trigger != nil:
		trig := req.OrderType.Trigger
		wire.OrderType.Trigger = &TriggerWire{
			IsMarket:  trig.IsMarket,
			TriggerPx: asset.PriceToWire(asset.RoundPrice(trig.TriggerPx, in)),
			Tpsl:      trig.Tpsl,
		}
	default:
		return OrderWire{}, fmt.Errorf("order type not set")
	}

	return wire, nil
}
