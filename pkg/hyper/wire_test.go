package hyper

import (
	"testing"

	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/hyper/asset"
)

func TestOrderToWire(t *testing.T) {
	eth := asset.Instrument{Symbol: "ETH", AssetID: 1, SzDecimals: 4}

	wire, err := orderToWire(OrderRequest{
		Coin:      "ETH",
		IsBuy:     true,
		Sz:        0.01,
		LimitPx:   2001.236,
		OrderType: OrderType{Limit: &LimitOrder{Tif: TifGtc}},
	}, eth)
	if err != nil {
		t.Fatalf("orderToWire: %v", err)
	}

	if wire.Asset != 1 {
		t.Errorf("asset = %d, want 1", wire.Asset)
	}
	if wire.LimitPx != "2001.2" {
		t.Errorf("limitPx = %q, want \"2001.2\"", wire.LimitPx)
	}
	if wire.Sz != "0.0100" {
		t.Errorf("sz = %q, want \"0.0100\"", wire.Sz)
	}
	if wire.OrderType.Limit == nil || wire.OrderType.Limit.Tif != TifGtc {
		t.Errorf("order type = %+v, want Gtc limit", wire.OrderType)
	}
	if wire.Cloid != nil {
		t.Errorf("cloid = %v, want nil when unset", *wire.Cloid)
	}
}

func TestOrderToWireTrigger(t *testing.T) {
	eth := asset.Instrument{Symbol: "ETH", AssetID: 1, SzDecimals: 4}

	wire, err := orderToWire(OrderRequest{
		Coin:    "ETH",
		Sz:      0.5,
		LimitPx: 1900,
		OrderType: OrderType{Trigger: &TriggerOrder{
			IsMarket:  true,
			TriggerPx: 1950.123456,
			Tpsl:      TpslStopLoss,
		}},
	}, eth)
	if err != nil {
		t.Fatalf("orderToWire: %v", err)
	}

	trig := wire.OrderType.Trigger
	if trig == nil {
		t.Fatal("trigger variant not set")
	}
	// Trigger price goes through the same rounding as the limit price.
	if trig.TriggerPx != "1950.1" {
		t.Errorf("triggerPx = %q, want \"1950.1\"", trig.TriggerPx)
	}
	if trig.Tpsl != TpslStopLoss {
		t.Errorf("tpsl = %q, want sl", trig.Tpsl)
	}
}

func TestOrderToWireCloid(t *testing.T) {
	eth := asset.Instrument{Symbol: "ETH", AssetID: 1, SzDecimals: 4}

	wire, err := orderToWire(OrderRequest{
		Coin:      "ETH",
		Sz:        1,
		LimitPx:   2000,
		OrderType: OrderType{Limit: &LimitOrder{Tif: TifAlo}},
		Cloid:     "0x00000000000000000000000000000001",
	}, eth)
	if err != nil {
		t.Fatalf("orderToWire: %v", err)
	}
	if wire.Cloid == nil || *wire.Cloid != "0x00000000000000000000000000000001" {
		t.Errorf("cloid not carried onto the wire: %v", wire.Cloid)
	}
}

func TestOrderToWireRejects(t *testing.T) {
	eth := asset.Instrument{Symbol: "ETH", AssetID: 1, SzDecimals: 4}

	// Size rounding to zero.
	_, err := orderToWire(OrderRequest{
		Coin:      "ETH",
		Sz:        0.00001,
		LimitPx:   2000,
		OrderType: OrderType{Limit: &LimitOrder{Tif: TifGtc}},
	}, eth)
	if err == nil {
		t.Error("size rounding to zero should be rejected")
	}

	// No order type.
	_, err = orderToWire(OrderRequest{Coin: "ETH", Sz: 1, LimitPx: 2000}, eth)
	if err == nil {
		t.Error("missing order type should be rejected")
	}

	// Both variants set.
	_, err = orderToWire(OrderRequest{
		Coin:    "ETH",
		Sz:      1,
		LimitPx: 2000,
		OrderType: OrderType{
			Limit:   &LimitOrder{Tif: TifGtc},
			Trigger: &TriggerOrder{TriggerPx: 1900, Tpsl: TpslTakeProfit},
		},
	}, eth)
	if err == nil {
		t.Error("ambiguous order type should be rejected")
	}
}
