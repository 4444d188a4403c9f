package asset

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundPrice normalizes a price to the venue's tick rules. Perpetual
// prices are first rounded to 5 significant decimal digits, then to
// max(0, 6 - szDecimals) decimal places; spot prices use a flat
// 5-decimal-place rule. The function is pure and total; a price that
// rounds to zero is the caller's problem to reject.
func RoundPrice(px float64, in Instrument) float64 {
	if in.IsSpot {
		return roundDecimals(px, 5)
	}
	px = roundSigFigs(px, 5)
	places := 6 - in.SzDecimals
	if places < 0 {
		places = 0
	}
	return roundDecimals(px, places)
}

// RoundSize normalizes an order size to the instrument's szDecimals.
func RoundSize(sz float64, in Instrument) float64 {
	return roundDecimals(sz, in.SzDecimals)
}

// PriceToWire renders a rounded price as the decimal string the venue
// expects, trailing zeros trimmed. Prices cross the wire as strings,
// never as binary floats, so both sides agree on every digit.
func PriceToWire(px float64) string {
	return decimal.NewFromFloat(px).String()
}

// SizeToWire renders a rounded size with exactly szDecimals digits.
func SizeToWire(sz float64, szDecimals int) string {
	return decimal.NewFromFloat(sz).StringFixed(int32(szDecimals))
}

func roundSigFigs(x float64, sig int) float64 {
	if x == 0 || math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	magnitude := math.Ceil(math.Log10(math.Abs(x)))
	power := float64(sig) - magnitude
	scale := math.Pow(10, power)
	return math.Round(x*scale) / scale
}

func roundDecimals(x float64, places int) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	rounded, _ := decimal.NewFromFloat(x).Round(int32(places)).Float64()
	return rounded
}
