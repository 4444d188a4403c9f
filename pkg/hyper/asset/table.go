package asset

// perpAssets is the static symbol -> asset id table for the perpetual
// universe, keyed by base symbol after quote-suffix stripping. Perp ids
// are the asset's position in the venue's perp universe and are stable,
// unlike spot ids.
var perpAssets = map[string]int{
	"BTC":   0,
	"ETH":   1,
	"ATOM":  2,
	"MATIC": 3,
	"DYDX":  4,
	"SOL":   5,
	"AVAX":  6,
	"BNB":   7,
	"APE":   8,
	"OP":    9,
	"LTC":   10,
	"ARB":   11,
	"DOGE":  12,
	"INJ":   13,
	"SUI":   14,
	"KPEPE": 15,
	"CRV":   16,
	"LDO":   17,
	"LINK":  18,
	"STX":   19,
	"RNDR":  20,
	"CFX":   21,
	"FTM":   22,
	"GMX":   23,
	"SNX":   24,
	"XRP":   25,
	"BCH":   26,
	"APT":   27,
	"AAVE":  28,
	"COMP":  29,
	"MKR":   30,
	"WLD":   31,
	"FXS":   32,
	"HPOS":  33,
	"RLB":   34,
	"UNIBOT": 35,
	"YGG":   36,
	"TRX":   37,
	"KSHIB": 38,
	"UNI":   39,
	"SEI":   40,
}

// perpSzDecimals holds size decimals for the perps we hard-code; any
// symbol absent here rounds with DefaultSzDecimals.
var perpSzDecimals = map[string]int{
	"BTC":  5,
	"ETH":  4,
	"ATOM": 2,
	"SOL":  2,
	"AVAX": 2,
	"BNB":  3,
	"OP":   1,
	"LTC":  2,
	"ARB":  1,
	"DOGE": 0,
	"INJ":  1,
	"SUI":  1,
	"LINK": 1,
	"XRP":  0,
	"BCH":  3,
	"APT":  2,
	"AAVE": 2,
	"MKR":  4,
	"UNI":  1,
	"TRX":  0,
}
