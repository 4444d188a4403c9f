// sign-order builds, rounds, hashes, and signs an order action fully
// offline, then verifies the signature by recovery. Useful for checking
// a key and inspecting the exact envelope before pointing a client at
// the venue.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/params"
	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/crypto"
	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/hyper"
	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/hyper/asset"
)

func main() {
	cfg := params.LoadFromEnv("")

	var signer *crypto.Signer
	var err error
	if cfg.Exchange.PrivateKey != "" {
		signer, err = crypto.FromPrivateKeyHex(cfg.Exchange.PrivateKey)
		if err != nil {
			fmt.Printf("Error loading key: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Loaded key from HL_PRIVATE_KEY")
	} else {
		signer, err = crypto.GenerateKey()
		if err != nil {
			fmt.Printf("Error generating key: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Generated throwaway keypair")
	}
	fmt.Printf("Address: %s\n\n", signer.Address().Hex())

	// Build an ETH order with deliberately un-round inputs to show the
	// normalizer at work.
	in := asset.Instrument{Symbol: "ETH", AssetID: 1, SzDecimals: 4}
	px := asset.RoundPrice(2001.236, in)
	sz := asset.RoundSize(0.01, in)

	wire := hyper.OrderWire{
		Asset:     in.AssetID,
		IsBuy:     true,
		LimitPx:   asset.PriceToWire(px),
		Sz:        asset.SizeToWire(sz, in.SzDecimals),
		OrderType: hyper.OrderTypeWire{Limit: &hyper.LimitWire{Tif: hyper.TifGtc}},
	}
	action := hyper.OrderAction{Type: "order", Orders: []hyper.OrderWire{wire}, Grouping: hyper.GroupingNa}

	fmt.Println("Order wire:")
	fmt.Printf("  asset=%d buy=%v px=%s sz=%s\n\n", wire.Asset, wire.IsBuy, wire.LimitPx, wire.Sz)

	nonce := uint64(1700000000000)
	hash, err := crypto.ActionHash(action, nonce, nil, nil)
	if err != nil {
		fmt.Printf("Error hashing: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Action hash: %s\n", hash.Hex())

	sig, err := crypto.SignL1Action(signer, action, nonce, nil, nil, cfg.Exchange.Mainnet)
	if err != nil {
		fmt.Printf("Error signing: %v\n", err)
		os.Exit(1)
	}

	envelope := map[string]any{
		"action":    action,
		"nonce":     nonce,
		"signature": sig,
	}
	out, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\nSigned envelope:")
	fmt.Println(string(out))

	// Recover the signer from the phantom-agent typed data to prove the
	// signature round-trips.
	source := "b"
	if cfg.Exchange.Mainnet {
		source = "a"
	}
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Agent": []apitypes.Type{
				{Name: "source", Type: "string"},
				{Name: "connectionId", Type: "bytes32"},
			},
		},
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(1337),
			VerifyingContract: "0x0000000000000000000000000000000000000000",
		},
		Message: apitypes.TypedDataMessage{
			"source":       source,
			"connectionId": hexutil.Encode(hash.Bytes()),
		},
	}
	recovered, err := crypto.RecoverTypedDataSigner(typedData, sig)
	if err != nil {
		fmt.Printf("Error recovering: %v\n", err)
		os.Exit(1)
	}

	if recovered != signer.Address() {
		fmt.Printf("✗ Recovered %s, want %s\n", recovered.Hex(), signer.Address().Hex())
		os.Exit(1)
	}
	fmt.Printf("\n✓ Signature valid, recovered signer %s\n", recovered.Hex())
}
