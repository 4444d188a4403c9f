// mids connects to the venue, subscribes to the allMids stream, and
// prints each mid-price update until interrupted. Works without a
// signing key.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"go.uber.org/zap"

	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/params"
	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/hyper"
	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/util"
)

func main() {
	log, err := util.NewLogger()
	if err != nil {
		fmt.Printf("Error building logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := params.LoadFromEnv("")
	client, err := hyper.New(hyper.Config{
		BaseURL:   cfg.Exchange.APIURL,
		IsMainnet: cfg.Exchange.Mainnet,
		Timeout:   cfg.Exchange.HTTPTimeout,
		Logger:    log,
	})
	if err != nil {
		log.Fatal("building client", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mids, err := client.MidsStream(ctx)
	if err != nil {
		log.Fatal("subscribing to mids", zap.Error(err))
	}
	log.Info("subscribed to allMids", zap.Bool("mainnet", cfg.Exchange.Mainnet))

	for update := range mids {
		coins := make([]string, 0, len(update))
		for coin := range update {
			coins = append(coins, coin)
		}
		sort.Strings(coins)

		shown := coins
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, coin := range shown {
			fmt.Printf("%-8s %s\n", coin, update[coin])
		}
		fmt.Printf("-- %d coins --\n", len(coins))
	}
	log.Info("stream closed")
}
