package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cointrail/cointrail/pkg/exchange"
	"github.com/cointrail/cointrail/pkg/types"
)

func init() {
	CoinsCmd.Flags().String("exchange", "upbit", "exchange provider")
	RootCmd.AddCommand(CoinsCmd)
}

var CoinsCmd = &cobra.Command{
	Use:   "coins",
	Short: "import the exchange's market list into the coin table",

	SilenceUsage: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		exchangeValue, err := cmd.Flags().GetString("exchange")
		if err != nil {
			return err
		}

		exchangeName, err := types.ValidExchangeName(exchangeValue)
		if err != nil {
			return err
		}

		environ, err := newEnvironment(ctx)
		if err != nil {
			return err
		}
		defer environ.Close()

		markets, err := exchange.NewMarketService(exchangeName)
		if err != nil {
			return err
		}

		coins, err := markets.QueryMarkets(ctx)
		if err != nil {
			return err
		}

		if err := environ.Coins.Import(ctx, coins); err != nil {
			return err
		}

		log.Infof("imported %d markets from %s", len(coins), exchangeName)
		return nil
	},
}
