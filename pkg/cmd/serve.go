package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cointrail/cointrail/pkg/exchange"
	"github.com/cointrail/cointrail/pkg/server"
	"github.com/cointrail/cointrail/pkg/types"
)

func init() {
	ServeCmd.Flags().String("bind", ":8080", "server bind address")
	ServeCmd.Flags().String("sync-schedule", "", "cron spec for background syncs of all registered users, e.g. '@hourly'")
	RootCmd.AddCommand(ServeCmd)
}

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the http api server",

	SilenceUsage: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		bind, err := cmd.Flags().GetString("bind")
		if err != nil {
			return err
		}

		schedule, err := cmd.Flags().GetString("sync-schedule")
		if err != nil {
			return err
		}

		environ, err := newEnvironment(ctx)
		if err != nil {
			return err
		}
		defer environ.Close()

		if schedule != "" {
			c := cron.New()
			_, err := c.AddFunc(schedule, func() {
				syncAllUsers(ctx, environ)
			})
			if err != nil {
				return err
			}
			c.Start()
			defer c.Stop()
			log.Infof("background sync scheduled: %s", schedule)
		}

		srv := &server.Server{
			Bind:             bind,
			Credentials:      environ.Credentials,
			Coins:            environ.Coins,
			Ledger:           environ.Ledger,
			Sync:             environ.Sync,
			NewMarketService: exchange.NewMarketService,
		}
		return srv.Run(ctx)
	},
}

// syncAllUsers walks every registered credential and runs one sync per
// (user, exchange). Failures are logged and do not stop the walk.
func syncAllUsers(ctx context.Context, environ *environment) {
	for _, exchangeName := range types.SupportedExchanges {
		userIDs, err := environ.Credentials.Users(ctx, exchangeName)
		if err != nil {
			log.WithError(err).Error("list registered users failed")
			continue
		}

		for _, userID := range userIDs {
			result, err := environ.Sync.Sync(ctx, userID, exchangeName)
			if err != nil {
				log.WithError(err).WithFields(log.Fields{
					"user":     userID,
					"exchange": exchangeName,
				}).Error("background sync failed")
				continue
			}

			log.WithFields(log.Fields{
				"user":     userID,
				"exchange": exchangeName,
				"inserted": result.Inserted,
				"skipped":  result.Skipped,
			}).Info("background sync finished")
		}
	}
}
