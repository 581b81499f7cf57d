package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cointrail/cointrail/pkg/types"
)

func init() {
	SyncCmd.Flags().String("user", "", "user id to sync")
	SyncCmd.Flags().String("exchange", "upbit", "exchange provider")
	SyncCmd.Flags().Bool("all-users", false, "sync every user holding a credential")
	RootCmd.AddCommand(SyncCmd)
}

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "pull trade history into the ledger",

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

		allUsers, err := cmd.Flags().GetBool("all-users")
		if err != nil {
			return err
		}

		userID, err := cmd.Flags().GetString("user")
		if err != nil {
			return err
		}

		if !allUsers && userID == "" {
			return errors.New("either --user or --all-users is required")
		}

		environ, err := newEnvironment(ctx)
		if err != nil {
			return err
		}
		defer environ.Close()

		if allUsers {
			syncAllUsers(ctx, environ)
			return nil
		}

		result, err := environ.Sync.Sync(ctx, userID, exchangeName)
		if err != nil {
			return err
		}

		log.Infof("sync done: %d orders seen, %d inserted, %d skipped, %d unresolved",
			result.Orders, result.Inserted, result.Skipped, result.Unresolved)
		return nil
	},
}
