package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cointrail/cointrail/pkg/service"
)

func init() {
	RootCmd.AddCommand(MigrateCmd)
}

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "apply pending database migrations",

	SilenceUsage: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		db := service.NewDatabaseService(viper.GetString("db-driver"), viper.GetString("dsn"))
		if err := db.Connect(); err != nil {
			return err
		}
		defer db.Close()

		if err := db.Upgrade(ctx); err != nil {
			return err
		}

		log.Info("migrations applied")
		return nil
	},
}
