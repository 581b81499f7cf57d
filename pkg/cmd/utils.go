package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/cointrail/cointrail/pkg/exchange"
	"github.com/cointrail/cointrail/pkg/service"
	"github.com/cointrail/cointrail/pkg/util"
)

type environment struct {
	Database    *service.DatabaseService
	Credentials *service.CredentialService
	Coins       *service.CoinService
	Ledger      *service.TradingHistoryService
	Watermarks  *service.WatermarkService
	Sync        *service.SyncService
}

// newEnvironment connects the database, applies pending migrations and
// wires the service graph.
func newEnvironment(ctx context.Context) (*environment, error) {
	driver := viper.GetString("db-driver")
	dsn := viper.GetString("dsn")
	if dsn == "" {
		return nil, errors.New("dsn is not set, use --dsn or the DSN environment variable")
	}

	credentialKey := viper.GetString("credential-key")
	if credentialKey == "" {
		return nil, errors.New("credential-key is not set, use --credential-key or the CREDENTIAL_KEY environment variable")
	}

	db := service.NewDatabaseService(driver, dsn)
	if err := db.Connect(); err != nil {
		return nil, errors.Wrap(err, "database connect")
	}

	if err := db.Upgrade(ctx); err != nil {
		return nil, errors.Wrap(err, "database upgrade")
	}

	credentials, err := service.NewCredentialService(db.DB, credentialKey)
	if err != nil {
		return nil, err
	}

	coins := service.NewCoinService(db.DB)
	ledger := service.NewTradingHistoryService(db.DB)
	watermarks := service.NewWatermarkService(db.DB)

	var limiter *rate.Limiter
	if syntax := viper.GetString("sync-rate-limit"); syntax != "" {
		limiter, err = util.ParseRateLimitSyntax(syntax)
		if err != nil {
			return nil, errors.Wrap(err, "parse sync-rate-limit")
		}
	}

	return &environment{
		Database:    db,
		Credentials: credentials,
		Coins:       coins,
		Ledger:      ledger,
		Watermarks:  watermarks,
		Sync: &service.SyncService{
			Credentials: credentials,
			Coins:       coins,
			Ledger:      ledger,
			Watermarks:  watermarks,
			NewExchange: exchange.New,
			Limiter:     limiter,
		},
	}, nil
}

func (e *environment) Close() error {
	return e.Database.Close()
}
