package service

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/cointrail/cointrail/pkg/types"
)

// CoinService maps exchange market codes to ledger coin rows. Lookups are
// cached in memory since the coin table only changes on import.
type CoinService struct {
	DB      *sqlx.DB
	dialect DatabaseDialect

	mu    sync.Mutex
	cache map[string]types.Coin
}

func NewCoinService(db *sqlx.DB) *CoinService {
	return &CoinService{
		DB:      db,
		dialect: GetDialect(db.DriverName()),
		cache:   make(map[string]types.Coin),
	}
}

func coinCacheKey(exchange types.ExchangeName, marketCode string) string {
	return string(exchange) + "/" + strings.ToUpper(marketCode)
}

// FindByMarketCode resolves a market code like "KRW-BTC" into the coin row
// for the given exchange.
func (s *CoinService) FindByMarketCode(ctx context.Context, exchange types.ExchangeName, marketCode string) (types.Coin, error) {
	key := coinCacheKey(exchange, marketCode)

	s.mu.Lock()
	coin, ok := s.cache[key]
	s.mu.Unlock()
	if ok {
		return coin, nil
	}

	err := s.DB.GetContext(ctx, &coin,
		"SELECT * FROM coins WHERE exchange = ? AND market_code = ?",
		exchange, strings.ToUpper(marketCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return coin, errors.Wrapf(types.ErrUnknownMarket, "market code %s is not registered for %s", marketCode, exchange)
		}
		return coin, err
	}

	s.mu.Lock()
	s.cache[key] = coin
	s.mu.Unlock()
	return coin, nil
}

// Import writes the given coins, updating names on conflict, and drops the
// lookup cache so following syncs see the fresh rows.
func (s *CoinService) Import(ctx context.Context, coins []types.Coin) error {
	query := s.dialect.UpsertSQL("coins",
		"symbol, quote_currency, market_code, korean_name, english_name, exchange",
		":symbol, :quote_currency, :market_code, :korean_name, :english_name, :exchange",
		"exchange, market_code",
		"korean_name = :korean_name, english_name = :english_name")

	for _, coin := range coins {
		coin.MarketCode = strings.ToUpper(coin.MarketCode)
		if _, err := s.DB.NamedExecContext(ctx, query, coin); err != nil {
			return errors.Wrapf(err, "import coin %s", coin.MarketCode)
		}
	}

	s.mu.Lock()
	s.cache = make(map[string]types.Coin)
	s.mu.Unlock()
	return nil
}

func (s *CoinService) All(ctx context.Context, exchange types.ExchangeName) ([]types.Coin, error) {
	var coins []types.Coin
	err := s.DB.SelectContext(ctx, &coins,
		"SELECT * FROM coins WHERE exchange = ? ORDER BY market_code ASC", exchange)
	return coins, err
}
