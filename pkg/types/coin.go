package types

// Coin is a market reference entry: one row per tradable market on an
// exchange, resolved from the exchange-native market code (e.g. "KRW-BTC").
type Coin struct {
	ID            int64        `json:"id" db:"id"`
	Symbol        string       `json:"symbol" db:"symbol"`
	QuoteCurrency string       `json:"quoteCurrency" db:"quote_currency"`
	MarketCode    string       `json:"marketCode" db:"market_code"`
	KoreanName    string       `json:"koreanName" db:"korean_name"`
	EnglishName   string       `json:"englishName" db:"english_name"`
	Exchange      ExchangeName `json:"exchange" db:"exchange"`
}
