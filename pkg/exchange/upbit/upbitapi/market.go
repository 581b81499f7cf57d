package upbitapi

import (
	"context"
	"net/url"
)

type MarketService struct {
	client *RestClient
}

type Market struct {
	Market      string `json:"market"`
	KoreanName  string `json:"korean_name"`
	EnglishName string `json:"english_name"`
}

// All calls GET /market/all, a public endpoint.
func (s *MarketService) All(ctx context.Context) ([]Market, error) {
	params := url.Values{}
	params.Set("isDetails", "false")

	response, err := s.client.sendPublicRequest(ctx, "GET", "market/all", params)
	if err != nil {
		return nil, err
	}

	var markets []Market
	if err := response.DecodeJSON(&markets); err != nil {
		return nil, err
	}

	return markets, nil
}
