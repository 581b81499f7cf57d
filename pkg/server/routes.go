package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/cointrail/cointrail/pkg/service"
	"github.com/cointrail/cointrail/pkg/types"
)

// Server exposes the credential, sync and ledger operations over HTTP.
type Server struct {
	Bind string

	Credentials *service.CredentialService
	Coins       *service.CoinService
	Ledger      *service.TradingHistoryService
	Sync        *service.SyncService

	// NewMarketService builds the public market listing client used by the
	// coin import endpoint.
	NewMarketService func(name types.ExchangeName) (types.ExchangeMarketService, error)
}

func (s *Server) Run(ctx context.Context) error {
	r := s.newEngine()

	bind := s.Bind
	if bind == "" {
		bind = ":8080"
	}

	srv := &http.Server{
		Addr:    bind,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("http server shutdown error")
		}
	}()

	logrus.Infof("listening on %s", bind)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) newEngine() *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowMethods:     []string{"GET", "POST", "DELETE"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/api/users/:user_id/exchanges/:exchange/credentials", s.saveCredential)
	r.GET("/api/users/:user_id/exchanges/:exchange/credentials", s.getCredential)
	r.DELETE("/api/users/:user_id/exchanges/:exchange/credentials", s.deleteCredential)
	r.GET("/api/users/:user_id/credentials", s.listCredentials)

	r.POST("/api/users/:user_id/exchanges/:exchange/sync", s.triggerSync)

	r.GET("/api/users/:user_id/trading-histories", s.listTradingHistories)
	r.GET("/api/users/:user_id/trading-histories/count", s.countTradingHistories)

	r.POST("/api/exchanges/:exchange/coins/import", s.importCoins)
	r.GET("/api/exchanges/:exchange/coins", s.listCoins)

	return r
}

func exchangeParam(c *gin.Context) (types.ExchangeName, bool) {
	name, err := types.ValidExchangeName(c.Param("exchange"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return name, true
}

// abortWithError maps domain errors onto HTTP statuses. Error text never
// includes credential material.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrCredentialsMissing):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrInvalidExchangeProvider), errors.Is(err, types.ErrUnknownMarket):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrAuthentication):
		status = http.StatusUnauthorized
	case errors.Is(err, types.ErrRateLimitExceeded), errors.Is(err, types.ErrRateLimit):
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) saveCredential(c *gin.Context) {
	exchangeName, ok := exchangeParam(c)
	if !ok {
		return
	}

	payload := struct {
		AccessKey string `json:"accessKey"`
		SecretKey string `json:"secretKey"`
	}{}

	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing arguments"})
		return
	}

	if payload.AccessKey == "" || payload.SecretKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accessKey and secretKey are required"})
		return
	}

	err := s.Credentials.Save(c.Request.Context(), types.Credential{
		UserID:    c.Param("user_id"),
		Exchange:  exchangeName,
		AccessKey: payload.AccessKey,
		SecretKey: payload.SecretKey,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) getCredential(c *gin.Context) {
	exchangeName, ok := exchangeParam(c)
	if !ok {
		return
	}

	credential, err := s.Credentials.Get(c.Request.Context(), c.Param("user_id"), exchangeName)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userID":    credential.UserID,
		"exchange":  credential.Exchange,
		"accessKey": credential.MaskedAccessKey(),
	})
}

func (s *Server) listCredentials(c *gin.Context) {
	summaries, err := s.Credentials.List(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"credentials": summaries})
}

func (s *Server) deleteCredential(c *gin.Context) {
	exchangeName, ok := exchangeParam(c)
	if !ok {
		return
	}

	if err := s.Credentials.Delete(c.Request.Context(), c.Param("user_id"), exchangeName); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) triggerSync(c *gin.Context) {
	exchangeName, ok := exchangeParam(c)
	if !ok {
		return
	}

	result, err := s.Sync.Sync(c.Request.Context(), c.Param("user_id"), exchangeName)
	if err != nil {
		abortWithError(c, err)
		return
	}

	total, err := s.Ledger.CountByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":     result.Orders,
		"inserted":   result.Inserted,
		"skipped":    result.Skipped,
		"unresolved": result.Unresolved,
		"failed":     result.Failed,
		"total":      total,
	})
}

func (s *Server) listTradingHistories(c *gin.Context) {
	options := service.QueryTradingHistoriesOptions{
		Ordering: c.Query("ordering"),
	}

	if exchange := c.Query("exchange"); exchange != "" {
		name, err := types.ValidExchangeName(exchange)
		if err != nil {
			abortWithError(c, err)
			return
		}
		options.Exchange = name
	}

	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC3339"})
			return
		}
		options.Since = &t
	}

	if until := c.Query("until"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "until must be RFC3339"})
			return
		}
		options.Until = &t
	}

	options.Limit = 500
	if limit := c.Query("limit"); limit != "" {
		v, err := strconv.ParseUint(limit, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		options.Limit = v
	}

	entries, err := s.Ledger.Query(c.Request.Context(), c.Param("user_id"), options)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tradingHistories": entries})
}

func (s *Server) countTradingHistories(c *gin.Context) {
	count, err := s.Ledger.CountByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (s *Server) importCoins(c *gin.Context) {
	exchangeName, ok := exchangeParam(c)
	if !ok {
		return
	}

	markets, err := s.NewMarketService(exchangeName)
	if err != nil {
		abortWithError(c, err)
		return
	}

	coins, err := markets.QueryMarkets(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := s.Coins.Import(c.Request.Context(), coins); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"imported": len(coins)})
}

func (s *Server) listCoins(c *gin.Context) {
	exchangeName, ok := exchangeParam(c)
	if !ok {
		return
	}

	coins, err := s.Coins.All(c.Request.Context(), exchangeName)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"coins": coins})
}
