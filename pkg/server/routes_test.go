package server

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/cointrail/cointrail/pkg/service"
	"github.com/cointrail/cointrail/pkg/types"
)

type stubCredentialStore struct {
	err error
}

func (s *stubCredentialStore) Get(ctx context.Context, userID string, exchange types.ExchangeName) (types.Credential, error) {
	return types.Credential{}, s.err
}

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlite3")

	key := hex.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	credentials, err := service.NewCredentialService(db, key)
	if err != nil {
		t.Fatal(err)
	}

	return &Server{
		Credentials: credentials,
		Coins:       service.NewCoinService(db),
		Ledger:      service.NewTradingHistoryService(db),
		Sync: &service.SyncService{
			Credentials: &stubCredentialStore{err: errors.Wrap(types.ErrCredentialsMissing, "no credential")},
		},
	}, mock
}

func performRequest(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestServer_Ping(t *testing.T) {
	s, _ := newTestServer(t)
	w := performRequest(s.newEngine(), "GET", "/api/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_UnknownExchange(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.newEngine()

	w := performRequest(r, "POST", "/api/users/user-1/exchanges/binance/sync", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, "GET", "/api/users/user-1/exchanges/nope/credentials", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_SaveCredentialValidation(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.newEngine()

	w := performRequest(r, "POST", "/api/users/user-1/exchanges/upbit/credentials", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, "POST", "/api/users/user-1/exchanges/upbit/credentials", []byte(`{"accessKey":"ak"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_SaveCredential(t *testing.T) {
	s, mock := newTestServer(t)
	r := s.newEngine()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exchange_credentials")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	body := []byte(`{"accessKey":"ak-plain","secretKey":"sk-plain"}`)
	w := performRequest(r, "POST", "/api/users/user-1/exchanges/upbit/credentials", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())

	// plaintext keys must never be echoed back
	assert.NotContains(t, w.Body.String(), "ak-plain")
	assert.NotContains(t, w.Body.String(), "sk-plain")
}

func TestServer_SyncWithoutCredential(t *testing.T) {
	s, _ := newTestServer(t)
	w := performRequest(s.newEngine(), "POST", "/api/users/user-1/exchanges/upbit/sync", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_DeleteMissingCredential(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exchange_credentials")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := performRequest(s.newEngine(), "DELETE", "/api/users/user-1/exchanges/upbit/credentials", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServer_CountTradingHistories(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM trading_histories")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	w := performRequest(s.newEngine(), "GET", "/api/users/user-1/trading-histories/count", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Count int64 `json:"count"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, int64(7), payload.Count)
}

func TestServer_ListTradingHistoriesBadQuery(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.newEngine()

	w := performRequest(r, "GET", "/api/users/user-1/trading-histories?since=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, "GET", "/api/users/user-1/trading-histories?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, "GET", "/api/users/user-1/trading-histories?exchange=kraken", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
