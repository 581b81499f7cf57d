package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTime_UnmarshalJSON(t *testing.T) {
	var v struct {
		CreatedAt Time `json:"created_at"`
	}

	// the RFC3339 format the exchange uses
	err := json.Unmarshal([]byte(`{"created_at":"2018-04-10T15:42:23+09:00"}`), &v)
	assert.NoError(t, err)
	assert.Equal(t, int64(1523342543), v.CreatedAt.Unix())
}

func TestTime_Scan(t *testing.T) {
	var v Time

	now := time.Now()
	assert.NoError(t, v.Scan(now))
	assert.Equal(t, now.Unix(), v.Unix())

	assert.NoError(t, v.Scan([]byte("2020-12-16 05:17:12.994+08:00")))
	assert.False(t, v.IsZero())

	assert.NoError(t, v.Scan(nil))
	assert.True(t, v.IsZero())

	assert.Error(t, v.Scan(12345))
}

func TestValidExchangeName(t *testing.T) {
	name, err := ValidExchangeName("upbit")
	assert.NoError(t, err)
	assert.Equal(t, ExchangeUpbit, name)

	_, err = ValidExchangeName("mtgox")
	assert.ErrorIs(t, err, ErrInvalidExchangeProvider)
}
