package fixedpoint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFromString(t *testing.T) {
	v, err := NewFromString("0.00000003")
	assert.NoError(t, err)
	assert.Equal(t, Value(3), v)

	v, err = NewFromString("52000.123")
	assert.NoError(t, err)
	assert.Equal(t, "52000.123", v.String())

	_, err = NewFromString("not-a-number")
	assert.Error(t, err)
}

func TestUnmarshalJSON(t *testing.T) {
	var v Value

	// exchange responses carry decimal strings
	assert.NoError(t, json.Unmarshal([]byte(`"0.001"`), &v))
	assert.Equal(t, NewFromFloat(0.001), v)

	assert.NoError(t, json.Unmarshal([]byte(`52000.5`), &v))
	assert.Equal(t, NewFromFloat(52000.5), v)

	assert.NoError(t, json.Unmarshal([]byte(`""`), &v))
	assert.True(t, v.IsZero())

	assert.NoError(t, json.Unmarshal([]byte(`null`), &v))
	assert.True(t, v.IsZero())
}

func TestArithmetic(t *testing.T) {
	price := MustNewFromString("35000.5")
	qty := MustNewFromString("0.002")
	assert.Equal(t, "70.001", price.Mul(qty).String())

	assert.Equal(t, NewFromInt(3), NewFromInt(1).Add(NewFromInt(2)))
	assert.Equal(t, NewFromInt(-1), NewFromInt(1).Sub(NewFromInt(2)))
	assert.Equal(t, -1, NewFromInt(-1).Sign())
}

func TestScan(t *testing.T) {
	var v Value
	assert.NoError(t, v.Scan([]byte("0.125")))
	assert.Equal(t, NewFromFloat(0.125), v)

	assert.NoError(t, v.Scan(float64(2.5)))
	assert.Equal(t, NewFromFloat(2.5), v)

	assert.NoError(t, v.Scan(nil))
	assert.True(t, v.IsZero())

	assert.Error(t, v.Scan(struct{}{}))
}
