package fixedpoint

import (
	"database/sql/driver"
	"encoding/json"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

const DefaultPrecision = 8

const DefaultPow = 1e8

// Value is a fixed-point decimal with 8 digits of precision, stored as an
// int64 scaled by DefaultPow. Exchange APIs report prices and volumes as
// decimal strings, so float64 round-trips are avoided everywhere except at
// the storage boundary.
type Value int64

var Zero = Value(0)

func (v Value) Float64() float64 {
	return float64(v) / DefaultPow
}

func (v Value) Int64() int64 {
	return int64(v)
}

func (v Value) Mul(v2 Value) Value {
	return NewFromFloat(v.Float64() * v2.Float64())
}

func (v Value) Div(v2 Value) Value {
	return NewFromFloat(v.Float64() / v2.Float64())
}

func (v Value) Sub(v2 Value) Value {
	return Value(int64(v) - int64(v2))
}

func (v Value) Add(v2 Value) Value {
	return Value(int64(v) + int64(v2))
}

func (v Value) IsZero() bool {
	return v == 0
}

func (v Value) Sign() int {
	if v > 0 {
		return 1
	} else if v < 0 {
		return -1
	}
	return 0
}

func (v Value) String() string {
	return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var a interface{}
	var err = json.Unmarshal(data, &a)
	if err != nil {
		return err
	}

	switch d := a.(type) {
	case float64:
		*v = NewFromFloat(d)

	case string:
		if d == "" {
			*v = 0
			return nil
		}

		nv, err2 := NewFromString(d)
		if err2 != nil {
			return err2
		}
		*v = nv

	case nil:
		*v = 0

	default:
		return errors.Errorf("unsupported fixed-point type: %T %v", d, d)
	}

	return nil
}

// Scan implements sql.Scanner so the value can be loaded from DECIMAL columns.
func (v *Value) Scan(src interface{}) error {
	switch d := src.(type) {
	case int64:
		*v = NewFromInt64(d)
		return nil

	case float64:
		*v = NewFromFloat(d)
		return nil

	case []byte:
		nv, err := NewFromString(string(d))
		if err != nil {
			return err
		}
		*v = nv
		return nil

	case string:
		nv, err := NewFromString(d)
		if err != nil {
			return err
		}
		*v = nv
		return nil

	case nil:
		*v = 0
		return nil
	}

	return errors.Errorf("fixedpoint scan error, type: %T %v", src, src)
}

// Value implements driver.Valuer, DECIMAL columns receive the plain decimal string.
func (v Value) Value() (driver.Value, error) {
	return v.String(), nil
}

func NewFromString(input string) (Value, error) {
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, err
	}

	return NewFromFloat(v), nil
}

func MustNewFromString(input string) Value {
	v, err := NewFromString(input)
	if err != nil {
		panic(errors.Wrapf(err, "can not parse %s into fixedpoint", input))
	}
	return v
}

func NewFromFloat(val float64) Value {
	return Value(int64(math.Round(val * DefaultPow)))
}

func NewFromInt(val int) Value {
	return Value(int64(val) * DefaultPow)
}

func NewFromInt64(val int64) Value {
	return Value(val * DefaultPow)
}
