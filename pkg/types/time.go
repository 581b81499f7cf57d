package types

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Time wraps time.Time with the JSON and sql codecs this project needs:
// the exchange sends RFC3339 strings, the database stores DATETIME.
type Time time.Time

var sqlTimeLayouts = []string{
	"2006-01-02 15:04:05.999Z07:00",
	"2006-01-02 15:04:05.999",
	time.RFC3339Nano,
}

func NewTime(t time.Time) Time {
	return Time(t)
}

func (t Time) Time() time.Time {
	return time.Time(t)
}

func (t Time) String() string {
	return time.Time(t).String()
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) After(t2 time.Time) bool {
	return time.Time(t).After(t2)
}

func (t Time) Before(t2 time.Time) bool {
	return time.Time(t).Before(t2)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Time) UnmarshalJSON(data []byte) error {
	return (*time.Time)(t).UnmarshalJSON(data)
}

// Value implements the driver.Valuer interface
// see http://jmoiron.net/blog/built-in-interfaces/
func (t Time) Value() (driver.Value, error) {
	if time.Time(t).IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

func (t *Time) Scan(src interface{}) error {
	switch d := src.(type) {

	case *time.Time:
		*t = Time(*d)
		return nil

	case time.Time:
		*t = Time(d)
		return nil

	case string:
		return t.parse(d)

	case []byte:
		return t.parse(string(d))

	case nil:
		*t = Time(time.Time{})
		return nil
	}

	return fmt.Errorf("types.Time scan error, type: %T is not supported, value: %+v", src, src)
}

func (t *Time) parse(s string) (err error) {
	var tt time.Time
	for _, layout := range sqlTimeLayouts {
		tt, err = time.Parse(layout, s)
		if err == nil {
			*t = Time(tt)
			return nil
		}
	}

	return err
}
