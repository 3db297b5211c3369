package sensor

import (
	"strconv"
	"strings"

	apperrors "github.com/comfortlab/roomsense/pkg/errors"
)

// Value is a measurement that may be absent. The upstream API reports the
// string "unknown" when a channel has no current reading; absence must stay
// distinguishable from a numeric zero all the way to the dashboard.
type Value struct {
	val   float64
	known bool
}

// Unknown is the zero Value: no measurement available.
var Unknown = Value{}

// Known wraps a concrete measurement.
func Known(v float64) Value {
	return Value{val: v, known: true}
}

// Float64 returns the measurement and whether one is present.
func (v Value) Float64() (float64, bool) {
	return v.val, v.known
}

// IsKnown reports whether a measurement is present.
func (v Value) IsKnown() bool {
	return v.known
}

// MarshalJSON encodes unknown values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.known {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v.val, 'f', -1, 64), nil
}

// UnmarshalJSON decodes null as unknown and a number as a measurement.
func (v *Value) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*v = Unknown
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*v = Known(f)
	return nil
}

// ParseState converts a raw upstream state string into a Value. The
// "unknown" sentinel (and an empty state) map to Unknown; anything else
// must parse as a number or the state is rejected with code invalid_value.
func ParseState(state string) (Value, error) {
	trimmed := strings.TrimSpace(state)
	if trimmed == "" || strings.EqualFold(trimmed, "unknown") {
		return Unknown, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return Unknown, apperrors.Wrap("invalid_value", "state is neither numeric nor the unknown sentinel", err)
	}
	return Known(f), nil
}
