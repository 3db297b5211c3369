package sensor

import "time"

// Reading is a single timestamped measurement.
type Reading struct {
	Value     Value     `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Series is a sequence of readings ordered by timestamp ascending.
// Duplicate timestamps are permitted and never deduplicated.
type Series []Reading

// TrimFuture drops readings stamped after now. Source data may carry
// future entries (clock skew on the recording side); they are not valid
// history and must never reach forecasting or display.
func (s Series) TrimFuture(now time.Time) Series {
	out := make(Series, 0, len(s))
	for _, r := range s {
		if !r.Timestamp.After(now) {
			out = append(out, r)
		}
	}
	return out
}

// Known returns only the readings that carry a measurement.
func (s Series) Known() Series {
	out := make(Series, 0, len(s))
	for _, r := range s {
		if r.Value.IsKnown() {
			out = append(out, r)
		}
	}
	return out
}

// Last returns the newest reading, if any.
func (s Series) Last() (Reading, bool) {
	if len(s) == 0 {
		return Reading{}, false
	}
	return s[len(s)-1], true
}

func (s Series) clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}
