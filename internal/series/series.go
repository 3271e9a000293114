// Package series turns sparse per-day or per-month aggregates into dense,
// zero-filled series over a fixed reporting window.
package series

import (
	"errors"
	"time"
)

type Granularity int

const (
	Day Granularity = iota
	Month
)

func (g Granularity) String() string {
	if g == Month {
		return "month"
	}
	return "day"
}

// Layout is the Go time layout of a bucket key.
func (g Granularity) Layout() string {
	if g == Month {
		return "2006-01"
	}
	return "2006-01-02"
}

// SQLFormat is the PostgreSQL to_char pattern producing the same key as
// Layout. The store groups with this pattern and Fill matches with Layout,
// so the two must stay in step.
func (g Granularity) SQLFormat() string {
	if g == Month {
		return "YYYY-MM"
	}
	return "YYYY-MM-DD"
}

// Window is a reporting range, identified by its length in days.
type Window int

const (
	Last7Days   Window = 7
	Last30Days  Window = 30
	Last6Months Window = 180
)

var ErrInvalidWindow = errors.New("range must be 7, 30 or 180 days")

func ParseWindow(days int) (Window, error) {
	switch w := Window(days); w {
	case Last7Days, Last30Days, Last6Months:
		return w, nil
	}
	return 0, ErrInvalidWindow
}

func (w Window) Granularity() Granularity {
	if w == Last6Months {
		return Month
	}
	return Day
}

// Buckets is the exact number of entries a series over w has.
func (w Window) Buckets() int {
	if w == Last6Months {
		return 6
	}
	return int(w)
}

// Bounds returns the half-open interval [start, end) covered by w when the
// current instant is now. Both bounds are midnights in now's location.
func (w Window) Bounds(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	loc := now.Location()
	if w.Granularity() == Month {
		first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return first.AddDate(0, -(w.Buckets() - 1), 0), first.AddDate(0, 1, 0)
	}
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return today.AddDate(0, 0, -(w.Buckets() - 1)), today.AddDate(0, 0, 1)
}

// Keys enumerates every bucket key of w in ascending order.
func (w Window) Keys(now time.Time) []string {
	start, end := w.Bounds(now)
	g := w.Granularity()
	keys := make([]string, 0, w.Buckets())
	for i := 0; ; i++ {
		var t time.Time
		if g == Month {
			t = start.AddDate(0, i, 0)
		} else {
			t = start.AddDate(0, 0, i)
		}
		if !t.Before(end) {
			break
		}
		keys = append(keys, t.Format(g.Layout()))
	}
	return keys
}

// Normalize rewrites a store-provided key into the canonical form for g.
// It accepts the canonical layout itself and full RFC 3339 timestamps, which
// some drivers return for date columns.
func Normalize(g Granularity, raw string) (string, bool) {
	if t, err := time.Parse(g.Layout(), raw); err == nil {
		return t.Format(g.Layout()), true
	}
	if g == Month {
		if t, err := time.Parse(Day.Layout(), raw); err == nil {
			return t.Format(g.Layout()), true
		}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format(g.Layout()), true
	}
	return "", false
}

// Bucket is a row of metrics addressed by a bucket key.
type Bucket[T any] interface {
	BucketKey() string
	WithBucketKey(key string) T
}

// Fill returns one entry per key, in key order. Rows matching a key are
// emitted with the canonical key; keys without a row get the zero value of
// T. Rows whose key does not normalize, or falls outside keys, are dropped.
func Fill[T Bucket[T]](g Granularity, keys []string, rows []T) []T {
	byKey := make(map[string]T, len(rows))
	for _, row := range rows {
		k, ok := Normalize(g, row.BucketKey())
		if !ok {
			continue
		}
		if _, dup := byKey[k]; !dup {
			byKey[k] = row
		}
	}

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		row, ok := byKey[k]
		if !ok {
			var zero T
			row = zero
		}
		out = append(out, row.WithBucketKey(k))
	}
	return out
}
