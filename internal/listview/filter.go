// Package listview holds the list page primitives: status filtering, one-pass
// aggregate stats, the fetch lifecycle and a per-session collection cache.
package listview

import (
	"cmp"
	"slices"
	"strings"
)

// StatusAll is the identity filter.
const StatusAll = "all"

// Statused is implemented by records that belong to a status bucket.
type Statused interface {
	StatusKey() string
}

// Filter returns records unchanged for "all" (or an empty selector), else the
// records whose status equals status.
func Filter[T Statused](records []T, status string) []T {
	if status == "" || status == StatusAll {
		return records
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if rec.StatusKey() == status {
			out = append(out, rec)
		}
	}
	return out
}

// NormalizeStatus maps an unknown selector to "all".
func NormalizeStatus(status string, allowed []string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if slices.Contains(allowed, status) {
		return status
	}
	return StatusAll
}

// Search keeps records where any of the texts returned by fields contains q,
// case-insensitively. A blank query keeps everything.
func Search[T any](records []T, q string, fields func(T) []string) []T {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return records
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		for _, text := range fields(rec) {
			if strings.Contains(strings.ToLower(text), q) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// SortBy returns a sorted copy keyed by key. The source slice is not touched.
func SortBy[T any, K cmp.Ordered](records []T, key func(T) K, desc bool) []T {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b T) int {
		c := cmp.Compare(key(a), key(b))
		if desc {
			return -c
		}
		return c
	})
	return out
}
