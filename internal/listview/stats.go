package listview

import "github.com/shopspring/decimal"

// Stats is recomputed from the full record set on every change.
type Stats struct {
	Total   int
	Counts  map[string]int
	Sum     decimal.Decimal
	Average decimal.Decimal
}

// Count returns the size of one status bucket.
func (s Stats) Count(status string) int {
	return s.Counts[status]
}

// Summarize walks records once. amount may be nil when a list has no money
// column; Average is zero for an empty set.
func Summarize[T Statused](records []T, amount func(T) decimal.Decimal) Stats {
	stats := Stats{Counts: make(map[string]int)}
	for _, rec := range records {
		stats.Total++
		stats.Counts[rec.StatusKey()]++
		if amount != nil {
			stats.Sum = stats.Sum.Add(amount(rec))
		}
	}
	if stats.Total > 0 {
		stats.Average = stats.Sum.Div(decimal.NewFromInt(int64(stats.Total)))
	}
	return stats
}
