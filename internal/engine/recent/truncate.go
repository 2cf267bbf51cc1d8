package recent

import (
	"cmp"
	"slices"

	"go.trai.ch/roster/internal/core/domain"
)

// Truncate returns records bounded to maxSize entries, keeping input order.
// The oldest invalid entries are evicted first when checkValidity is set; the oldest
// remaining entries go next. A maxSize of zero means unbounded.
// Truncate never modifies records and Truncate(Truncate(l)) equals Truncate(l).
func Truncate(records []domain.Record, maxSize int, checkValidity bool) []domain.Record {
	if maxSize <= 0 || len(records) <= maxSize {
		return slices.Clone(records)
	}

	byAge := make([]int, len(records))
	for i := range byAge {
		byAge[i] = i
	}
	slices.SortStableFunc(byAge, func(a, b int) int {
		return cmp.Or(
			records[a].Timestamp.Compare(records[b].Timestamp),
			cmp.Compare(records[a].Path.String(), records[b].Path.String()),
		)
	})

	excess := len(records) - maxSize
	drop := make([]bool, len(records))
	if checkValidity {
		for _, i := range byAge {
			if excess == 0 {
				break
			}
			if !records[i].Valid {
				drop[i] = true
				excess--
			}
		}
	}
	for _, i := range byAge {
		if excess == 0 {
			break
		}
		if !drop[i] {
			drop[i] = true
			excess--
		}
	}

	out := make([]domain.Record, 0, maxSize)
	for i, r := range records {
		if !drop[i] {
			out = append(out, r)
		}
	}
	return out
}
