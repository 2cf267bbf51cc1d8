package cache

import (
	"unique"

	"go.trai.ch/roster/internal/core/domain"
)

// Records is an ordered cache of filesystem records keyed by path.
type Records = Ordered[domain.Record, unique.Handle[string]]

// NewRecords creates a record cache ordered by key. Updates merge record properties.
func NewRecords(key domain.SortKey, ascending bool) *Records {
	return New[domain.Record, unique.Handle[string]](Options[domain.Record]{
		Compare:   Comparator[domain.Record](domain.Comparator(key)),
		Ascending: ascending,
		Merge:     domain.MergeRecords,
	})
}
