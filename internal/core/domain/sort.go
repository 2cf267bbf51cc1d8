package domain

import (
	"cmp"
	"strings"

	"go.trai.ch/zerr"
)

// SortKey names the primary key of a record comparator.
type SortKey string

const (
	// SortByName orders by case-insensitive file name.
	SortByName SortKey = "name"
	// SortBySize orders by the size property.
	SortBySize SortKey = "size"
	// SortByTime orders by timestamp.
	SortByTime SortKey = "time"
)

// ParseSortKey validates s as a SortKey. The empty string selects SortByName.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(s)) {
	case "", SortByName:
		return SortByName, nil
	case SortBySize:
		return SortBySize, nil
	case SortByTime:
		return SortByTime, nil
	default:
		return "", zerr.With(ErrUnknownSortKey, "sort", s)
	}
}

// RecordComparator orders two records. The direction applies to the primary key and the
// tie-breaks; pseudo-entries and folders are grouped first in both directions.
type RecordComparator func(a, b Record, ascending bool) int

// Comparator returns the comparator for key.
func Comparator(key SortKey) RecordComparator {
	switch key {
	case SortBySize:
		return BySize
	case SortByTime:
		return ByTime
	default:
		return ByName
	}
}

// ByName orders records by name.
func ByName(a, b Record, ascending bool) int {
	return compareWith(a, b, ascending, func(Record, Record) int { return 0 })
}

// BySize orders records by size, then by name.
func BySize(a, b Record, ascending bool) int {
	return compareWith(a, b, ascending, func(x, y Record) int {
		return cmp.Compare(x.Size(), y.Size())
	})
}

// ByTime orders records by timestamp, then by name.
func ByTime(a, b Record, ascending bool) int {
	return compareWith(a, b, ascending, func(x, y Record) int {
		return x.Timestamp.Compare(y.Timestamp)
	})
}

func compareWith(a, b Record, ascending bool, primary func(Record, Record) int) int {
	if c := group(a, b); c != 0 {
		return c
	}

	c := primary(a, b)
	if c == 0 {
		c = strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
	}
	if c == 0 {
		// Total order: names equal ignoring case still differ by path.
		c = strings.Compare(a.Path.String(), b.Path.String())
	}
	if !ascending {
		return -c
	}
	return c
}

// group places pseudo-entries before folders before everything else.
func group(a, b Record) int {
	rank := func(r Record) int {
		switch {
		case r.Flags.Has(IsNavigatorPseudoEntry):
			return 0
		case r.IsFolder():
			return 1
		default:
			return 2
		}
	}
	return cmp.Compare(rank(a), rank(b))
}
