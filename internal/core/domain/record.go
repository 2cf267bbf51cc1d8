package domain

import (
	"path/filepath"
	"strconv"
	"time"
	"unique"
)

// Flags is a bitset describing the kind of filesystem entry a Record stands for.
type Flags uint8

const (
	// IsFolder marks a directory.
	IsFolder Flags = 1 << iota
	// IsLink marks a symbolic link.
	IsLink
	// IsHidden marks an entry whose name starts with a dot.
	IsHidden
	// IsNavigatorPseudoEntry marks a synthetic entry such as the parent directory "..".
	IsNavigatorPseudoEntry
)

// Has reports whether all bits of flag are set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Record represents one filesystem path plus its metadata.
// Identity is the path; every other field is a mutable attribute of that identity.
type Record struct {
	Path       InternedString
	Timestamp  time.Time
	Valid      bool
	Flags      Flags
	Properties Properties
}

// NewRecord creates a valid record for path.
func NewRecord(path string) Record {
	return Record{
		Path:  NewInternedString(path),
		Valid: true,
	}
}

// Key returns the identity key of the record. An empty path yields the zero handle.
func (r Record) Key() unique.Handle[string] {
	return r.Path.Value()
}

// Name returns the last element of the path.
func (r Record) Name() string {
	if r.Flags.Has(IsNavigatorPseudoEntry) {
		return ParentEntryName
	}
	return filepath.Base(r.Path.String())
}

// IsFolder reports whether the record stands for a directory.
func (r Record) IsFolder() bool {
	return r.Flags.Has(IsFolder)
}

// Equal reports whether r and other share identity.
func (r Record) Equal(other Record) bool {
	return r.Path == other.Path
}

// Property returns the value stored for id.
func (r Record) Property(id PropertyID) (string, bool) {
	return r.Properties.Get(id)
}

// WithProperty returns a copy of r with id set to value.
func (r Record) WithProperty(id PropertyID, value string) Record {
	r.Properties = r.Properties.Merge(Properties{id: value})
	return r
}

// Size returns the size property in bytes, or 0 when unknown.
func (r Record) Size() int64 {
	v, ok := r.Properties.Get(PropSize)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Clone returns a deep copy of r that shares no mutable state with it.
func (r Record) Clone() Record {
	r.Properties = r.Properties.Clone()
	return r
}

// MergeRecords overwrites the attributes of existing with those of incoming.
// Properties are merged rather than replaced.
func MergeRecords(existing, incoming Record) Record {
	merged := incoming
	merged.Path = existing.Path
	merged.Properties = existing.Properties.Merge(incoming.Properties)
	return merged
}

// CloneRecords deep-copies a batch of records.
func CloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
