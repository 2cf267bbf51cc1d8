package domain

import "unique"

// InternedString is a value object that wraps a unique.Handle[string].
// Paths are held as interned strings so that equal paths compare as equal handles
// and repeated enumeration of the same tree does not duplicate string storage.
type InternedString struct {
	h unique.Handle[string]
}

// NewInternedString creates a new InternedString from a string.
// The empty string yields the zero InternedString.
func NewInternedString(s string) InternedString {
	if s == "" {
		return InternedString{}
	}
	return InternedString{
		h: unique.Make(s),
	}
}

// NewInternedStrings converts a slice of strings to InternedStrings.
func NewInternedStrings(ss []string) []InternedString {
	out := make([]InternedString, len(ss))
	for i, s := range ss {
		out[i] = NewInternedString(s)
	}
	return out
}

// String returns the underlying string value.
func (is InternedString) String() string {
	if is.IsZero() {
		return ""
	}
	return is.h.Value()
}

// Value returns the underlying unique.Handle[string].
func (is InternedString) Value() unique.Handle[string] {
	return is.h
}

// IsZero reports whether the InternedString holds no value.
func (is InternedString) IsZero() bool {
	var zero unique.Handle[string]
	return is.h == zero
}

// MarshalText implements encoding.TextMarshaler.
// It returns the bytes of the underlying string value.
func (is InternedString) MarshalText() ([]byte, error) {
	return []byte(is.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// It creates a new handle from the provided text.
func (is *InternedString) UnmarshalText(text []byte) error {
	*is = NewInternedString(string(text))
	return nil
}
