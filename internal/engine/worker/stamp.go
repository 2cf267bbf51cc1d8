package worker

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Stamp identifies the configuration a run was launched with.
// An owner compares the stamp carried by a result with the stamp of its current request
// to detect results that no longer apply.
type Stamp uint64

// String returns the stamp as hex.
func (s Stamp) String() string {
	return strconv.FormatUint(uint64(s), 16)
}

// stampOf hashes parts into a Stamp. Parts are length-prefixed so that
// ("ab", "c") and ("a", "bc") differ.
func stampOf(parts ...string) Stamp {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(strconv.Itoa(len(p)))
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(p)
	}
	return Stamp(d.Sum64())
}
