package domain_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/roster/internal/core/domain"
)

func TestPropertyRegistry_DenseIDs(t *testing.T) {
	r := domain.NewPropertyRegistry()

	assert.Equal(t, domain.PropertyID(0), r.ID("size"))
	assert.Equal(t, domain.PropertyID(1), r.ID("mime"))
	assert.Equal(t, domain.PropertyID(0), r.ID("size"), "a name keeps its id")
	assert.Equal(t, 2, r.Len())

	name, ok := r.Name(1)
	require.True(t, ok)
	assert.Equal(t, "mime", name)

	_, ok = r.Name(5)
	assert.False(t, ok)
	_, ok = r.Name(-1)
	assert.False(t, ok)
}

func TestPropertyRegistry_Lookup(t *testing.T) {
	r := domain.NewPropertyRegistry()

	_, ok := r.Lookup("owner")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len(), "lookup must not register")

	id := r.ID("owner")
	got, ok := r.Lookup("owner")
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestPropertyRegistry_ConcurrentRegistration(t *testing.T) {
	r := domain.NewPropertyRegistry()

	const writers = 16
	const names = 50

	results := make([][]domain.PropertyID, writers)
	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]domain.PropertyID, names)
			for i := range names {
				ids[i] = r.ID(fmt.Sprintf("prop-%d", i))
			}
			results[w] = ids
		}()
	}
	wg.Wait()

	assert.Equal(t, names, r.Len())
	for w := 1; w < writers; w++ {
		assert.Equal(t, results[0], results[w], "every writer must observe the same ids")
	}

	seen := make(map[domain.PropertyID]bool)
	for _, id := range results[0] {
		assert.False(t, seen[id], "ids must be unique")
		seen[id] = true
		assert.Less(t, int(id), names, "ids must be dense")
	}
}

func TestStandardProperties(t *testing.T) {
	name, ok := domain.PropertyName(domain.PropSize)
	require.True(t, ok)
	assert.Equal(t, "size", name)
	assert.Equal(t, domain.PropCanonical, domain.Property("canonical"))
}

func TestProperties_Merge(t *testing.T) {
	base := domain.Properties{domain.PropSize: "10", domain.PropPermissions: "rw-r--r--"}
	overlay := domain.Properties{domain.PropSize: "20", domain.PropCanonical: "/real"}

	merged := base.Merge(overlay)

	assert.Equal(t, domain.Properties{
		domain.PropSize:        "20",
		domain.PropPermissions: "rw-r--r--",
		domain.PropCanonical:   "/real",
	}, merged)
	assert.Equal(t, "10", base[domain.PropSize], "merge must not modify its receiver")

	var empty domain.Properties
	assert.Equal(t, overlay, empty.Merge(overlay))
	assert.Nil(t, empty.Clone())
}
