package domain

import (
	"maps"
	"sync"
	"unique"
)

// PropertyID is a compact, process-local handle for a record property name.
type PropertyID int32

// PropertyRegistry is an append-only interning table mapping property names to dense ids.
// Ids start at 0 and a name keeps its id for the lifetime of the registry.
// It is safe for concurrent use, including concurrent first registration of the same name.
type PropertyRegistry struct {
	mu    sync.RWMutex
	ids   map[unique.Handle[string]]PropertyID
	names []InternedString
}

// NewPropertyRegistry creates an empty registry.
func NewPropertyRegistry() *PropertyRegistry {
	return &PropertyRegistry{
		ids: make(map[unique.Handle[string]]PropertyID),
	}
}

// ID returns the id for name, registering it on first use.
func (r *PropertyRegistry) ID(name string) PropertyID {
	h := unique.Make(name)

	r.mu.RLock()
	id, ok := r.ids[h]
	r.mu.RUnlock()
	if ok {
		return id
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another writer may have registered the name between the two locks.
	if id, ok := r.ids[h]; ok {
		return id
	}
	id = PropertyID(len(r.names))
	r.ids[h] = id
	r.names = append(r.names, NewInternedString(name))
	return id
}

// Lookup returns the id for name without registering it.
func (r *PropertyRegistry) Lookup(name string) (PropertyID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.ids[unique.Make(name)]
	return id, ok
}

// Name returns the name registered for id.
func (r *PropertyRegistry) Name(id PropertyID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || int(id) >= len(r.names) {
		return "", false
	}
	return r.names[id].String(), true
}

// Len returns the number of registered names.
func (r *PropertyRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

var properties = NewPropertyRegistry()

// Property returns the process-wide id for name, registering it on first use.
func Property(name string) PropertyID {
	return properties.ID(name)
}

// PropertyName returns the process-wide name for id.
func PropertyName(id PropertyID) (string, bool) {
	return properties.Name(id)
}

// Standard properties filled in by enumeration and validation.
var (
	PropSize        = Property("size")
	PropPermissions = Property("permissions")
	PropCanonical   = Property("canonical")
)

// Properties is an open-ended property bag keyed by PropertyID.
type Properties map[PropertyID]string

// Get returns the value stored for id.
func (p Properties) Get(id PropertyID) (string, bool) {
	v, ok := p[id]
	return v, ok
}

// Clone returns an independent copy of p.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// Merge returns a new bag holding p overlaid with other. Neither input is modified.
func (p Properties) Merge(other Properties) Properties {
	if len(p) == 0 {
		return other.Clone()
	}
	out := make(Properties, len(p)+len(other))
	maps.Copy(out, p)
	maps.Copy(out, other)
	return out
}
