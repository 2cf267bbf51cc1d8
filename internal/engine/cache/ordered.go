// Package cache implements an ordered, de-duplicated record collection whose selection
// is tracked by identity rather than position.
package cache

import (
	"slices"

	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/zerr"
)

// Keyed is implemented by values that carry an identity key.
// The zero key denotes a missing identity and is rejected on insertion.
type Keyed[K comparable] interface {
	Key() K
}

// Comparator orders two items. The comparator decides how ascending applies.
type Comparator[T any] func(a, b T, ascending bool) int

// MergeFunc produces the value stored when incoming replaces an item with the same identity.
type MergeFunc[T any] func(existing, incoming T) T

// Observer is notified around every mutating batch.
type Observer interface {
	ItemsAboutToChange()
	ItemsChanged()
}

// ObserverFuncs adapts a pair of functions to Observer. Either may be nil.
type ObserverFuncs struct {
	AboutToChange func()
	Changed       func()
}

// ItemsAboutToChange implements Observer.
func (o ObserverFuncs) ItemsAboutToChange() {
	if o.AboutToChange != nil {
		o.AboutToChange()
	}
}

// ItemsChanged implements Observer.
func (o ObserverFuncs) ItemsChanged() {
	if o.Changed != nil {
		o.Changed()
	}
}

// Options configures an Ordered cache.
type Options[T any] struct {
	// Compare orders the items. A nil comparator keeps insertion order.
	Compare   Comparator[T]
	Ascending bool
	// Merge combines an existing item with an incoming one of the same identity.
	// A nil merge stores the incoming value unchanged.
	Merge MergeFunc[T]
}

// Ordered is an ordered collection of items, unique by key, with a selection set
// keyed by identity so that it survives reordering.
//
// Ordered is not safe for concurrent use: it belongs to a single owning goroutine.
// Background workers hand batches to the owner, which applies them with Update.
type Ordered[T Keyed[K], K comparable] struct {
	items     []T
	index     map[K]int
	selected  map[K]struct{}
	compare   Comparator[T]
	ascending bool
	merge     MergeFunc[T]
	observers []Observer
}

// New creates an empty cache.
func New[T Keyed[K], K comparable](opts Options[T]) *Ordered[T, K] {
	merge := opts.Merge
	if merge == nil {
		merge = func(_, incoming T) T { return incoming }
	}
	return &Ordered[T, K]{
		index:     make(map[K]int),
		selected:  make(map[K]struct{}),
		compare:   opts.Compare,
		ascending: opts.Ascending,
		merge:     merge,
	}
}

// Observe registers o for change notifications.
func (c *Ordered[T, K]) Observe(o Observer) {
	c.observers = append(c.observers, o)
}

// Len returns the number of items.
func (c *Ordered[T, K]) Len() int {
	return len(c.items)
}

// Items returns a copy of the items in order.
func (c *Ordered[T, K]) Items() []T {
	return slices.Clone(c.items)
}

// At returns the item at position i.
func (c *Ordered[T, K]) At(i int) (T, bool) {
	if i < 0 || i >= len(c.items) {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// Get returns the item with the given key.
func (c *Ordered[T, K]) Get(key K) (T, bool) {
	i, ok := c.index[key]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// IndexOf returns the position of the item sharing identity with item, or -1.
func (c *Ordered[T, K]) IndexOf(item T) int {
	if i, ok := c.index[item.Key()]; ok {
		return i
	}
	return -1
}

// Contains reports whether an item with the identity of item is present.
func (c *Ordered[T, K]) Contains(item T) bool {
	_, ok := c.index[item.Key()]
	return ok
}

// Add upserts items: an item whose identity is present replaces the stored attributes in
// place, any other item is appended. The cache is re-sorted afterwards.
func (c *Ordered[T, K]) Add(items ...T) error {
	if len(items) == 0 {
		return nil
	}
	if err := c.validate(items); err != nil {
		return err
	}

	c.aboutToChange()
	for _, item := range items {
		c.upsert(item, len(c.items))
	}
	c.sortItems()
	c.changed()
	return nil
}

// Insert places items at position pos without re-sorting, keeping the relative order of
// the batch. Items whose identity is already present are updated where they stand.
func (c *Ordered[T, K]) Insert(pos int, items ...T) error {
	if pos < 0 || pos > len(c.items) {
		return zerr.With(domain.ErrPositionOutOfRange, "position", pos)
	}
	if len(items) == 0 {
		return nil
	}
	if err := c.validate(items); err != nil {
		return err
	}

	c.aboutToChange()
	for _, item := range items {
		if c.upsert(item, pos) {
			pos++
		}
	}
	c.changed()
	return nil
}

// Remove deletes the items sharing identity with items and drops them from the
// selection. Unknown identities are ignored. It returns the number of items removed.
func (c *Ordered[T, K]) Remove(items ...T) int {
	doomed := make(map[K]struct{}, len(items))
	for _, item := range items {
		if _, ok := c.index[item.Key()]; ok {
			doomed[item.Key()] = struct{}{}
		}
	}
	if len(doomed) == 0 {
		return 0
	}

	c.aboutToChange()
	c.items = slices.DeleteFunc(c.items, func(item T) bool {
		_, ok := doomed[item.Key()]
		return ok
	})
	for key := range doomed {
		delete(c.selected, key)
	}
	c.reindex()
	c.changed()
	return len(doomed)
}

// Replace stores item at position pos. The selection status of the position carries over
// to the new item. If item's identity is stored elsewhere, that other entry is dropped.
func (c *Ordered[T, K]) Replace(pos int, item T) error {
	if pos < 0 || pos >= len(c.items) {
		return zerr.With(domain.ErrPositionOutOfRange, "position", pos)
	}
	if err := c.validate([]T{item}); err != nil {
		return err
	}

	c.aboutToChange()
	oldKey := c.items[pos].Key()
	_, wasSelected := c.selected[oldKey]
	delete(c.selected, oldKey)

	newKey := item.Key()
	if j, ok := c.index[newKey]; ok && j != pos {
		item = c.merge(c.items[j], item)
		c.items = slices.Delete(c.items, j, j+1)
		if j < pos {
			pos--
		}
	}
	c.items[pos] = item
	delete(c.selected, newKey)
	if wasSelected {
		c.selected[newKey] = struct{}{}
	}
	c.reindex()
	c.changed()
	return nil
}

// Set replaces the whole content with items and re-sorts. The selection is cleared.
func (c *Ordered[T, K]) Set(items []T) error {
	if err := c.validate(items); err != nil {
		return err
	}

	c.aboutToChange()
	c.items = make([]T, 0, len(items))
	c.index = make(map[K]int, len(items))
	c.selected = make(map[K]struct{})
	for _, item := range items {
		c.upsert(item, len(c.items))
	}
	c.sortItems()
	c.changed()
	return nil
}

// Update reconciles the cache with items. Present identities found in items take the
// incoming attributes and keep their selection; present identities missing from items
// are removed and deselected; new identities are appended unselected. The result is
// re-sorted.
func (c *Ordered[T, K]) Update(items []T) error {
	if err := c.validate(items); err != nil {
		return err
	}

	incoming := make(map[K]T, len(items))
	order := make([]K, 0, len(items))
	for _, item := range items {
		key := item.Key()
		if prev, ok := incoming[key]; ok {
			incoming[key] = c.merge(prev, item)
			continue
		}
		incoming[key] = item
		order = append(order, key)
	}

	c.aboutToChange()
	kept := c.items[:0]
	for _, existing := range c.items {
		key := existing.Key()
		next, ok := incoming[key]
		if !ok {
			delete(c.selected, key)
			continue
		}
		kept = append(kept, c.merge(existing, next))
		delete(incoming, key)
	}
	clear(c.items[len(kept):])
	c.items = kept
	for _, key := range order {
		if item, ok := incoming[key]; ok {
			c.items = append(c.items, item)
		}
	}
	c.reindex()
	c.sortItems()
	c.changed()
	return nil
}

// Clear removes every item and clears the selection.
func (c *Ordered[T, K]) Clear() {
	c.aboutToChange()
	c.items = nil
	c.index = make(map[K]int)
	c.selected = make(map[K]struct{})
	c.changed()
}

// Sort installs compare as the comparator and re-sorts.
func (c *Ordered[T, K]) Sort(compare Comparator[T], ascending bool) {
	c.aboutToChange()
	c.compare = compare
	c.ascending = ascending
	c.sortItems()
	c.changed()
}

// SetSelected marks or unmarks the item sharing identity with item.
// Items that are not present cannot be selected.
func (c *Ordered[T, K]) SetSelected(item T, selected bool) {
	key := item.Key()
	if !selected {
		delete(c.selected, key)
		return
	}
	if _, ok := c.index[key]; ok {
		c.selected[key] = struct{}{}
	}
}

// IsSelected reports whether the identity of item is selected.
func (c *Ordered[T, K]) IsSelected(item T) bool {
	_, ok := c.selected[item.Key()]
	return ok
}

// SelectedItems returns the selected items in cache order.
func (c *Ordered[T, K]) SelectedItems() []T {
	out := make([]T, 0, len(c.selected))
	for _, item := range c.items {
		if _, ok := c.selected[item.Key()]; ok {
			out = append(out, item)
		}
	}
	return out
}

// upsert merges item into its existing slot or inserts it at pos.
// It reports whether a new slot was created.
func (c *Ordered[T, K]) upsert(item T, pos int) bool {
	key := item.Key()
	if i, ok := c.index[key]; ok {
		c.items[i] = c.merge(c.items[i], item)
		return false
	}
	c.items = slices.Insert(c.items, pos, item)
	if pos == len(c.items)-1 {
		c.index[key] = pos
	} else {
		c.reindex()
	}
	return true
}

func (c *Ordered[T, K]) sortItems() {
	if c.compare == nil {
		return
	}
	compare, ascending := c.compare, c.ascending
	slices.SortStableFunc(c.items, func(a, b T) int {
		return compare(a, b, ascending)
	})
	c.reindex()
}

func (c *Ordered[T, K]) reindex() {
	clear(c.index)
	for i, item := range c.items {
		c.index[item.Key()] = i
	}
}

func (c *Ordered[T, K]) aboutToChange() {
	for _, o := range c.observers {
		o.ItemsAboutToChange()
	}
}

func (c *Ordered[T, K]) changed() {
	for _, o := range c.observers {
		o.ItemsChanged()
	}
}

func (c *Ordered[T, K]) validate(items []T) error {
	var zero K
	for i, item := range items {
		if item.Key() == zero {
			return zerr.With(domain.ErrEmptyPath, "index", i)
		}
	}
	return nil
}
