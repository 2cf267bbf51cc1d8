// Package recent implements bounded, named record lists such as "recently opened",
// with validity-aware eviction and asynchronous re-validation.
package recent

import (
	"context"
	"time"
	"unique"

	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/core/ports"
	"go.trai.ch/roster/internal/engine/cache"
	"go.trai.ch/roster/internal/engine/worker"
	"go.trai.ch/zerr"
)

// Checker validates a batch of records in the background.
// *worker.Validator implements it.
type Checker interface {
	AwaitIdle()
	Configure(records []domain.Record, detectDuplicates bool) error
	Start(ctx context.Context) (worker.Stamp, error)
}

// Options configures a List.
type Options struct {
	Name string
	// MaxSize bounds the records view. Zero means unbounded.
	MaxSize          int
	CheckValidity    bool
	DetectDuplicates bool
}

// List is a named collection of path records bounded on read.
//
// List belongs to a single owning goroutine. Validation runs on a Checker and its result
// is handed back through ApplyValidity on the owner.
type List struct {
	opts    Options
	items   *cache.Records
	checker Checker
	now     func() time.Time

	onChanged []func()
	onInvalid []func()
}

// New creates an empty list. checker may be nil when validation is never requested.
func New(opts Options, checker Checker) (*List, error) {
	if opts.MaxSize < 0 {
		return nil, zerr.With(domain.ErrInvalidMaxSize, "max_size", opts.MaxSize)
	}
	if opts.Name == "" {
		opts.Name = domain.DefaultListName
	}

	l := &List{
		opts:    opts,
		checker: checker,
		now:     time.Now,
	}
	l.items = cache.New[domain.Record, unique.Handle[string]](cache.Options[domain.Record]{
		Merge: mergeNewer,
	})
	l.items.Observe(cache.ObserverFuncs{Changed: l.contentsChanged})
	return l, nil
}

// mergeNewer takes the incoming attributes but never moves the timestamp backwards.
func mergeNewer(existing, incoming domain.Record) domain.Record {
	merged := domain.MergeRecords(existing, incoming)
	if !incoming.Timestamp.After(existing.Timestamp) {
		merged.Timestamp = existing.Timestamp
	}
	return merged
}

// Name returns the persistence key of the list.
func (l *List) Name() string {
	return l.opts.Name
}

// Options returns the list configuration.
func (l *List) Options() Options {
	return l.opts
}

// SetClock replaces the time source used for new entries.
func (l *List) SetClock(now func() time.Time) {
	l.now = now
}

// OnContentsChanged registers fn to run after every structural change.
func (l *List) OnContentsChanged(fn func()) {
	l.onChanged = append(l.onChanged, fn)
}

// OnInvalidRecords registers fn to run when a validation pass leaves invalid records.
func (l *List) OnInvalidRecords(fn func()) {
	l.onInvalid = append(l.onInvalid, fn)
}

// Add records a use of path at the current time.
func (l *List) Add(path string) error {
	return l.AddAt(path, l.now())
}

// AddAt records a use of path at the given time. An existing entry only moves forward
// in time.
func (l *List) AddAt(path string, at time.Time) error {
	if path == "" {
		return domain.ErrEmptyPath
	}
	r, ok := l.Lookup(path)
	if !ok {
		r = domain.NewRecord(path)
	}
	r.Timestamp = at
	return l.items.Add(r)
}

// AddRecords upserts whole records, as read back from a store.
func (l *List) AddRecords(records []domain.Record) error {
	return l.items.Add(records...)
}

// Get returns the entry for path, creating it with the current time when absent.
func (l *List) Get(path string) (domain.Record, error) {
	if r, ok := l.Lookup(path); ok {
		return r, nil
	}
	if err := l.Add(path); err != nil {
		return domain.Record{}, err
	}
	r, _ := l.Lookup(path)
	return r, nil
}

// Lookup returns the entry for path without creating it.
func (l *List) Lookup(path string) (domain.Record, bool) {
	if path == "" {
		return domain.Record{}, false
	}
	return l.items.Get(unique.Make(path))
}

// Remove deletes the entry for path. It reports whether an entry was removed.
func (l *List) Remove(path string) bool {
	if path == "" {
		return false
	}
	return l.items.Remove(domain.NewRecord(path)) > 0
}

// Len returns the number of stored entries, which may exceed the bound.
func (l *List) Len() int {
	return l.items.Len()
}

// Records returns the bounded view of the list. The stored entries are left untouched.
func (l *List) Records() []domain.Record {
	return Truncate(l.items.Items(), l.opts.MaxSize, l.opts.CheckValidity)
}

// All returns every stored entry, ignoring the bound.
func (l *List) All() []domain.Record {
	return l.items.Items()
}

// Clean removes the invalid entries. Without validity checking nothing distinguishes
// stale entries, so the whole list is cleared.
func (l *List) Clean() {
	if !l.opts.CheckValidity {
		l.items.Clear()
		return
	}
	var doomed []domain.Record
	for _, r := range l.items.Items() {
		if !r.Valid {
			doomed = append(doomed, r)
		}
	}
	l.items.Remove(doomed...)
}

// Clear removes every entry.
func (l *List) Clear() {
	l.items.Clear()
}

// CheckValidity waits for any previous pass and dispatches the current entries to the
// checker. The result must be handed back with ApplyValidity.
func (l *List) CheckValidity(ctx context.Context) (worker.Stamp, error) {
	if l.checker == nil {
		return 0, domain.ErrNotConfigured
	}
	l.checker.AwaitIdle()
	if err := l.checker.Configure(l.items.Items(), l.opts.DetectDuplicates); err != nil {
		return 0, err
	}
	return l.checker.Start(ctx)
}

// ApplyValidity merges a validation result. Entries removed since the pass was dispatched
// are not brought back. It reports whether any entry is invalid afterwards.
func (l *List) ApplyValidity(res worker.ValidityResult) bool {
	if res.Canceled {
		return false
	}

	updates := l.items.Items()
	byKey := make(map[unique.Handle[string]]domain.Record, len(res.Records))
	for _, r := range res.Records {
		byKey[r.Key()] = r
	}
	for i, existing := range updates {
		r, ok := byKey[existing.Key()]
		if !ok {
			continue
		}
		next := existing.Clone()
		next.Valid = r.Valid
		if v, ok := r.Property(domain.PropCanonical); ok {
			next = next.WithProperty(domain.PropCanonical, v)
		}
		updates[i] = next
	}
	if err := l.items.Update(updates); err != nil {
		return false
	}

	hasInvalid := false
	for _, r := range l.items.Items() {
		if !r.Valid {
			hasInvalid = true
			break
		}
	}
	if hasInvalid {
		for _, fn := range l.onInvalid {
			fn()
		}
	}
	return hasInvalid
}

// Load replaces the entries with those stored under the list name.
func (l *List) Load(store ports.RecordStore) error {
	records, err := store.Load(l.opts.Name)
	if err != nil {
		return err
	}
	return l.items.Set(records)
}

// Save writes the bounded view under the list name.
func (l *List) Save(store ports.RecordStore) error {
	return store.Save(l.opts.Name, l.Records())
}

func (l *List) contentsChanged() {
	for _, fn := range l.onChanged {
		fn()
	}
}
