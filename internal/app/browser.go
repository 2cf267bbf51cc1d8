package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.trai.ch/roster/internal/adapters/watcher" //nolint:depguard // Debouncing is shared with the adapter
	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/core/ports"
	"go.trai.ch/roster/internal/engine/cache"
	"go.trai.ch/roster/internal/engine/worker"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// BrowseOptions selects the directory a Browser shows and how.
type BrowseOptions struct {
	Path        string
	Recursive   bool
	FollowLinks bool
	ShowHidden  bool
	Sort        domain.SortKey
	Descending  bool
	// Navigator prepends a ".." entry when the directory has a parent.
	Navigator bool
}

// Browser owns the listing of one directory. It keeps an ordered record cache in sync
// with an Enumerator, so the selection survives every refresh.
//
// Browser is not safe for concurrent use. Worker events are queued in a mailbox and
// applied by Process on the owning goroutine.
type Browser struct {
	logger ports.Logger
	items  *cache.Records
	enum   *worker.Enumerator
	box    *worker.Mailbox[worker.EnumerationEvent]
	opts   BrowseOptions

	pending  worker.Stamp
	inflight bool
	dirty    bool
	shown    string
	skipped  int
	failure  error
}

// NewBrowser creates a browser for opts.Path. Nothing is listed until Refresh.
func NewBrowser(fs ports.FileSystem, log ports.Logger, opts BrowseOptions) (*Browser, error) {
	if opts.Path == "" {
		return nil, domain.ErrEmptyPath
	}
	if opts.Sort == "" {
		opts.Sort = domain.SortByName
	}
	b := &Browser{
		logger: log,
		items:  cache.NewRecords(opts.Sort, !opts.Descending),
		box:    worker.NewMailbox[worker.EnumerationEvent](),
		opts:   opts,
	}
	b.enum = worker.NewEnumerator(fs, b.box.Post)
	return b, nil
}

// Items returns the record cache. Selection is managed on it directly.
func (b *Browser) Items() *cache.Records {
	return b.items
}

// Path returns the browsed directory.
func (b *Browser) Path() string {
	return b.opts.Path
}

// Options returns the current browse options.
func (b *Browser) Options() BrowseOptions {
	return b.opts
}

// Loading reports whether a listing request is in flight.
func (b *Browser) Loading() bool {
	return b.inflight
}

// Skipped returns the number of unreadable entries left out of the last listing.
func (b *Browser) Skipped() int {
	return b.skipped
}

// Err returns the failure of the last listing, if any.
func (b *Browser) Err() error {
	return b.failure
}

// Ready signals that worker events are waiting for Process.
func (b *Browser) Ready() <-chan struct{} {
	return b.box.Ready()
}

// SetPath switches to another directory. While a listing is in flight the switch is
// picked up when its stale result arrives.
func (b *Browser) SetPath(ctx context.Context, path string) error {
	if path == "" {
		return domain.ErrEmptyPath
	}
	b.opts.Path = path
	return b.request(ctx)
}

// SetOptions replaces the browse options and requests a fresh listing.
func (b *Browser) SetOptions(ctx context.Context, opts BrowseOptions) error {
	if opts.Path == "" {
		return domain.ErrEmptyPath
	}
	if opts.Sort == "" {
		opts.Sort = domain.SortByName
	}
	if opts.Sort != b.opts.Sort || opts.Descending != b.opts.Descending {
		b.items.Sort(cache.Comparator[domain.Record](domain.Comparator(opts.Sort)), !opts.Descending)
	}
	b.opts = opts
	return b.request(ctx)
}

// Invalidate marks the listing out of date, for example after a change was observed on
// disk, and requests a fresh one.
func (b *Browser) Invalidate(ctx context.Context) error {
	b.dirty = true
	return b.request(ctx)
}

// Refresh waits for any in-flight listing and starts a new one for the current options.
func (b *Browser) Refresh(ctx context.Context) error {
	b.enum.AwaitIdle()

	cfg := b.config()
	if cfg.Path != b.shown {
		b.items.Clear()
		b.shown = cfg.Path
	}
	if err := b.enum.Configure(cfg); err != nil {
		return err
	}
	stamp, err := b.enum.Start(ctx)
	if err != nil {
		return err
	}
	b.pending = stamp
	b.inflight = true
	b.dirty = false
	b.logger.Debug(fmt.Sprintf("listing %s", cfg.Path))
	return nil
}

// request starts a listing now, or leaves it to the completion of the running one.
func (b *Browser) request(ctx context.Context) error {
	if b.inflight {
		return nil
	}
	return b.Refresh(ctx)
}

// Process applies every queued worker event. It reports whether a listing completed
// and was applied to the cache.
func (b *Browser) Process(ctx context.Context) (bool, error) {
	applied := false
	for _, ev := range b.box.Drain() {
		if ev.Stamp != b.pending {
			continue
		}
		switch ev.Kind {
		case worker.EventFilesAvailable:
			if b.stale(ev) || !ev.Config.Flags.Has(worker.Recursive) {
				continue
			}
			if err := b.items.Add(ev.Files...); err != nil {
				return applied, err
			}
		case worker.EventFinished:
			b.inflight = false
			if b.stale(ev) || b.dirty {
				b.logger.Debug(fmt.Sprintf("discarding stale listing of %s", ev.Config.Path))
				if err := b.Refresh(ctx); err != nil {
					return applied, err
				}
				continue
			}
			if ev.Canceled {
				continue
			}
			if err := b.apply(ev); err != nil {
				return applied, err
			}
			applied = true
		case worker.EventSizeAvailable:
		}
	}
	return applied, nil
}

// Wait processes events until the in-flight listing has been applied or ctx ends.
func (b *Browser) Wait(ctx context.Context) error {
	for b.inflight {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.box.Ready():
			if _, err := b.Process(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Changes starts w on the browsed directory. The returned channel receives a value after
// each burst of changes once window has passed without another one. stop releases w.
func (b *Browser) Changes(ctx context.Context, w ports.Watcher, window time.Duration) (<-chan struct{}, func() error, error) {
	if err := w.Start(ctx, b.opts.Path); err != nil {
		return nil, nil, err
	}

	changed := make(chan struct{}, 1)
	deb := watcher.NewDebouncer(window, func(paths []string) {
		b.logger.Debug(fmt.Sprintf("%d paths changed", len(paths)))
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	watchCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(watchCtx)
	g.Go(func() error {
		for ev := range w.Events() {
			deb.Add(ev.Path)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		deb.Stop()
		return w.Stop()
	})

	stop := func() error {
		cancel()
		if err := g.Wait(); err != nil {
			return zerr.Wrap(err, "failed to stop watcher")
		}
		return nil
	}
	return changed, stop, nil
}

// Watch keeps the listing current while ctx lives. Changes reported by w are debounced
// for window, then trigger a refresh. onChange runs on the owning goroutine after every
// applied listing.
func (b *Browser) Watch(ctx context.Context, w ports.Watcher, window time.Duration, onChange func(*Browser)) error {
	changed, stop, err := b.Changes(ctx, w, window)
	if err != nil {
		return err
	}
	err = b.watchLoop(ctx, changed, onChange)
	if serr := stop(); serr != nil && err == nil {
		err = serr
	}
	return err
}

// Close waits for the in-flight listing, if any.
func (b *Browser) Close() {
	b.enum.AwaitIdle()
}

func (b *Browser) watchLoop(ctx context.Context, changed <-chan struct{}, onChange func(*Browser)) error {
	if err := b.request(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			b.enum.AwaitIdle()
			return nil
		case <-changed:
			if err := b.Invalidate(ctx); err != nil {
				return err
			}
		case <-b.box.Ready():
			applied, err := b.Process(ctx)
			if err != nil {
				return err
			}
			if applied && onChange != nil {
				onChange(b)
			}
		}
	}
}

func (b *Browser) stale(ev worker.EnumerationEvent) bool {
	return ev.Stamp != b.config().Stamp()
}

func (b *Browser) apply(ev worker.EnumerationEvent) error {
	b.skipped = ev.Skipped
	b.failure = nil
	if ev.Failed {
		b.failure = ev.Err
	}
	if ev.Skipped > 0 {
		b.logger.Warn(fmt.Sprintf("skipped %d unreadable entries in %s", ev.Skipped, ev.Config.Path))
	}

	records := ev.Files
	if nav, ok := b.navigator(ev.Config.Path); ok {
		records = append([]domain.Record{nav}, records...)
	}
	return b.items.Update(records)
}

// navigator returns the ".." pseudo-entry for dir.
func (b *Browser) navigator(dir string) (domain.Record, bool) {
	if !b.opts.Navigator {
		return domain.Record{}, false
	}
	clean := filepath.Clean(dir)
	if filepath.Dir(clean) == clean {
		return domain.Record{}, false
	}
	// Join would clean ".." away and collide with the parent's own identity.
	rec := domain.NewRecord(clean + string(filepath.Separator) + domain.ParentEntryName)
	rec.Flags = domain.IsNavigatorPseudoEntry | domain.IsFolder
	return rec, true
}

func (b *Browser) config() worker.EnumerationConfig {
	var flags worker.Flags
	if b.opts.Recursive {
		flags |= worker.Recursive
	}
	if b.opts.FollowLinks {
		flags |= worker.FollowLinks
	}
	if b.opts.ShowHidden {
		flags |= worker.ShowHidden
	}
	return worker.EnumerationConfig{
		Path:    b.opts.Path,
		Command: worker.CommandList,
		Flags:   flags,
	}
}
