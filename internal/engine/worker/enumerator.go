package worker

import (
	"context"
	"strconv"

	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/core/ports"
	"go.trai.ch/zerr"
)

// Command selects what an Enumerator run does.
type Command uint8

const (
	// CommandList lists a directory, optionally recursively.
	CommandList Command = iota + 1
	// CommandSize computes the total size of a tree.
	CommandSize
	// CommandCopy copies a single path to a destination.
	CommandCopy
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CommandList:
		return "list"
	case CommandSize:
		return "size"
	case CommandCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// Flags tune an enumeration.
type Flags uint8

const (
	// Recursive descends into subdirectories.
	Recursive Flags = 1 << iota
	// FollowLinks descends through symbolic links to directories below the top level.
	FollowLinks
	// ShowHidden includes dot entries in listings.
	ShowHidden
)

// Has reports whether all bits of f are set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// EnumerationConfig is the work an Enumerator performs on its next run.
type EnumerationConfig struct {
	Path        string
	Command     Command
	Flags       Flags
	Destination string
}

// Stamp identifies the configuration.
func (c EnumerationConfig) Stamp() Stamp {
	return stampOf(c.Command.String(), c.Path, strconv.Itoa(int(c.Flags)), c.Destination)
}

// EventKind distinguishes enumeration events.
type EventKind uint8

const (
	// EventFilesAvailable carries the records of one directory as soon as it is listed.
	EventFilesAvailable EventKind = iota + 1
	// EventSizeAvailable carries the running byte total after each directory.
	EventSizeAvailable
	// EventFinished ends a run and carries its complete payload.
	EventFinished
)

// EnumerationEvent is delivered to the owner through the sink. It owns its data.
type EnumerationEvent struct {
	Kind   EventKind
	Stamp  Stamp
	Config EnumerationConfig

	// Files is the batch for EventFilesAvailable, or the full flat list on EventFinished.
	Files []domain.Record
	// Size is the running or final byte total of a size run.
	Size int64
	// Skipped counts entries that could not be read and were left out.
	Skipped int

	// Failed is set when the run could not complete. Message is readable text for the
	// user and Err the underlying error.
	Failed   bool
	Message  string
	Err      error
	Canceled bool
}

var errPathMissing = zerr.New("path does not exist")

// Enumerator lists directories, computes tree sizes, or copies a path.
type Enumerator struct {
	lifecycle
	fs         ports.FileSystem
	sink       func(EnumerationEvent)
	cfg        EnumerationConfig
	configured bool
}

// NewEnumerator creates an idle Enumerator that sends its events to sink.
// Sink is called from the worker goroutine and must not block for long.
func NewEnumerator(fs ports.FileSystem, sink func(EnumerationEvent)) *Enumerator {
	return &Enumerator{
		fs:   fs,
		sink: sink,
	}
}

// Configure sets the work for the next run. It fails with domain.ErrWorkerBusy while a
// run is in flight.
func (e *Enumerator) Configure(cfg EnumerationConfig) error {
	if cfg.Path == "" {
		return domain.ErrEmptyPath
	}
	switch cfg.Command {
	case CommandList, CommandSize, CommandCopy:
	default:
		return zerr.With(domain.ErrUnknownCommand, "command", int(cfg.Command))
	}
	return e.whenIdle(func() {
		e.cfg = cfg
		e.configured = true
	})
}

// Config returns the current configuration.
func (e *Enumerator) Config() EnumerationConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Start launches the configured run in a new goroutine and returns its stamp.
// Cancelling ctx ends the run early with a Canceled finish event.
func (e *Enumerator) Start(ctx context.Context) (Stamp, error) {
	var cfg EnumerationConfig
	err := e.begin(func() error {
		if !e.configured {
			return domain.ErrNotConfigured
		}
		cfg = e.cfg
		return nil
	})
	if err != nil {
		return 0, err
	}

	go func() {
		defer e.end()
		e.emit(e.run(ctx, cfg))
	}()
	return cfg.Stamp(), nil
}

func (e *Enumerator) emit(ev EnumerationEvent) {
	if e.sink != nil {
		e.sink(ev)
	}
}

func (e *Enumerator) run(ctx context.Context, cfg EnumerationConfig) EnumerationEvent {
	switch cfg.Command {
	case CommandList:
		return e.list(ctx, cfg)
	case CommandSize:
		return e.size(ctx, cfg)
	default:
		return e.copy(cfg)
	}
}

func (e *Enumerator) list(ctx context.Context, cfg EnumerationConfig) EnumerationEvent {
	l := lister{
		e:       e,
		ctx:     ctx,
		cfg:     cfg,
		visited: make(map[string]bool),
	}

	finish := EnumerationEvent{Kind: EventFinished, Stamp: cfg.Stamp(), Config: cfg}
	if err := l.listDir(cfg.Path, true); err != nil {
		finish.fail(err)
	}
	finish.Files = l.all
	finish.Skipped = l.skipped
	finish.Canceled = ctx.Err() != nil
	return finish
}

type lister struct {
	e       *Enumerator
	ctx     context.Context
	cfg     EnumerationConfig
	all     []domain.Record
	skipped int
	visited map[string]bool
}

// listDir lists dir, reports its batch, then descends into subdirectories.
// Only a failure to list the top-level directory is returned.
func (l *lister) listDir(dir string, top bool) error {
	if l.ctx.Err() != nil {
		return nil
	}
	if canonical, err := l.e.fs.Canonicalize(dir); err == nil {
		if l.visited[canonical] {
			return nil
		}
		l.visited[canonical] = true
	}

	// Links are always listed. Whether to descend through one is decided below.
	names, err := l.e.fs.ListDirectory(dir, ports.ListOptions{
		ShowHidden:   l.cfg.Flags.Has(ShowHidden),
		IncludeLinks: true,
	})
	if err != nil {
		if top {
			return zerr.With(zerr.Wrap(err, "failed to list directory"), "path", dir)
		}
		l.skipped++
		return nil
	}

	batch := make([]domain.Record, 0, len(names))
	var subdirs []string
	for _, name := range names {
		info, err := l.e.fs.Stat(name)
		if err != nil || !info.Exists {
			l.skipped++
			continue
		}
		batch = append(batch, recordFromInfo(name, info))
		if info.IsDir && (!info.IsLink || l.cfg.Flags.Has(FollowLinks)) {
			subdirs = append(subdirs, name)
		}
	}

	l.all = append(l.all, batch...)
	l.e.emit(EnumerationEvent{
		Kind:   EventFilesAvailable,
		Stamp:  l.cfg.Stamp(),
		Config: l.cfg,
		Files:  domain.CloneRecords(batch),
	})

	if !l.cfg.Flags.Has(Recursive) {
		return nil
	}
	for _, sub := range subdirs {
		_ = l.listDir(sub, false)
	}
	return nil
}

func (e *Enumerator) size(ctx context.Context, cfg EnumerationConfig) EnumerationEvent {
	s := sizer{e: e, ctx: ctx, cfg: cfg}

	finish := EnumerationEvent{Kind: EventFinished, Stamp: cfg.Stamp(), Config: cfg}
	info, err := e.fs.Stat(cfg.Path)
	switch {
	case err != nil:
		finish.fail(zerr.With(zerr.Wrap(err, "failed to stat path"), "path", cfg.Path))
	case !info.Exists:
		finish.fail(zerr.With(errPathMissing, "path", cfg.Path))
	case info.IsDir:
		s.walk(cfg.Path)
	case info.IsLink:
		// A link to a file has no size of its own.
	default:
		s.total = info.Size
	}
	finish.Size = s.total
	finish.Skipped = s.skipped
	finish.Canceled = ctx.Err() != nil
	return finish
}

type sizer struct {
	e       *Enumerator
	ctx     context.Context
	cfg     EnumerationConfig
	total   int64
	skipped int
}

// walk adds the sizes of the regular files below dir. Links are neither counted nor followed.
func (s *sizer) walk(dir string) {
	if s.ctx.Err() != nil {
		return
	}
	names, err := s.e.fs.ListDirectory(dir, ports.ListOptions{ShowHidden: true})
	if err != nil {
		s.skipped++
		return
	}

	var subdirs []string
	for _, name := range names {
		info, err := s.e.fs.Stat(name)
		if err != nil || !info.Exists {
			s.skipped++
			continue
		}
		switch {
		case info.IsLink:
		case info.IsDir:
			subdirs = append(subdirs, name)
		default:
			s.total += info.Size
		}
	}

	s.e.emit(EnumerationEvent{
		Kind:   EventSizeAvailable,
		Stamp:  s.cfg.Stamp(),
		Config: s.cfg,
		Size:   s.total,
	})

	for _, sub := range subdirs {
		s.walk(sub)
	}
}

func (e *Enumerator) copy(cfg EnumerationConfig) EnumerationEvent {
	finish := EnumerationEvent{Kind: EventFinished, Stamp: cfg.Stamp(), Config: cfg}
	if err := e.fs.Copy(cfg.Path, cfg.Destination); err != nil {
		finish.Failed = true
		finish.Message = domain.ErrCopyFailed.Error() + ": " + err.Error()
		finish.Err = zerr.With(zerr.Wrap(err, domain.ErrCopyFailed.Error()), "destination", cfg.Destination)
	}
	return finish
}

func (ev *EnumerationEvent) fail(err error) {
	ev.Failed = true
	ev.Message = err.Error()
	ev.Err = err
}

// recordFromInfo builds a valid record from a stat result.
func recordFromInfo(path string, info ports.FileInfo) domain.Record {
	r := domain.NewRecord(path)
	r.Timestamp = info.ModTime
	if info.IsDir {
		r.Flags |= domain.IsFolder
	}
	if info.IsLink {
		r.Flags |= domain.IsLink
	}
	if info.IsHidden {
		r.Flags |= domain.IsHidden
	}
	r.Properties = domain.Properties{
		domain.PropSize:        strconv.FormatInt(info.Size, 10),
		domain.PropPermissions: info.Permissions,
	}
	return r
}
