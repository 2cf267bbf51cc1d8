// Package app implements the application layer for roster.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"go.trai.ch/roster/internal/adapters/store"   //nolint:depguard // Wired in app layer
	"go.trai.ch/roster/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/core/ports"
	"go.trai.ch/roster/internal/engine/worker"
	"go.trai.ch/roster/internal/ui/style"
	"go.trai.ch/zerr"
)

// LogController is implemented by loggers whose output mode follows the configuration.
type LogController interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	fs           ports.FileSystem
	logger       ports.Logger
	openStore    store.Opener
	newWatcher   watcher.Factory
	out          io.Writer
	teaOptions   []tea.ProgramOption

	cfg domain.Config
	cwd string
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	fs ports.FileSystem,
	log ports.Logger,
	openStore store.Opener,
	newWatcher watcher.Factory,
) *App {
	return &App{
		configLoader: loader,
		fs:           fs,
		logger:       log,
		openStore:    openStore,
		newWatcher:   newWatcher,
		out:          os.Stdout,
		cfg:          domain.DefaultConfig(),
	}
}

// WithOutput redirects listings and reports to w.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// InitOptions configuration for the Init method.
type InitOptions struct {
	ConfigPath string
	JSON       bool
	Verbose    bool
}

// Init loads the configuration and applies its log settings. Flags only ever enable
// log modes on top of the file.
func (a *App) Init(opts InitOptions) error {
	cwd, err := os.Getwd()
	if err != nil {
		return zerr.Wrap(err, "failed to get working directory")
	}
	cfg, err := a.configLoader.Load(cwd, opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	cfg.Log.JSON = cfg.Log.JSON || opts.JSON
	cfg.Log.Verbose = cfg.Log.Verbose || opts.Verbose

	if lc, ok := a.logger.(LogController); ok {
		lc.SetJSON(cfg.Log.JSON)
		lc.SetVerbose(cfg.Log.Verbose)
	}
	a.cfg = cfg
	a.cwd = cwd
	return nil
}

// Config returns the active configuration.
func (a *App) Config() domain.Config {
	return a.cfg
}

// ListOptions configuration for the List method.
type ListOptions struct {
	Path        string
	Recursive   bool
	FollowLinks bool
	All         bool
	Long        bool
	Sort        string
	Reverse     bool
}

// List prints the entries of a directory in browse order.
func (a *App) List(ctx context.Context, opts ListOptions) error {
	bopts, err := a.browseOptions(opts.Path, opts.Recursive, opts.FollowLinks, opts.All, opts.Sort, opts.Reverse)
	if err != nil {
		return err
	}
	b, err := NewBrowser(a.fs, a.logger, bopts)
	if err != nil {
		return err
	}
	if err := b.Refresh(ctx); err != nil {
		return err
	}
	if err := b.Wait(ctx); err != nil {
		return err
	}
	if err := b.Err(); err != nil {
		return err
	}
	writeRecords(a.out, b.Items().Items(), recordView{Long: opts.Long, Base: bopts.Path})
	return nil
}

// Size prints the total size of the regular files below path.
func (a *App) Size(ctx context.Context, path string) error {
	path = a.abs(path)
	ev, err := a.runOnce(ctx, worker.EnumerationConfig{Path: path, Command: worker.CommandSize},
		func(ev worker.EnumerationEvent) {
			a.logger.Debug(fmt.Sprintf("%s so far", humanize.Bytes(uint64(max(ev.Size, 0)))))
		})
	if err != nil {
		return err
	}
	if ev.Failed {
		return ev.Err
	}
	if ev.Skipped > 0 {
		a.logger.Warn(fmt.Sprintf("skipped %d unreadable entries", ev.Skipped))
	}
	_, _ = fmt.Fprintf(a.out, "%s\t%s\n", humanize.Bytes(uint64(max(ev.Size, 0))), path)
	return nil
}

// Copy copies the file at src to dst.
func (a *App) Copy(ctx context.Context, src, dst string) error {
	src, dst = a.abs(src), a.abs(dst)
	ev, err := a.runOnce(ctx, worker.EnumerationConfig{
		Path:        src,
		Command:     worker.CommandCopy,
		Destination: dst,
	}, nil)
	if err != nil {
		return err
	}
	if ev.Failed {
		return ev.Err
	}
	_, _ = fmt.Fprintf(a.out, "%s %s %s %s\n", style.Check, src, style.Arrow, dst)
	return nil
}

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	Path        string
	Recursive   bool
	FollowLinks bool
	All         bool
	Long        bool
	Sort        string
	Reverse     bool
}

// Watch prints the listing of a directory and reprints it whenever it changes on disk,
// until ctx ends.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	bopts, err := a.browseOptions(opts.Path, opts.Recursive, opts.FollowLinks, opts.All, opts.Sort, opts.Reverse)
	if err != nil {
		return err
	}
	b, err := NewBrowser(a.fs, a.logger, bopts)
	if err != nil {
		return err
	}
	w, err := a.newWatcher(bopts.Recursive)
	if err != nil {
		return err
	}

	a.logger.Info(fmt.Sprintf("watching %s", bopts.Path))
	return b.Watch(ctx, w, a.cfg.Watch.Debounce, func(b *Browser) {
		if err := b.Err(); err != nil {
			a.logger.Error(err)
			return
		}
		_, _ = fmt.Fprintln(a.out, style.Meta.Render(fmt.Sprintf("%s %s (%d entries)", style.Dot, bopts.Path, b.Items().Len())))
		writeRecords(a.out, b.Items().Items(), recordView{Long: opts.Long, Base: bopts.Path})
	})
}

func (a *App) browseOptions(path string, recursive, followLinks, all bool, sortKey string, reverse bool) (BrowseOptions, error) {
	browse := a.cfg.Browse
	key := browse.Sort
	if sortKey != "" {
		k, err := domain.ParseSortKey(sortKey)
		if err != nil {
			return BrowseOptions{}, err
		}
		key = k
	}
	if path == "" {
		path = "."
	}
	return BrowseOptions{
		Path:        a.abs(path),
		Recursive:   recursive || browse.Recursive,
		FollowLinks: followLinks || browse.FollowLinks,
		ShowHidden:  all || browse.ShowHidden,
		Sort:        key,
		Descending:  reverse != browse.Descending,
	}, nil
}

// runOnce runs one enumeration to completion. progress receives the intermediate events.
func (a *App) runOnce(
	ctx context.Context,
	cfg worker.EnumerationConfig,
	progress func(worker.EnumerationEvent),
) (worker.EnumerationEvent, error) {
	box := worker.NewMailbox[worker.EnumerationEvent]()
	e := worker.NewEnumerator(a.fs, box.Post)
	if err := e.Configure(cfg); err != nil {
		return worker.EnumerationEvent{}, err
	}
	if _, err := e.Start(ctx); err != nil {
		return worker.EnumerationEvent{}, err
	}

	for {
		select {
		case <-ctx.Done():
			e.AwaitIdle()
			return worker.EnumerationEvent{}, ctx.Err()
		case <-box.Ready():
			for _, ev := range box.Drain() {
				if ev.Kind == worker.EventFinished {
					return ev, nil
				}
				if progress != nil {
					progress(ev)
				}
			}
		}
	}
}

func (a *App) abs(path string) string {
	if filepath.IsAbs(path) || a.cwd == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(a.cwd, path)
}
