package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/roster/internal/adapters/detector" //nolint:depguard // Wired in app layer
	"go.trai.ch/roster/internal/adapters/tui"      //nolint:depguard // Wired in app layer
	"go.trai.ch/zerr"
)

// BrowseCmdOptions configuration for the Browse method.
type BrowseCmdOptions struct {
	Path        string
	Recursive   bool
	FollowLinks bool
	All         bool
	Long        bool
	Sort        string
	Reverse     bool

	// Mode is "auto", "tui" or "plain". Plain prints a single listing.
	Mode  string
	Watch bool
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// Browse opens the interactive browser on a directory and prints the selected paths
// once it is closed. Without a terminal it falls back to a plain listing.
func (a *App) Browse(ctx context.Context, opts BrowseCmdOptions) error {
	mode := detector.ResolveMode(detector.DetectEnvironment(), opts.Mode)
	if mode != detector.ModeTUI {
		return a.List(ctx, ListOptions{
			Path:        opts.Path,
			Recursive:   opts.Recursive,
			FollowLinks: opts.FollowLinks,
			All:         opts.All,
			Long:        opts.Long,
			Sort:        opts.Sort,
			Reverse:     opts.Reverse,
		})
	}

	bopts, err := a.browseOptions(opts.Path, opts.Recursive, opts.FollowLinks, opts.All, opts.Sort, opts.Reverse)
	if err != nil {
		return err
	}
	bopts.Navigator = true
	b, err := NewBrowser(a.fs, a.logger, bopts)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.Refresh(ctx); err != nil {
		return err
	}
	if err := b.Wait(ctx); err != nil {
		return err
	}

	model := tui.NewModel(ctx, b)
	model.Err = b.Err()
	if opts.Watch {
		w, err := a.newWatcher(bopts.Recursive)
		if err != nil {
			return err
		}
		changes, stop, err := b.Changes(ctx, w, a.cfg.Watch.Debounce)
		if err != nil {
			return err
		}
		defer func() { _ = stop() }()
		model = model.WithChanges(changes)
	}

	optsTea := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, a.teaOptions...)
	if _, err := tea.NewProgram(model, optsTea...).Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return zerr.Wrap(err, "browser failed")
	}

	for _, r := range model.Selected() {
		_, _ = fmt.Fprintln(a.out, r.Path.String())
	}
	return nil
}
