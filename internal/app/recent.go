package app

import (
	"context"
	"fmt"

	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/ui/style"
)

// RecentListOptions configuration for the RecentList method.
type RecentListOptions struct {
	// Check re-validates the entries before printing them.
	Check bool
	// All prints every stored entry instead of the bounded view.
	All  bool
	Long bool
}

// RecentAdd records paths as used now.
func (a *App) RecentAdd(_ context.Context, paths []string) error {
	r, err := a.openRecents()
	if err != nil {
		return err
	}
	list := r.List()
	for _, p := range paths {
		p = a.abs(p)
		if err := list.Add(p); err != nil {
			return err
		}
		if info, err := a.fs.Stat(p); err == nil && info.Exists && info.IsDir {
			rec, _ := list.Lookup(p)
			rec.Flags |= domain.IsFolder
			if err := list.AddRecords([]domain.Record{rec}); err != nil {
				return err
			}
		}
		a.logger.Debug(fmt.Sprintf("added %s to %s", p, list.Name()))
	}
	return r.Save()
}

// RecentList prints the list, most recent first.
func (a *App) RecentList(ctx context.Context, opts RecentListOptions) error {
	r, err := a.openRecents()
	if err != nil {
		return err
	}
	if opts.Check {
		if _, err := r.Check(ctx); err != nil {
			return err
		}
		if err := r.Save(); err != nil {
			return err
		}
	}

	records := r.List().Records()
	if opts.All {
		records = r.List().All()
	}
	sortRecent(records)
	writeRecords(a.out, records, recordView{Long: opts.Long, Full: true})
	return nil
}

// RecentRemove drops paths from the list. Unknown paths are reported and skipped.
func (a *App) RecentRemove(_ context.Context, paths []string) error {
	r, err := a.openRecents()
	if err != nil {
		return err
	}
	for _, p := range paths {
		p = a.abs(p)
		if !r.List().Remove(p) {
			a.logger.Warn(fmt.Sprintf("%s is not in %s", p, r.List().Name()))
		}
	}
	return r.Save()
}

// RecentClean removes invalid entries. Without validity checking it clears the list.
func (a *App) RecentClean(ctx context.Context) error {
	r, err := a.openRecents()
	if err != nil {
		return err
	}
	list := r.List()
	before := list.Len()
	if list.Options().CheckValidity {
		if _, err := r.Check(ctx); err != nil {
			return err
		}
	}
	list.Clean()
	if err := r.Save(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.out, "%s removed %d of %d entries\n", style.Check, before-list.Len(), before)
	return nil
}

// RecentCheck re-validates the list and prints the invalid entries.
func (a *App) RecentCheck(ctx context.Context) error {
	r, err := a.openRecents()
	if err != nil {
		return err
	}
	hasInvalid, err := r.Check(ctx)
	if err != nil {
		return err
	}
	if err := r.Save(); err != nil {
		return err
	}
	if !hasInvalid {
		_, _ = fmt.Fprintf(a.out, "%s all %d entries are valid\n", style.Check, r.List().Len())
		return nil
	}
	var invalid []domain.Record
	for _, rec := range r.List().All() {
		if !rec.Valid {
			invalid = append(invalid, rec)
		}
	}
	sortRecent(invalid)
	_, _ = fmt.Fprintf(a.out, "%s %d invalid entries\n", style.Warning, len(invalid))
	writeRecords(a.out, invalid, recordView{Full: true})
	return nil
}

func (a *App) openRecents() (*Recents, error) {
	st, err := a.openStore(a.cfg.Recent.StoreDir)
	if err != nil {
		return nil, err
	}
	r, err := NewRecents(a.fs, st, a.logger, a.cfg.Recent)
	if err != nil {
		return nil, err
	}
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}
