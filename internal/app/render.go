package app

import (
	"cmp"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/ui/style"
)

// recordView controls how writeRecords prints a batch.
type recordView struct {
	// Long adds permissions, size and modification time columns.
	Long bool
	// Full prints whole paths. Otherwise names are relative to Base.
	Full bool
	Base string
}

func writeRecords(w io.Writer, records []domain.Record, view recordView) {
	for _, r := range records {
		name := displayName(r, view)
		if !view.Long {
			_, _ = fmt.Fprintln(w, name)
			continue
		}
		perm, _ := r.Property(domain.PropPermissions)
		size := ""
		if !r.IsFolder() {
			size = humanize.Bytes(uint64(max(r.Size(), 0)))
		}
		when := ""
		if !r.Timestamp.IsZero() {
			when = humanize.Time(r.Timestamp)
		}
		_, _ = fmt.Fprintf(w, "%-10s %9s %-16s %s\n",
			cmp.Or(perm, "-"), size, style.Meta.Render(when), name)
	}
}

func displayName(r domain.Record, view recordView) string {
	name := r.Name()
	switch {
	case r.Flags.Has(domain.IsNavigatorPseudoEntry):
	case view.Full:
		name = r.Path.String()
	case view.Base != "":
		if rel, err := filepath.Rel(view.Base, r.Path.String()); err == nil {
			name = rel
		}
	}

	switch {
	case !r.Valid:
		return style.Invalid.Render(name)
	case r.Flags.Has(domain.IsLink):
		return style.LinkName.Render(style.Link + " " + name)
	case r.IsFolder():
		return style.FolderName.Render(style.Folder + " " + strings.TrimSuffix(name, "/") + "/")
	case r.Flags.Has(domain.IsHidden):
		return style.HiddenName.Render("  " + name)
	default:
		return "  " + name
	}
}

// sortRecent orders records most recent first.
func sortRecent(records []domain.Record) {
	slices.SortStableFunc(records, func(a, b domain.Record) int {
		return cmp.Or(
			b.Timestamp.Compare(a.Timestamp),
			strings.Compare(a.Path.String(), b.Path.String()),
		)
	})
}
