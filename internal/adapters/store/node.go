package store

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"github.com/spf13/afero"
	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/core/ports"
	"go.trai.ch/zerr"
)

// NodeID is the unique identifier for the record store opener Graft node.
const NodeID graft.ID = "adapter.record_store"

// Opener opens the record store rooted at dir. An empty dir selects DefaultDir.
type Opener func(dir string) (ports.RecordStore, error)

// DefaultDir returns the lists directory below the user config directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", zerr.Wrap(err, "failed to locate user config directory")
	}
	return domain.DefaultListsPath(base), nil
}

// NewOpener returns an Opener for stores on fs.
func NewOpener(fs afero.Fs) Opener {
	return func(dir string) (ports.RecordStore, error) {
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return New(fs, dir), nil
	}
}

func init() {
	graft.Register(graft.Node[Opener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (Opener, error) {
			return NewOpener(afero.NewOsFs()), nil
		},
	})
}
