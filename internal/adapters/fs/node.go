package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/roster/internal/core/ports"
)

// NodeID is the graft node for the operating system file system.
const NodeID graft.ID = "adapter.fs"

func init() {
	graft.Register(graft.Node[ports.FileSystem]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.FileSystem, error) {
			return NewOS(), nil
		},
	})
}
