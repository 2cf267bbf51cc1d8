package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/roster/internal/adapters/logger"
	"go.trai.ch/roster/internal/core/ports"
)

// NodeID is the unique identifier for the watcher factory Graft node.
const NodeID graft.ID = "adapter.watcher"

// Factory creates a watcher for one watch session.
type Factory func(recursive bool) (ports.Watcher, error)

func init() {
	graft.Register(graft.Node[Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return func(recursive bool) (ports.Watcher, error) {
				return NewWatcher(log, WithRecursive(recursive))
			}, nil
		},
	})
}
