package logger

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/roster/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

// ConcreteNodeID exposes the *Logger so the CLI can switch modes after parsing flags.
const ConcreteNodeID graft.ID = "adapter.logger.concrete"

func init() {
	graft.Register(graft.Node[*Logger]{
		ID:        ConcreteNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Logger, error) {
			return New(), nil
		},
	})

	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{ConcreteNodeID},
		Run: func(ctx context.Context) (ports.Logger, error) {
			return graft.Dep[*Logger](ctx)
		},
	})
}
