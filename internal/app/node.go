package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/roster/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/roster/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.trai.ch/roster/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/roster/internal/adapters/store"   //nolint:depguard // Wired in app layer
	"go.trai.ch/roster/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/roster/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.NodeID,
			logger.NodeID,
			store.NodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	fsys, err := graft.Dep[ports.FileSystem](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	openStore, err := graft.Dep[store.Opener](ctx)
	if err != nil {
		return nil, err
	}
	newWatcher, err := graft.Dep[watcher.Factory](ctx)
	if err != nil {
		return nil, err
	}
	return New(loader, fsys, log, openStore, newWatcher), nil
}
