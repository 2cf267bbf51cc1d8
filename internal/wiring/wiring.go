// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/roster/internal/adapters/config"
	_ "go.trai.ch/roster/internal/adapters/fs"
	_ "go.trai.ch/roster/internal/adapters/logger"
	_ "go.trai.ch/roster/internal/adapters/store"
	_ "go.trai.ch/roster/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/roster/internal/app"
)
