package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of change a watch event reports.
type WatchOp uint8

const (
	// OpCreate reports a new entry.
	OpCreate WatchOp = iota + 1
	// OpWrite reports modified content.
	OpWrite
	// OpRemove reports a deleted entry.
	OpRemove
	// OpRename reports a renamed entry.
	OpRename
	// OpChmod reports changed permissions.
	OpChmod
)

// WatchEvent is a single filesystem change.
type WatchEvent struct {
	Path      string
	Operation WatchOp
}

// Watcher observes a directory for changes.
//
//go:generate go run go.uber.org/mock/mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching dir. Events stop when ctx is done or Stop is called.
	Start(ctx context.Context, dir string) error
	// Stop releases all resources.
	Stop() error
	// Events returns an iterator over observed changes.
	Events() iter.Seq[WatchEvent]
}
