package ports

import "go.trai.ch/roster/internal/core/domain"

// RecordStore persists named record lists.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type RecordStore interface {
	// Load returns the records stored under name.
	// Returns nil, nil if nothing was stored yet.
	Load(name string) ([]domain.Record, error)

	// Save replaces the records stored under name.
	Save(name string, records []domain.Record) error
}
