package app

import (
	"context"
	"fmt"

	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/core/ports"
	"go.trai.ch/roster/internal/engine/recent"
	"go.trai.ch/roster/internal/engine/worker"
	"go.trai.ch/zerr"
)

// Recents owns a persisted bounded list together with the validator that keeps its
// validity flags current. Like Browser it belongs to one goroutine.
type Recents struct {
	list      *recent.List
	validator *worker.Validator
	box       *worker.Mailbox[worker.ValidityResult]
	store     ports.RecordStore
	logger    ports.Logger
}

// NewRecents creates the list described by cfg, backed by store.
func NewRecents(fs ports.FileSystem, store ports.RecordStore, log ports.Logger, cfg domain.RecentConfig) (*Recents, error) {
	box := worker.NewMailbox[worker.ValidityResult]()
	validator := worker.NewValidator(fs, box.Post)

	list, err := recent.New(recent.Options{
		Name:             cfg.Name,
		MaxSize:          cfg.MaxSize,
		CheckValidity:    cfg.CheckValidity,
		DetectDuplicates: cfg.DetectDuplicates,
	}, validator)
	if err != nil {
		return nil, err
	}

	r := &Recents{
		list:      list,
		validator: validator,
		box:       box,
		store:     store,
		logger:    log,
	}
	list.OnInvalidRecords(func() {
		log.Debug(fmt.Sprintf("list %q has invalid records", list.Name()))
	})
	return r, nil
}

// List returns the underlying list.
func (r *Recents) List() *recent.List {
	return r.list
}

// Load reads the persisted entries.
func (r *Recents) Load() error {
	if err := r.list.Load(r.store); err != nil {
		return zerr.With(err, "list", r.list.Name())
	}
	return nil
}

// Save persists the bounded view.
func (r *Recents) Save() error {
	if err := r.list.Save(r.store); err != nil {
		return zerr.With(err, "list", r.list.Name())
	}
	return nil
}

// Check runs a validity pass, waits for its result and merges it.
// It reports whether any entry is invalid afterwards.
func (r *Recents) Check(ctx context.Context) (bool, error) {
	stamp, err := r.list.CheckValidity(ctx)
	if err != nil {
		return false, err
	}
	for {
		select {
		case <-ctx.Done():
			r.validator.AwaitIdle()
			return false, ctx.Err()
		case <-r.box.Ready():
			for _, res := range r.box.Drain() {
				if res.Stamp != stamp {
					continue
				}
				return r.list.ApplyValidity(res), nil
			}
		}
	}
}
