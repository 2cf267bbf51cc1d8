package worker

import (
	"cmp"
	"context"
	"path/filepath"
	"slices"
	"strconv"

	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/core/ports"
)

// ValidityResult is the single emission of a validation run. It owns its records.
type ValidityResult struct {
	Stamp Stamp
	// Records is the full input batch, in input order, with Valid recomputed.
	Records []domain.Record
	// HasInvalid reports whether at least one record ended up invalid.
	HasInvalid bool
	// Canceled is set when the run was abandoned. Records is nil in that case.
	Canceled bool
}

// Validator re-checks the existence of a batch of records and flags duplicates
// that resolve to the same canonical path.
type Validator struct {
	lifecycle
	fs         ports.FileSystem
	sink       func(ValidityResult)
	records    []domain.Record
	detect     bool
	stamp      Stamp
	configured bool
}

// NewValidator creates an idle Validator that sends its result to sink.
func NewValidator(fs ports.FileSystem, sink func(ValidityResult)) *Validator {
	return &Validator{
		fs:   fs,
		sink: sink,
	}
}

// Configure sets the batch for the next run. The batch is copied.
func (v *Validator) Configure(records []domain.Record, detectDuplicates bool) error {
	return v.whenIdle(func() {
		v.records = domain.CloneRecords(records)
		v.detect = detectDuplicates
		v.stamp = batchStamp(records, detectDuplicates)
		v.configured = true
	})
}

// Start launches validation of the configured batch and returns its stamp.
func (v *Validator) Start(ctx context.Context) (Stamp, error) {
	var (
		records []domain.Record
		detect  bool
		stamp   Stamp
	)
	err := v.begin(func() error {
		if !v.configured {
			return domain.ErrNotConfigured
		}
		records, detect, stamp = v.records, v.detect, v.stamp
		return nil
	})
	if err != nil {
		return 0, err
	}

	go func() {
		defer v.end()
		res := Validate(ctx, v.fs, records, detect)
		res.Stamp = stamp
		if v.sink != nil {
			v.sink(res)
		}
	}()
	return stamp, nil
}

// Validate checks records synchronously. Records that no longer exist become invalid.
// With detectDuplicates, a record whose canonical path equals that of a valid record
// sorting before it by canonical path becomes invalid as well.
// The input slice is not modified.
func Validate(ctx context.Context, fs ports.FileSystem, records []domain.Record, detectDuplicates bool) ValidityResult {
	out := domain.CloneRecords(records)
	for i := range out {
		if ctx.Err() != nil {
			return ValidityResult{Canceled: true}
		}
		out[i].Valid = fs.Exists(out[i].Path.String())
	}

	if detectDuplicates && len(out) > 1 {
		if !markDuplicates(ctx, fs, out) {
			return ValidityResult{Canceled: true}
		}
	}

	res := ValidityResult{Records: out}
	for _, r := range out {
		if !r.Valid {
			res.HasInvalid = true
			break
		}
	}
	return res
}

// markDuplicates invalidates later records sharing a canonical path. It returns false when
// ctx was canceled.
func markDuplicates(ctx context.Context, fs ports.FileSystem, records []domain.Record) bool {
	canonical := make([]string, len(records))
	for i := range records {
		if ctx.Err() != nil {
			return false
		}
		path := records[i].Path.String()
		c, err := fs.Canonicalize(path)
		if err != nil {
			c = filepath.Clean(path)
		}
		canonical[i] = c
		records[i] = records[i].WithProperty(domain.PropCanonical, c)
	}

	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Or(
			cmp.Compare(canonical[a], canonical[b]),
			cmp.Compare(records[a].Path.String(), records[b].Path.String()),
		)
	})

	last := -1
	for _, i := range order {
		if !records[i].Valid {
			continue
		}
		if last >= 0 && canonical[i] == canonical[last] {
			records[i].Valid = false
			continue
		}
		last = i
	}
	return true
}

func batchStamp(records []domain.Record, detect bool) Stamp {
	parts := make([]string, 0, len(records)+1)
	parts = append(parts, strconv.FormatBool(detect))
	for _, r := range records {
		parts = append(parts, r.Path.String())
	}
	return stampOf(parts...)
}
