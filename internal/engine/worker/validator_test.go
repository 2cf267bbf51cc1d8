package worker_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/core/ports/mocks"
	"go.trai.ch/roster/internal/engine/worker"
	"go.uber.org/mock/gomock"
)

func records(paths ...string) []domain.Record {
	out := make([]domain.Record, len(paths))
	for i, p := range paths {
		out[i] = domain.NewRecord(p)
	}
	return out
}

func validity(records []domain.Record) []bool {
	out := make([]bool, len(records))
	for i, r := range records {
		out[i] = r.Valid
	}
	return out
}

func TestValidate_Existence(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := mocks.NewMockFileSystem(ctrl)
	fsys.EXPECT().Exists("/a").Return(true)
	fsys.EXPECT().Exists("/b").Return(false)

	in := records("/a", "/b")
	res := worker.Validate(t.Context(), fsys, in, false)

	assert.Equal(t, []bool{true, false}, validity(res.Records))
	assert.True(t, res.HasInvalid)
	assert.Equal(t, []bool{true, true}, validity(in), "input must not be modified")
}

func TestValidate_Duplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := mocks.NewMockFileSystem(ctrl)
	fsys.EXPECT().Exists(gomock.Any()).Return(true).AnyTimes()
	canonical := map[string]string{
		"/z/link": "/real/f",
		"/real/f": "/real/f",
		"/other":  "/other",
	}
	fsys.EXPECT().Canonicalize(gomock.Any()).DoAndReturn(func(p string) (string, error) {
		return canonical[p], nil
	}).AnyTimes()

	res := worker.Validate(t.Context(), fsys, records("/z/link", "/other", "/real/f"), true)

	// Ties on the canonical path fall back to the record path, so /real/f wins.
	assert.Equal(t, []string{"/z/link", "/other", "/real/f"}, names(res.Records))
	assert.Equal(t, []bool{false, true, true}, validity(res.Records))
	assert.True(t, res.HasInvalid)

	v, ok := res.Records[0].Property(domain.PropCanonical)
	require.True(t, ok)
	assert.Equal(t, "/real/f", v)
}

func TestValidate_DuplicateOfInvalidStaysValid(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := mocks.NewMockFileSystem(ctrl)
	fsys.EXPECT().Exists("/a").Return(false)
	fsys.EXPECT().Exists("/b").Return(true)
	fsys.EXPECT().Canonicalize(gomock.Any()).Return("/same", nil).Times(2)

	res := worker.Validate(t.Context(), fsys, records("/a", "/b"), true)
	assert.Equal(t, []bool{false, true}, validity(res.Records))
}

func TestValidate_CanonicalizeFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := mocks.NewMockFileSystem(ctrl)
	fsys.EXPECT().Exists(gomock.Any()).Return(true).Times(2)
	fsys.EXPECT().Canonicalize(gomock.Any()).Return("", errors.New("broken")).Times(2)

	res := worker.Validate(t.Context(), fsys, records("/x/../a", "/a"), true)
	assert.Equal(t, []bool{false, true}, validity(res.Records))
	assert.True(t, res.HasInvalid)
}

func TestValidate_SingleRecordSkipsDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := mocks.NewMockFileSystem(ctrl)
	fsys.EXPECT().Exists("/a").Return(true)

	res := worker.Validate(t.Context(), fsys, records("/a"), true)
	assert.False(t, res.HasInvalid)
	_, ok := res.Records[0].Property(domain.PropCanonical)
	assert.False(t, ok)
}

func TestValidate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	res := worker.Validate(ctx, mocks.NewMockFileSystem(gomock.NewController(t)), records("/a"), false)
	assert.True(t, res.Canceled)
	assert.Nil(t, res.Records)
}

func TestValidator_SingleEmission(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fsys := mocks.NewMockFileSystem(ctrl)
		fsys.EXPECT().Exists(gomock.Any()).Return(true).AnyTimes()

		box := worker.NewMailbox[worker.ValidityResult]()
		v := worker.NewValidator(fsys, box.Post)

		_, err := v.Start(t.Context())
		require.ErrorIs(t, err, domain.ErrNotConfigured)

		in := records("/a", "/b", "/c")
		require.NoError(t, v.Configure(in, false))
		in[0] = domain.NewRecord("/changed")

		stamp, err := v.Start(t.Context())
		require.NoError(t, err)

		<-box.Ready()
		v.AwaitIdle()
		results := box.Drain()
		require.Len(t, results, 1)
		assert.Equal(t, stamp, results[0].Stamp)
		assert.Equal(t, []string{"/a", "/b", "/c"}, names(results[0].Records))
		assert.False(t, results[0].HasInvalid)

		// Reuse with the same batch.
		again, err := v.Start(t.Context())
		require.NoError(t, err)
		v.AwaitIdle()
		assert.Equal(t, stamp, again)
		assert.Len(t, box.Drain(), 1)
	})
}

func TestValidator_BusyWhileRunning(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fsys := mocks.NewMockFileSystem(ctrl)
		release := make(chan struct{})
		fsys.EXPECT().Exists("/a").DoAndReturn(func(string) bool {
			<-release
			return true
		})

		v := worker.NewValidator(fsys, nil)
		require.NoError(t, v.Configure(records("/a"), false))
		_, err := v.Start(t.Context())
		require.NoError(t, err)

		synctest.Wait()
		require.ErrorIs(t, v.Configure(records("/b"), false), domain.ErrWorkerBusy)

		close(release)
		v.AwaitIdle()
		assert.Equal(t, worker.StateCompleted, v.State())
	})
}
