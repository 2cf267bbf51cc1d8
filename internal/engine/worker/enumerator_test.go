package worker_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/roster/internal/adapters/fs"
	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/core/ports"
	"go.trai.ch/roster/internal/core/ports/mocks"
	"go.trai.ch/roster/internal/engine/cache"
	"go.trai.ch/roster/internal/engine/worker"
	"go.uber.org/mock/gomock"
)

func names(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Path.String()
	}
	return out
}

// run configures e, starts it and returns every event it emitted.
func run(t *testing.T, e *worker.Enumerator, box *worker.Mailbox[worker.EnumerationEvent], cfg worker.EnumerationConfig) []worker.EnumerationEvent {
	t.Helper()
	require.NoError(t, e.Configure(cfg))
	stamp, err := e.Start(t.Context())
	require.NoError(t, err)
	e.AwaitIdle()

	events := box.Drain()
	require.NotEmpty(t, events)
	for _, ev := range events {
		assert.Equal(t, stamp, ev.Stamp)
	}
	assert.Equal(t, worker.EventFinished, events[len(events)-1].Kind)
	return events
}

func newEnumerator(fsys ports.FileSystem) (*worker.Enumerator, *worker.Mailbox[worker.EnumerationEvent]) {
	box := worker.NewMailbox[worker.EnumerationEvent]()
	return worker.NewEnumerator(fsys, box.Post), box
}

func TestEnumerator_ListScenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := mocks.NewMockFileSystem(ctrl)

	fsys.EXPECT().Canonicalize("/d").Return("/d", nil)
	fsys.EXPECT().ListDirectory("/d", ports.ListOptions{IncludeLinks: true}).Return([]string{"/d/a.txt", "/d/b"}, nil)
	fsys.EXPECT().Stat("/d/a.txt").Return(ports.FileInfo{Size: 100, Permissions: "-rw-r--r--", Exists: true}, nil)
	fsys.EXPECT().Stat("/d/b").Return(ports.FileInfo{IsDir: true, Exists: true}, nil)

	e, box := newEnumerator(fsys)
	events := run(t, e, box, worker.EnumerationConfig{Path: "/d", Command: worker.CommandList})

	require.Len(t, events, 2)
	assert.Equal(t, worker.EventFilesAvailable, events[0].Kind)
	assert.Equal(t, []string{"/d/a.txt", "/d/b"}, names(events[0].Files))

	finished := events[1]
	assert.False(t, finished.Failed)
	assert.Equal(t, []string{"/d/a.txt", "/d/b"}, names(finished.Files))
	assert.Equal(t, int64(100), finished.Files[0].Size())
	assert.True(t, finished.Files[1].IsFolder())

	c := cache.NewRecords(domain.SortByName, true)
	require.NoError(t, c.Update(finished.Files))
	assert.Equal(t, []string{"/d/b", "/d/a.txt"}, names(c.Items()))
	assert.Empty(t, c.SelectedItems())
}

func TestEnumerator_RecursiveEmitsPerDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := mocks.NewMockFileSystem(ctrl)

	fsys.EXPECT().Canonicalize(gomock.Any()).DoAndReturn(func(p string) (string, error) { return p, nil }).AnyTimes()
	fsys.EXPECT().ListDirectory("/r", ports.ListOptions{IncludeLinks: true}).Return([]string{"/r/x", "/r/s", "/r/bad"}, nil)
	fsys.EXPECT().ListDirectory("/r/s", ports.ListOptions{IncludeLinks: true}).Return([]string{"/r/s/y"}, nil)
	fsys.EXPECT().Stat("/r/x").Return(ports.FileInfo{Exists: true}, nil)
	fsys.EXPECT().Stat("/r/s").Return(ports.FileInfo{IsDir: true, Exists: true}, nil)
	fsys.EXPECT().Stat("/r/bad").Return(ports.FileInfo{}, errors.New("permission denied"))
	fsys.EXPECT().Stat("/r/s/y").Return(ports.FileInfo{Exists: true}, nil)

	e, box := newEnumerator(fsys)
	events := run(t, e, box, worker.EnumerationConfig{Path: "/r", Command: worker.CommandList, Flags: worker.Recursive})

	require.Len(t, events, 3)
	assert.Equal(t, []string{"/r/x", "/r/s"}, names(events[0].Files))
	assert.Equal(t, []string{"/r/s/y"}, names(events[1].Files))
	assert.Equal(t, []string{"/r/x", "/r/s", "/r/s/y"}, names(events[2].Files))
	assert.Equal(t, 1, events[2].Skipped)
}

func TestEnumerator_LinkedDirectoriesNeedFlag(t *testing.T) {
	setup := func(t *testing.T) *mocks.MockFileSystem {
		t.Helper()
		ctrl := gomock.NewController(t)
		fsys := mocks.NewMockFileSystem(ctrl)
		fsys.EXPECT().Canonicalize("/r").Return("/r", nil).AnyTimes()
		fsys.EXPECT().Canonicalize("/r/loop").Return("/r", nil).AnyTimes()
		fsys.EXPECT().ListDirectory("/r", gomock.Any()).Return([]string{"/r/loop"}, nil).Times(1)
		fsys.EXPECT().Stat("/r/loop").Return(ports.FileInfo{IsDir: true, IsLink: true, Exists: true}, nil)
		return fsys
	}

	t.Run("without flag", func(t *testing.T) {
		e, box := newEnumerator(setup(t))
		events := run(t, e, box, worker.EnumerationConfig{Path: "/r", Command: worker.CommandList, Flags: worker.Recursive})
		assert.Equal(t, []string{"/r/loop"}, names(events[len(events)-1].Files))
	})

	t.Run("with flag stops at cycle", func(t *testing.T) {
		e, box := newEnumerator(setup(t))
		events := run(t, e, box, worker.EnumerationConfig{
			Path:    "/r",
			Command: worker.CommandList,
			Flags:   worker.Recursive | worker.FollowLinks,
		})
		assert.Equal(t, []string{"/r/loop"}, names(events[len(events)-1].Files))
	})
}

func TestEnumerator_ListKeepsNestedLinks(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "f"), []byte("x"), 0o600))
	require.NoError(t, os.Symlink(filepath.Join(sub, "f"), filepath.Join(sub, "lnk")))
	require.NoError(t, os.Symlink(sub, filepath.Join(sub, "up")))
	require.NoError(t, os.Symlink(filepath.Join(sub, "f"), filepath.Join(root, "toplnk")))

	want := []string{
		sub,
		filepath.Join(root, "toplnk"),
		filepath.Join(sub, "f"),
		filepath.Join(sub, "lnk"),
		filepath.Join(sub, "up"),
	}

	for _, flags := range []worker.Flags{worker.Recursive, worker.Recursive | worker.FollowLinks} {
		e, box := newEnumerator(fs.NewOS())
		events := run(t, e, box, worker.EnumerationConfig{Path: root, Command: worker.CommandList, Flags: flags})

		finished := events[len(events)-1]
		assert.False(t, finished.Failed)
		assert.Equal(t, want, names(finished.Files), "flags %d", flags)
		assert.Len(t, events, 3, "the link back to sub is never listed twice")
	}
}

func TestEnumerator_ListRootFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := mocks.NewMockFileSystem(ctrl)
	fsys.EXPECT().Canonicalize("/gone").Return("", errors.New("no such file"))
	fsys.EXPECT().ListDirectory("/gone", gomock.Any()).Return(nil, errors.New("no such file"))

	e, box := newEnumerator(fsys)
	events := run(t, e, box, worker.EnumerationConfig{Path: "/gone", Command: worker.CommandList})

	require.Len(t, events, 1)
	assert.True(t, events[0].Failed)
	assert.Contains(t, events[0].Message, "failed to list directory")
}

func TestEnumerator_SizeExcludesLinks(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), make([]byte, 100), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".h"), make([]byte, 50), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b"), make([]byte, 25), 0o600))

	big := filepath.Join(t.TempDir(), "big")
	f, err := os.Create(big)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(1<<30))
	require.NoError(t, f.Close())
	require.NoError(t, os.Symlink(big, filepath.Join(root, "sub", "big")))
	require.NoError(t, os.Symlink(filepath.Join(root, "sub"), filepath.Join(root, "again")))

	e, box := newEnumerator(fs.NewOS())
	events := run(t, e, box, worker.EnumerationConfig{Path: root, Command: worker.CommandSize})

	finished := events[len(events)-1]
	assert.Equal(t, int64(175), finished.Size)
	assert.False(t, finished.Failed)

	var progress []int64
	for _, ev := range events[:len(events)-1] {
		require.Equal(t, worker.EventSizeAvailable, ev.Kind)
		progress = append(progress, ev.Size)
	}
	assert.Equal(t, []int64{150, 175}, progress)
}

func TestEnumerator_SizeOfFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := mocks.NewMockFileSystem(ctrl)
	fsys.EXPECT().Stat("/f").Return(ports.FileInfo{Size: 42, Exists: true}, nil)

	e, box := newEnumerator(fsys)
	events := run(t, e, box, worker.EnumerationConfig{Path: "/f", Command: worker.CommandSize})
	require.Len(t, events, 1)
	assert.Equal(t, int64(42), events[0].Size)
}

func TestEnumerator_SizeOfLinkToFile(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	require.NoError(t, os.WriteFile(target, make([]byte, 64), 0o600))
	link := filepath.Join(root, "link")
	require.NoError(t, os.Symlink(target, link))

	e, box := newEnumerator(fs.NewOS())
	events := run(t, e, box, worker.EnumerationConfig{Path: link, Command: worker.CommandSize})
	require.Len(t, events, 1)
	assert.False(t, events[0].Failed)
	assert.Equal(t, int64(0), events[0].Size)
}

func TestEnumerator_Copy(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := mocks.NewMockFileSystem(ctrl)
	fsys.EXPECT().Copy("/a", "/ok").Return(nil)
	fsys.EXPECT().Copy("/a", "/ro").Return(errors.New("read-only file system"))

	e, box := newEnumerator(fsys)

	events := run(t, e, box, worker.EnumerationConfig{Path: "/a", Command: worker.CommandCopy, Destination: "/ok"})
	require.Len(t, events, 1)
	assert.False(t, events[0].Failed)

	events = run(t, e, box, worker.EnumerationConfig{Path: "/a", Command: worker.CommandCopy, Destination: "/ro"})
	require.Len(t, events, 1)
	assert.True(t, events[0].Failed)
	assert.Contains(t, events[0].Message, "read-only file system")
}

func TestEnumerator_Misuse(t *testing.T) {
	e, _ := newEnumerator(mocks.NewMockFileSystem(gomock.NewController(t)))

	_, err := e.Start(t.Context())
	require.ErrorIs(t, err, domain.ErrNotConfigured)

	require.ErrorIs(t, e.Configure(worker.EnumerationConfig{Command: worker.CommandList}), domain.ErrEmptyPath)
	require.ErrorContains(t, e.Configure(worker.EnumerationConfig{Path: "/d"}), domain.ErrUnknownCommand.Error())
	assert.Equal(t, worker.StateIdle, e.State())
}

func TestEnumerator_BusyWhileRunning(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fsys := mocks.NewMockFileSystem(ctrl)
		release := make(chan struct{})
		fsys.EXPECT().Copy("/a", "/b").DoAndReturn(func(_, _ string) error {
			<-release
			return nil
		}).Times(2)

		e, box := newEnumerator(fsys)
		cfg := worker.EnumerationConfig{Path: "/a", Command: worker.CommandCopy, Destination: "/b"}
		require.NoError(t, e.Configure(cfg))
		_, err := e.Start(t.Context())
		require.NoError(t, err)

		synctest.Wait()
		assert.Equal(t, worker.StateRunning, e.State())
		require.ErrorIs(t, e.Configure(cfg), domain.ErrWorkerBusy)
		_, err = e.Start(t.Context())
		require.ErrorIs(t, err, domain.ErrWorkerBusy)

		release <- struct{}{}
		e.AwaitIdle()
		assert.Equal(t, worker.StateCompleted, e.State())
		assert.Len(t, box.Drain(), 1)

		// A completed worker can be reused.
		require.NoError(t, e.Configure(cfg))
		_, err = e.Start(t.Context())
		require.NoError(t, err)
		close(release)
		e.AwaitIdle()
		assert.Len(t, box.Drain(), 1)
	})
}

func TestEnumerator_Cancel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fsys := mocks.NewMockFileSystem(ctrl)
		ctx, cancel := context.WithCancel(t.Context())

		fsys.EXPECT().Canonicalize(gomock.Any()).DoAndReturn(func(p string) (string, error) { return p, nil }).AnyTimes()
		fsys.EXPECT().ListDirectory("/r", gomock.Any()).DoAndReturn(func(string, ports.ListOptions) ([]string, error) {
			cancel()
			return []string{"/r/s"}, nil
		})
		fsys.EXPECT().Stat("/r/s").Return(ports.FileInfo{IsDir: true, Exists: true}, nil)

		e, box := newEnumerator(fsys)
		require.NoError(t, e.Configure(worker.EnumerationConfig{Path: "/r", Command: worker.CommandList, Flags: worker.Recursive}))
		_, err := e.Start(ctx)
		require.NoError(t, err)
		e.AwaitIdle()

		events := box.Drain()
		finished := events[len(events)-1]
		assert.True(t, finished.Canceled)
		assert.Equal(t, []string{"/r/s"}, names(finished.Files))
	})
}

func TestEnumerator_StampFollowsConfig(t *testing.T) {
	a := worker.EnumerationConfig{Path: "/a", Command: worker.CommandList}
	b := a
	b.Path = "/b"
	c := a
	c.Flags = worker.Recursive

	assert.Equal(t, a.Stamp(), a.Stamp())
	assert.NotEqual(t, a.Stamp(), b.Stamp())
	assert.NotEqual(t, a.Stamp(), c.Stamp())
}

func TestEnumerator_EventsOwnTheirData(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := mocks.NewMockFileSystem(ctrl)
	fsys.EXPECT().Canonicalize("/d").Return("/d", nil)
	fsys.EXPECT().ListDirectory("/d", gomock.Any()).Return([]string{"/d/a"}, nil)
	fsys.EXPECT().Stat("/d/a").Return(ports.FileInfo{Size: 1, ModTime: time.Unix(10, 0), Exists: true}, nil)

	e, box := newEnumerator(fsys)
	events := run(t, e, box, worker.EnumerationConfig{Path: "/d", Command: worker.CommandList})

	events[0].Files[0].Properties[domain.PropSize] = "999"
	assert.Equal(t, int64(1), events[1].Files[0].Size())
	assert.Equal(t, time.Unix(10, 0), events[1].Files[0].Timestamp)
}
