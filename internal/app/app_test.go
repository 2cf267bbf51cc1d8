package app_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/roster/internal/adapters/fs"
	"go.trai.ch/roster/internal/adapters/store"
	"go.trai.ch/roster/internal/app"
	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/core/ports"
	"go.trai.ch/roster/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// logSpy records the log mode switches made by Init.
type logSpy struct {
	ports.Logger
	json, verbose bool
}

func (l *logSpy) SetJSON(enable bool)    { l.json = enable }
func (l *logSpy) SetVerbose(enable bool) { l.verbose = enable }

type fixture struct {
	app *app.App
	mem afero.Fs
	out *bytes.Buffer
}

func newFixture(t *testing.T, mem afero.Fs, cfg domain.Config) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any(), "").Return(cfg, nil).AnyTimes()

	noWatcher := func(bool) (ports.Watcher, error) {
		return nil, errors.New("watching is not available")
	}
	out := new(bytes.Buffer)
	a := app.New(loader, fs.New(mem), quietLogger(t), store.NewOpener(mem), noWatcher).WithOutput(out)
	require.NoError(t, a.Init(app.InitOptions{}))
	return &fixture{app: a, mem: mem, out: out}
}

func testConfig() domain.Config {
	cfg := domain.DefaultConfig()
	cfg.Recent.StoreDir = "/lists"
	return cfg
}

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func TestApp_Init(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	cfg := domain.DefaultConfig()
	cfg.Log.Verbose = true
	loader.EXPECT().Load(gomock.Any(), "custom.yaml").Return(cfg, nil)

	spy := &logSpy{}
	a := app.New(loader, fs.New(afero.NewMemMapFs()), spy, nil, nil)
	require.NoError(t, a.Init(app.InitOptions{ConfigPath: "custom.yaml", JSON: true}))

	assert.True(t, spy.json)
	assert.True(t, spy.verbose)
	assert.True(t, a.Config().Log.JSON)
}

func TestApp_InitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any(), "").Return(domain.Config{}, domain.ErrConfigParseFailed)

	a := app.New(loader, fs.New(afero.NewMemMapFs()), quietLogger(t), nil, nil)
	err := a.Init(app.InitOptions{})
	require.ErrorContains(t, err, "failed to load configuration")
}

func TestApp_List(t *testing.T) {
	f := newFixture(t, scenarioTree(t), testConfig())

	require.NoError(t, f.app.List(t.Context(), app.ListOptions{Path: "/d"}))
	out := lines(f.out)
	require.Len(t, out, 2)
	assert.Contains(t, out[0], "b/")
	assert.Contains(t, out[1], "a.txt")
}

func TestApp_ListOptions(t *testing.T) {
	f := newFixture(t, scenarioTree(t), testConfig())

	require.NoError(t, f.app.List(t.Context(), app.ListOptions{Path: "/d", All: true, Long: true, Sort: "size"}))
	out := lines(f.out)
	require.Len(t, out, 3)
	assert.Contains(t, out[1], ".hidden")
	assert.Contains(t, out[1], "50 B")
	assert.Contains(t, out[2], "a.txt")
	assert.Contains(t, out[2], "100 B")
}

func TestApp_ListErrors(t *testing.T) {
	f := newFixture(t, scenarioTree(t), testConfig())

	err := f.app.List(t.Context(), app.ListOptions{Path: "/d", Sort: "color"})
	require.ErrorContains(t, err, domain.ErrUnknownSortKey.Error())

	err = f.app.List(t.Context(), app.ListOptions{Path: "/missing"})
	require.ErrorContains(t, err, "failed to list directory")
}

func TestApp_Size(t *testing.T) {
	mem := memTree(t, map[string]string{
		"/s/one":       string(make([]byte, 100)),
		"/s/sub/":      "",
		"/s/sub/two":   string(make([]byte, 40)),
		"/s/sub/.more": string(make([]byte, 10)),
	})
	f := newFixture(t, mem, testConfig())

	require.NoError(t, f.app.Size(t.Context(), "/s"))
	assert.Equal(t, "150 B\t/s\n", f.out.String())

	err := f.app.Size(t.Context(), "/missing")
	require.ErrorContains(t, err, "path does not exist")
}

func TestApp_Copy(t *testing.T) {
	f := newFixture(t, scenarioTree(t), testConfig())

	require.NoError(t, f.app.Copy(t.Context(), "/d/a.txt", "/e"))
	data, err := afero.ReadFile(f.mem, "/e/a.txt")
	require.NoError(t, err)
	assert.Len(t, data, 100)
	assert.Contains(t, f.out.String(), "/d/a.txt")

	err = f.app.Copy(t.Context(), "/d/nope", "/e")
	require.ErrorContains(t, err, domain.ErrCopyFailed.Error())
}

func TestApp_WatchWithoutWatcher(t *testing.T) {
	f := newFixture(t, scenarioTree(t), testConfig())

	err := f.app.Watch(t.Context(), app.WatchOptions{Path: "/d"})
	require.ErrorContains(t, err, "watching is not available")
}

func TestApp_Recent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, scenarioTree(t), testConfig())
		ctx := t.Context()

		require.NoError(t, f.app.RecentAdd(ctx, []string{"/d/a.txt"}))
		time.Sleep(time.Second)
		require.NoError(t, f.app.RecentAdd(ctx, []string{"/d/b", "/e/x.txt"}))

		require.NoError(t, f.app.RecentList(ctx, app.RecentListOptions{}))
		out := lines(f.out)
		require.Len(t, out, 3)
		assert.Contains(t, out[0], "/d/b/")
		assert.Contains(t, out[1], "/e/x.txt")
		assert.Contains(t, out[2], "/d/a.txt")

		f.out.Reset()
		require.NoError(t, f.app.RecentRemove(ctx, []string{"/e/x.txt", "/not/there"}))
		require.NoError(t, f.app.RecentList(ctx, app.RecentListOptions{}))
		assert.Len(t, lines(f.out), 2)
	})
}

func TestApp_RecentCheckAndClean(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, scenarioTree(t), testConfig())
		ctx := t.Context()

		require.NoError(t, f.app.RecentAdd(ctx, []string{"/d/a.txt", "/e/x.txt"}))
		require.NoError(t, f.app.RecentCheck(ctx))
		assert.Contains(t, f.out.String(), "all 2 entries are valid")

		require.NoError(t, f.mem.Remove("/e/x.txt"))
		f.out.Reset()
		require.NoError(t, f.app.RecentCheck(ctx))
		out := lines(f.out)
		require.Len(t, out, 2)
		assert.Contains(t, out[0], "1 invalid entries")
		assert.Contains(t, out[1], "/e/x.txt")

		f.out.Reset()
		require.NoError(t, f.app.RecentClean(ctx))
		assert.Contains(t, f.out.String(), "removed 1 of 2 entries")

		f.out.Reset()
		require.NoError(t, f.app.RecentList(ctx, app.RecentListOptions{All: true}))
		out = lines(f.out)
		require.Len(t, out, 1)
		assert.Contains(t, out[0], "/d/a.txt")
	})
}

func TestApp_RecentCleanWithoutValidity(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cfg := testConfig()
		cfg.Recent.CheckValidity = false
		f := newFixture(t, scenarioTree(t), cfg)
		ctx := t.Context()

		require.NoError(t, f.app.RecentAdd(ctx, []string{"/d/a.txt", "/e/x.txt"}))
		require.NoError(t, f.app.RecentClean(ctx))
		assert.Contains(t, f.out.String(), "removed 2 of 2 entries")
	})
}

func TestApp_RecentBounded(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cfg := testConfig()
		cfg.Recent.MaxSize = 2
		f := newFixture(t, scenarioTree(t), cfg)
		ctx := t.Context()

		for _, p := range []string{"/d/a.txt", "/d/b", "/e/x.txt"} {
			require.NoError(t, f.app.RecentAdd(ctx, []string{p}))
			time.Sleep(time.Second)
		}

		require.NoError(t, f.app.RecentList(ctx, app.RecentListOptions{}))
		out := lines(f.out)
		require.Len(t, out, 2)
		assert.Contains(t, out[0], "/e/x.txt")
		assert.Contains(t, out[1], "/d/b")
	})
}
