package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

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

func provider(t *testing.T, mem afero.Fs, log ports.Logger) ComponentProvider {
	t.Helper()
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	cfg := domain.DefaultConfig()
	cfg.Recent.StoreDir = "/lists"
	loader.EXPECT().Load(gomock.Any(), gomock.Any()).Return(cfg, nil).AnyTimes()

	noWatcher := func(bool) (ports.Watcher, error) { return nil, errors.New("no watcher") }
	application := app.New(loader, fs.New(mem), log, store.NewOpener(mem), noWatcher)
	return func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: log}, func() {}, nil
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/d", 0o755))
	require.NoError(t, afero.WriteFile(mem, "/d/a.txt", []byte("a"), 0o644))
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Debug(gomock.Any()).AnyTimes()

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"ls", "/d"}, stdout, stderr, provider(t, mem, log))

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "a.txt")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	failing := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, failing)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that failures are logged and yield exit code 1.
func TestRun_ExecutionError(t *testing.T) {
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).Times(1)

	exitCode := run(context.Background(), []string{"du", "/missing"}, new(bytes.Buffer), new(bytes.Buffer),
		provider(t, afero.NewMemMapFs(), log))
	assert.Equal(t, 1, exitCode)
}
