// Package config loads roster.yaml.
package config

import (
	"errors"
	iofs "io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader for YAML files.
type Loader struct {
	fs     afero.Fs
	logger ports.Logger
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a Loader reading from fs.
func NewLoader(fs afero.Fs, logger ports.Logger) *Loader {
	return &Loader{fs: fs, logger: logger}
}

// Load returns the configuration for cwd. An explicit path must exist. Without one, the
// nearest roster.yaml in cwd or its parents is used, and the defaults when there is none.
func (l *Loader) Load(cwd, explicit string) (domain.Config, error) {
	path := explicit
	if path == "" {
		found, ok := l.find(cwd)
		if !ok {
			l.logger.Debug("no " + domain.ConfigFileName + " found, using defaults")
			return domain.DefaultConfig(), nil
		}
		path = found
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	l.logger.Debug("loading configuration from " + path)
	return l.load(path)
}

// find walks from cwd up to the filesystem root looking for the config file.
func (l *Loader) find(cwd string) (string, bool) {
	dir := filepath.Clean(cwd)
	for {
		candidate := filepath.Join(dir, domain.ConfigFileName)
		if info, err := l.fs.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (l *Loader) load(path string) (domain.Config, error) {
	file := defaultRosterfile()
	if err := readAndUnmarshalYAML(l.fs, path, &file); err != nil {
		return domain.Config{}, err
	}
	cfg, err := file.toDomain(filepath.Dir(path))
	if err != nil {
		return domain.Config{}, zerr.With(err, "config", path)
	}
	return cfg, nil
}

func readAndUnmarshalYAML[T any](fs afero.Fs, path string, target *T) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return zerr.With(domain.ErrConfigNotFound, "path", path)
		}
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	return nil
}

func defaultRosterfile() Rosterfile {
	d := domain.DefaultConfig()
	return Rosterfile{
		Browse: BrowseDTO{
			ShowHidden:  d.Browse.ShowHidden,
			FollowLinks: d.Browse.FollowLinks,
			Recursive:   d.Browse.Recursive,
			Sort:        string(d.Browse.Sort),
			Descending:  d.Browse.Descending,
		},
		Recent: RecentDTO{
			Name:             d.Recent.Name,
			MaxSize:          d.Recent.MaxSize,
			CheckValidity:    d.Recent.CheckValidity,
			DetectDuplicates: d.Recent.DetectDuplicates,
		},
		Watch: WatchDTO{Debounce: d.Watch.Debounce.String()},
	}
}

// toDomain validates the file and resolves a relative store directory against configDir.
func (f *Rosterfile) toDomain(configDir string) (domain.Config, error) {
	sortKey, err := domain.ParseSortKey(f.Browse.Sort)
	if err != nil {
		return domain.Config{}, err
	}
	if f.Recent.MaxSize < 0 {
		return domain.Config{}, zerr.With(domain.ErrInvalidMaxSize, "max_size", f.Recent.MaxSize)
	}
	debounce, err := time.ParseDuration(f.Watch.Debounce)
	if err != nil || debounce < 0 {
		return domain.Config{}, zerr.With(domain.ErrInvalidDebounce, "debounce", f.Watch.Debounce)
	}

	name := f.Recent.Name
	if name == "" {
		name = domain.DefaultListName
	}
	store := f.Recent.Store
	if store != "" && !filepath.IsAbs(store) {
		store = filepath.Join(configDir, store)
	}

	return domain.Config{
		Browse: domain.BrowseConfig{
			ShowHidden:  f.Browse.ShowHidden,
			FollowLinks: f.Browse.FollowLinks,
			Recursive:   f.Browse.Recursive,
			Sort:        sortKey,
			Descending:  f.Browse.Descending,
		},
		Recent: domain.RecentConfig{
			Name:             name,
			MaxSize:          f.Recent.MaxSize,
			CheckValidity:    f.Recent.CheckValidity,
			DetectDuplicates: f.Recent.DetectDuplicates,
			StoreDir:         store,
		},
		Watch: domain.WatchConfig{Debounce: debounce},
		Log: domain.LogConfig{
			JSON:    f.Log.JSON,
			Verbose: f.Log.Verbose,
		},
	}, nil
}
