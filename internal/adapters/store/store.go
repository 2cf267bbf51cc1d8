// Package store persists named record lists as YAML files.
package store

import (
	"errors"
	iofs "io/fs"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var flagNames = []struct {
	flag domain.Flags
	name string
}{
	{domain.IsFolder, "folder"},
	{domain.IsLink, "link"},
	{domain.IsHidden, "hidden"},
}

// Store implements ports.RecordStore with one YAML file per list in a directory.
type Store struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

var _ ports.RecordStore = (*Store)(nil)

// New creates a Store writing below dir.
func New(fs afero.Fs, dir string) *Store {
	return &Store{
		fs:  fs,
		dir: filepath.Clean(dir),
	}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads the list stored under name. It returns nil, nil when the list was never saved.
func (s *Store) Load(name string) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(name)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var file ListFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "path", path)
	}

	records := make([]domain.Record, 0, len(file.Records))
	for _, dto := range file.Records {
		if dto.Path == "" {
			continue
		}
		records = append(records, fromDTO(dto))
	}
	return records, nil
}

// Save replaces the list stored under name. The file is written to a temporary name
// first and renamed into place.
func (s *Store) Save(name string, records []domain.Record) error {
	file := ListFile{
		Version: listVersion,
		Name:    name,
		Records: make([]RecordDTO, 0, len(records)),
	}
	for _, r := range records {
		file.Records = append(file.Records, toDTO(r))
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", s.dir)
	}

	path := s.path(name)
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", tmp)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, domain.ListFileName(filepath.Base(name)))
}

func toDTO(r domain.Record) RecordDTO {
	dto := RecordDTO{
		Path:      r.Path.String(),
		Timestamp: r.Timestamp.UTC(),
		Valid:     r.Valid,
	}
	for _, f := range flagNames {
		if r.Flags.Has(f.flag) {
			dto.Flags = append(dto.Flags, f.name)
		}
	}
	if len(r.Properties) > 0 {
		dto.Properties = make(map[string]string, len(r.Properties))
		for id, v := range r.Properties {
			if name, ok := domain.PropertyName(id); ok {
				dto.Properties[name] = v
			}
		}
	}
	return dto
}

func fromDTO(dto RecordDTO) domain.Record {
	r := domain.NewRecord(dto.Path)
	r.Timestamp = dto.Timestamp
	r.Valid = dto.Valid
	for _, name := range dto.Flags {
		for _, f := range flagNames {
			if f.name == name {
				r.Flags |= f.flag
			}
		}
	}
	if len(dto.Properties) > 0 {
		r.Properties = make(domain.Properties, len(dto.Properties))
		for name, v := range dto.Properties {
			r.Properties[domain.Property(name)] = v
		}
	}
	return r
}
