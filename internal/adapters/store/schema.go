package store

import "time"

// listVersion is the current on-disk format of a persisted list.
const listVersion = "1"

// ListFile is the YAML document a named list is persisted as.
type ListFile struct {
	Version string      `yaml:"version"`
	Name    string      `yaml:"name"`
	Records []RecordDTO `yaml:"records"`
}

// RecordDTO is one persisted record. Properties are keyed by name because property
// ids are only stable within a process.
type RecordDTO struct {
	Path       string            `yaml:"path"`
	Timestamp  time.Time         `yaml:"timestamp"`
	Valid      bool              `yaml:"valid"`
	Flags      []string          `yaml:"flags,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty"`
}
