package domain

import "go.trai.ch/zerr"

var (
	// ErrEmptyPath is returned when a record without a path is inserted into a cache or list.
	ErrEmptyPath = zerr.New("record path is empty")

	// ErrPositionOutOfRange is returned when a positional operation addresses a missing index.
	ErrPositionOutOfRange = zerr.New("position out of range")

	// ErrWorkerBusy is returned when a worker is reconfigured or started while a run is in flight.
	ErrWorkerBusy = zerr.New("worker is running")

	// ErrUnknownCommand is returned when a worker is started with an unsupported command.
	ErrUnknownCommand = zerr.New("unknown worker command")

	// ErrNotConfigured is returned when a worker is started before it was configured.
	ErrNotConfigured = zerr.New("worker is not configured")

	// ErrCopyFailed is reported when the copy command cannot complete.
	ErrCopyFailed = zerr.New("copy failed")

	// ErrUnknownSortKey is returned when a sort key is not one of name, size or time.
	ErrUnknownSortKey = zerr.New("unknown sort key, expected 'name', 'size' or 'time'")

	// ErrInvalidMaxSize is returned when a bounded list is configured with a negative bound.
	ErrInvalidMaxSize = zerr.New("max size must not be negative")

	// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
	ErrConfigNotFound = zerr.New("could not find config file")

	// ErrInvalidDebounce is returned when the watch debounce is not a non-negative duration.
	ErrInvalidDebounce = zerr.New("watch debounce must be a non-negative duration")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrStoreReadFailed is returned when a persisted list cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read record list")

	// ErrStoreUnmarshalFailed is returned when a persisted list cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal record list")

	// ErrStoreMarshalFailed is returned when a list cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal record list")

	// ErrStoreWriteFailed is returned when a list cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write record list")

	// ErrStoreCreateFailed is returned when the store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create record store directory")

	// ErrNotADirectory is returned when a directory operation is given a file.
	ErrNotADirectory = zerr.New("not a directory")
)
