package domain

import "time"

// Config holds the resolved settings for browsing and for the recently-used list.
type Config struct {
	Browse BrowseConfig
	Recent RecentConfig
	Watch  WatchConfig
	Log    LogConfig
}

// BrowseConfig controls directory enumeration and ordering.
type BrowseConfig struct {
	ShowHidden  bool
	FollowLinks bool
	Recursive   bool
	Sort        SortKey
	Descending  bool
}

// RecentConfig controls the size-bounded list of recently used paths.
type RecentConfig struct {
	Name             string
	MaxSize          int
	CheckValidity    bool
	DetectDuplicates bool
	// StoreDir is the directory lists are persisted in. Empty selects the user config directory.
	StoreDir string
}

// WatchConfig controls the directory watcher.
type WatchConfig struct {
	Debounce time.Duration
}

// LogConfig controls logger output.
type LogConfig struct {
	JSON    bool
	Verbose bool
}

// DefaultConfig returns the settings used when no configuration file is found.
func DefaultConfig() Config {
	return Config{
		Browse: BrowseConfig{Sort: SortByName},
		Recent: RecentConfig{
			Name:             DefaultListName,
			MaxSize:          20,
			CheckValidity:    true,
			DetectDuplicates: true,
		},
		Watch: WatchConfig{Debounce: 200 * time.Millisecond},
	}
}
