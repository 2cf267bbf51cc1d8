package config

// Rosterfile is the structure of roster.yaml. Omitted keys keep their defaults.
type Rosterfile struct {
	Browse BrowseDTO `yaml:"browse"`
	Recent RecentDTO `yaml:"recent"`
	Watch  WatchDTO  `yaml:"watch"`
	Log    LogDTO    `yaml:"log"`
}

// BrowseDTO is the browse section.
type BrowseDTO struct {
	ShowHidden  bool   `yaml:"showHidden"`
	FollowLinks bool   `yaml:"followLinks"`
	Recursive   bool   `yaml:"recursive"`
	Sort        string `yaml:"sort"`
	Descending  bool   `yaml:"descending"`
}

// RecentDTO is the recent section.
type RecentDTO struct {
	Name             string `yaml:"name"`
	MaxSize          int    `yaml:"maxSize"`
	CheckValidity    bool   `yaml:"checkValidity"`
	DetectDuplicates bool   `yaml:"detectDuplicates"`
	Store            string `yaml:"store"`
}

// WatchDTO is the watch section.
type WatchDTO struct {
	Debounce string `yaml:"debounce"`
}

// LogDTO is the log section.
type LogDTO struct {
	JSON    bool `yaml:"json"`
	Verbose bool `yaml:"verbose"`
}
