package domain

import "path/filepath"

const (
	// AppName is the name used for configuration and data directories.
	AppName = "roster"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "roster.yaml"

	// ListsDirName is the name of the directory holding persisted record lists.
	ListsDirName = "lists"

	// DefaultListName is the name of the recently-used list.
	DefaultListName = "recent"

	// ParentEntryName is the display name of the navigator pseudo-entry.
	ParentEntryName = ".."

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// ListFileName returns the file name a named list is persisted under.
func ListFileName(name string) string {
	return name + ".yaml"
}

// DefaultListsPath returns the lists directory below the given base directory.
func DefaultListsPath(base string) string {
	return filepath.Join(base, AppName, ListsDirName)
}
