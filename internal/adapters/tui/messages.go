package tui

// MsgEvents is sent when worker events are waiting to be processed.
type MsgEvents struct{}

// MsgChanged is sent when the browsed directory changed on disk.
type MsgChanged struct{}

// MsgError is sent when a browser operation fails.
type MsgError struct {
	Err error
}
