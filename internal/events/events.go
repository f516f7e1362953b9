// package events contains message types shared between the backend feed,
// the config watcher and the tui package.
package events

import "salesdesk/internal/config"

// DataChangedMsg is sent when the change feed reports that rows of a
// collection were created, updated or deleted.
type DataChangedMsg struct {
	Collection string
	IDs        []string
}

// FeedStatusMsg reports the change feed connection state.
type FeedStatusMsg struct {
	Connected bool
	Err       error
}

// ConfigReloadedMsg carries a reloaded config, or the error that kept the
// previous one in place.
type ConfigReloadedMsg struct {
	Config config.Config
	Err    error
}
