package tui

import (
	"time"

	"github.com/metroboard/metro/internal/plugin"
)

// frameTickMsg drives one layout tick.
type frameTickMsg time.Time

// refreshTickMsg is sent every refresh interval.
type refreshTickMsg time.Time

// pageTickMsg switches pages in the paged layout.
type pageTickMsg time.Time

// fetchResultMsg carries a fetch outcome back to the update loop.
// seq is used for stale-result detection after a station change.
type fetchResultMsg struct {
	seq     int
	outcome plugin.Outcome
}
