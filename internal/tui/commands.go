package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/metroboard/metro/internal/plugin"
)

const minFrameInterval = 50 * time.Millisecond

// frameTick returns a tea.Cmd that sends the next layout tick.
func frameTick(d time.Duration) tea.Cmd {
	if d < minFrameInterval {
		d = minFrameInterval
	}
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

// refreshTick returns a tea.Cmd that sends a tick after the refresh interval.
func refreshTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

// pageTick returns a tea.Cmd that sends a tick after the page display time.
func pageTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return pageTickMsg(t)
	})
}

// fetchArrivals fetches off the update loop. The outcome is applied to
// the plugin when the message arrives.
func fetchArrivals(p *plugin.Plugin, seq int) tea.Cmd {
	if !p.Enabled() {
		return nil
	}
	return func() tea.Msg {
		return fetchResultMsg{
			seq:     seq,
			outcome: p.Fetch(context.Background()),
		}
	}
}
