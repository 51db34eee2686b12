package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/metroboard/metro/internal/display"
	"github.com/metroboard/metro/internal/models"
)

// Update handles all messages and key events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case frameTickMsg:
		return m.handleFrameTick()

	case refreshTickMsg:
		return m.handleRefreshTick()

	case pageTickMsg:
		if m.paged() {
			m.plugin.NextPage()
		}
		return m, pageTick(m.plugin.DisplayDuration())

	case fetchResultMsg:
		return m.handleFetchResult(msg)

	case tea.KeyMsg:
		if m.editing {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleFrameTick() (tea.Model, tea.Cmd) {
	if !m.paused || m.frame == "" {
		m.draw(false)
	}
	return m, frameTick(m.cfg.Display.FrameInterval)
}

// draw runs one layout tick and refreshes the ANSI frame when the
// bitmap changed.
func (m *Model) draw(force bool) {
	out := m.plugin.Display(force)
	if out.Drawn || m.frame == "" {
		m.frame = display.RenderANSI(m.bitmap.Image())
	}
}

func (m Model) handleRefreshTick() (tea.Model, tea.Cmd) {
	next := refreshTick(m.plugin.RefreshInterval())
	if m.fetching {
		return m, next
	}
	m.fetching = m.plugin.Enabled()
	return m, tea.Batch(fetchArrivals(m.plugin, m.fetchSeq), next)
}

func (m Model) handleFetchResult(msg fetchResultMsg) (tea.Model, tea.Cmd) {
	// Ignore results for a previous station
	if msg.seq != m.fetchSeq {
		return m, nil
	}
	m.fetching = false
	m.plugin.Apply(msg.outcome)
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		if m.fetching {
			return m, nil
		}
		m.fetching = m.plugin.Enabled()
		return m, fetchArrivals(m.plugin, m.fetchSeq)

	case key.Matches(msg, m.keys.NextPage):
		m.plugin.NextPage()
		m.draw(false)

	case key.Matches(msg, m.keys.PrevPage):
		m.plugin.PrevPage()
		m.draw(false)

	case key.Matches(msg, m.keys.Redraw):
		m.draw(true)

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused

	case key.Matches(msg, m.keys.Station):
		m.editing = true
		m.inputErr = ""
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		code, ok := models.LookupStationCode(name)
		if !ok {
			m.inputErr = fmt.Sprintf("unknown station %q", name)
			return m, nil
		}
		m.editing = false
		m.input.Blur()
		return m, m.switchStation(name, code)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// switchStation replaces the plugin with one for another station.
// In-flight fetches for the old station are dropped by sequence.
func (m *Model) switchStation(name, code string) tea.Cmd {
	cfg := *m.cfg
	if canonical, ok := models.StationName(code); ok {
		name = canonical
	}
	cfg.Station = name
	m.cfg = &cfg

	m.fetchSeq++
	m.plugin = m.newPlugin(m.cfg)
	m.bitmap.Clear()
	m.frame = ""
	m.draw(true)

	m.fetching = m.plugin.Enabled()
	return fetchArrivals(m.plugin, m.fetchSeq)
}
