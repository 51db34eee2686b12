// Package tui emulates the LED board in a terminal with Bubble Tea.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/metroboard/metro/internal/config"
	"github.com/metroboard/metro/internal/display"
	"github.com/metroboard/metro/internal/plugin"
)

// PluginFactory builds a plugin for a configuration. The TUI calls it
// again when the station changes.
type PluginFactory func(cfg *config.Config) *plugin.Plugin

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	cfg       *config.Config
	plugin    *plugin.Plugin
	newPlugin PluginFactory
	bitmap    *display.Bitmap
	now       func() time.Time

	width  int
	height int

	keys     keyMap
	help     help.Model
	input    textinput.Model
	editing  bool
	inputErr string

	// frame is the last rendered bitmap as ANSI half-blocks
	frame    string
	fetching bool
	fetchSeq int
	paused   bool
}

// New creates a new TUI model. The plugin must draw onto bitmap.
func New(cfg *config.Config, bitmap *display.Bitmap, newPlugin PluginFactory) Model {
	ti := textinput.New()
	ti.Placeholder = "Station name..."
	ti.CharLimit = 64
	ti.Width = 32

	return Model{
		cfg:       cfg,
		plugin:    newPlugin(cfg),
		newPlugin: newPlugin,
		bitmap:    bitmap,
		now:       time.Now,
		keys:      defaultKeyMap(),
		help:      help.New(),
		input:     ti,
	}
}

func (m Model) paged() bool {
	return m.cfg.Layout == config.LayoutPaged
}

// Init starts the first fetch and the tickers.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		fetchArrivals(m.plugin, m.fetchSeq),
		frameTick(m.cfg.Display.FrameInterval),
		refreshTick(m.plugin.RefreshInterval()),
	}
	if m.paged() {
		cmds = append(cmds, pageTick(m.plugin.DisplayDuration()))
	}
	return tea.Batch(cmds...)
}
