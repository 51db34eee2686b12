// Package plugin drives one arrival board: it fetches predictions, keeps the
// current queues and draws them on a canvas when the scheduler asks.
//
// A Plugin is owned by a single goroutine. Fetch may run elsewhere because
// it only reads immutable fields; its Outcome must be handed back to the
// owner and applied with Apply.
package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metroboard/metro/internal/board"
	"github.com/metroboard/metro/internal/config"
	"github.com/metroboard/metro/internal/display"
	"github.com/metroboard/metro/internal/models"
)

// ID identifies the plugin in status output
const ID = "wmata_metro"

// DefaultFetchTimeout bounds one predictions request
const DefaultFetchTimeout = 5 * time.Second

// Fetcher returns the raw predictions payload for a station code
type Fetcher interface {
	GetPredictionsRaw(ctx context.Context, stationCode string) (json.RawMessage, error)
}

// Plugin is one arrival board
type Plugin struct {
	cfg         *config.Config
	fetcher     Fetcher
	canvas      display.Canvas
	engine      *display.Engine
	logger      *slog.Logger
	now         func() time.Time
	timeout     time.Duration
	initFetch   bool
	stationCode string

	enabled   bool
	configErr error
	lastErr   error

	state       display.State
	single      board.Board
	directional board.Directional
	lastUpdate  time.Time
}

// Option configures a Plugin
type Option func(*Plugin)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(p *Plugin) {
		p.now = now
	}
}

// WithFetchTimeout overrides the per-fetch timeout
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Plugin) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithInitialFetch controls whether New fetches once before returning
func WithInitialFetch(enabled bool) Option {
	return func(p *Plugin) {
		p.initFetch = enabled
	}
}

// New creates a plugin. An invalid configuration or a missing fetcher
// leaves the plugin disabled; ValidateConfig reports why.
func New(ctx context.Context, cfg *config.Config, fetcher Fetcher, canvas display.Canvas, opts ...Option) *Plugin {
	p := &Plugin{
		cfg:         cfg,
		fetcher:     fetcher,
		canvas:      canvas,
		logger:      slog.Default(),
		now:         time.Now,
		timeout:     DefaultFetchTimeout,
		initFetch:   true,
		stationCode: cfg.StationCode(),
		single:      board.Empty(),
		directional: board.BuildDirectional(nil),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "plugin", "station", p.stationCode)

	if canvas != nil {
		p.engine = display.NewEngine(canvas,
			display.WithScrollSpeed(cfg.DisplayOptions.ScrollSpeed),
			display.WithScrolling(cfg.DisplayOptions.ScrollLongDestinations),
		)
	}

	p.configErr = p.ValidateConfig()
	if p.configErr == nil && fetcher == nil {
		p.configErr = &config.ConfigError{Field: "wmata_api_key", Message: "no API client"}
	}
	p.enabled = cfg.Enabled && p.configErr == nil

	if !p.enabled {
		p.logger.Warn("plugin disabled", "enabled_in_config", cfg.Enabled, "error", p.configErr)
		return p
	}

	p.logger.Info("plugin initialized",
		"station_name", cfg.Station,
		"layout", cfg.Layout,
		"refresh_interval", cfg.RefreshInterval,
	)

	if p.initFetch {
		p.Update(ctx)
		if p.lastErr != nil {
			p.logger.Warn("initial fetch failed, will retry on next update", "error", p.lastErr)
		}
	}
	return p
}

// Enabled reports whether the plugin fetches and draws
func (p *Plugin) Enabled() bool {
	return p.enabled
}

// ValidateConfig checks the configuration and logs every problem
func (p *Plugin) ValidateConfig() error {
	err := p.cfg.Validate()
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			p.logger.Error("invalid configuration", "error", e)
		}
	} else {
		p.logger.Error("invalid configuration", "error", err)
	}
	return err
}

// ConfigError returns why the plugin was disabled at construction, if
// the configuration was the reason
func (p *Plugin) ConfigError() error {
	return p.configErr
}

// LastError returns the error from the most recent update, if any
func (p *Plugin) LastError() error {
	return p.lastErr
}

// Outcome is the result of one fetch, ready to be applied
type Outcome struct {
	Result   board.Result
	FetchErr error
	At       time.Time
}

// Fetch requests predictions and classifies them. It does not modify the
// plugin and may run on any goroutine.
func (p *Plugin) Fetch(ctx context.Context) Outcome {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.fetcher.GetPredictionsRaw(ctx, p.stationCode)
	if err != nil {
		return Outcome{FetchErr: err, At: p.now()}
	}
	return Outcome{Result: board.FromPayload(raw), At: p.now()}
}

// Apply installs a fetch outcome. A failed fetch keeps the current
// queues; a malformed payload replaces them with ERROR rows.
func (p *Plugin) Apply(o Outcome) {
	switch {
	case o.FetchErr != nil:
		p.lastErr = o.FetchErr
		p.logger.Warn("fetch failed, keeping previous arrivals", "error", o.FetchErr)
	case o.Result.Err != nil:
		p.lastErr = o.Result.Err
		p.single = o.Result.Single
		p.directional = o.Result.Directional
		p.logger.Error("malformed predictions", "error", o.Result.Err)
	default:
		p.lastErr = nil
		p.single = o.Result.Single
		p.directional = o.Result.Directional
		p.lastUpdate = o.At
		p.logger.Info("arrivals updated",
			"trains", o.Result.Single.Real,
			"east", o.Result.Directional.East.Real,
			"west", o.Result.Directional.West.Real,
		)
	}
}

// Update fetches and applies new predictions. Errors are logged and kept
// in LastError; they never escape.
func (p *Plugin) Update(ctx context.Context) {
	if !p.enabled {
		return
	}
	p.Apply(p.Fetch(ctx))
}

// TrainData is one real arrival in DisplayData
type TrainData struct {
	Destination string `json:"destination"`
	Minutes     string `json:"minutes"`
	Line        string `json:"line"`
}

// DisplayData describes what a Display call drew
type DisplayData struct {
	Station string      `json:"station"`
	Drawn   bool        `json:"drawn"`
	Trains  []TrainData `json:"trains"`
}

// Display runs one layout tick and draws the result when something
// changed or force is set. Drawing failures are replaced by an error
// glyph and never escape.
func (p *Plugin) Display(force bool) DisplayData {
	out := DisplayData{Station: p.cfg.Station}
	if !p.enabled {
		return out
	}

	b, drawn, err := p.render(force)
	if err != nil {
		p.logger.Error("render failed", "error", err)
		if p.canvas != nil {
			if gerr := display.Apply(p.canvas, display.ErrorCommands()); gerr != nil {
				p.logger.Debug("error glyph failed", "error", gerr)
			}
		}
		p.state.Invalidate()
		return out
	}
	if !drawn {
		return out
	}

	out.Drawn = true
	for _, row := range b.RealRows() {
		out.Trains = append(out.Trains, TrainData{
			Destination: row.Destination,
			Minutes:     row.Minutes,
			Line:        row.Line,
		})
	}
	return out
}

func (p *Plugin) render(force bool) (b board.Board, drawn bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &display.RenderError{Stage: "layout", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if p.canvas == nil || p.engine == nil {
		return b, false, &display.RenderError{Stage: "layout", Err: display.ErrNoCanvas}
	}

	w, h := p.canvas.Width(), p.canvas.Height()
	var cmds []display.Command
	if p.cfg.Layout == config.LayoutPaged {
		b = p.directional.ForDirection(p.state.Page.Direction())
		cmds = p.engine.LayoutPage(&p.state, p.directional, w, h, force)
	} else {
		b = p.single
		cmds = p.engine.Layout(&p.state, p.single, p.cfg.Station, w, h, force)
	}
	if cmds == nil {
		return b, false, nil
	}
	if err := display.Apply(p.canvas, cmds); err != nil {
		return b, false, err
	}
	return b, true, nil
}

// NextPage switches the paged layout to the other direction
func (p *Plugin) NextPage() {
	p.state.Page = p.state.Page.Next()
	p.state.Invalidate()
}

// PrevPage switches the paged layout to the other direction
func (p *Plugin) PrevPage() {
	p.state.Page = p.state.Page.Prev()
	p.state.Invalidate()
}

// Page returns the current page
func (p *Plugin) Page() display.Page {
	return p.state.Page
}

// DisplayDuration is how long the scheduler should keep each page up
func (p *Plugin) DisplayDuration() time.Duration {
	return p.cfg.PageDuration()
}

// RefreshInterval is how often the scheduler should call Update
func (p *Plugin) RefreshInterval() time.Duration {
	return p.cfg.RefreshDuration()
}

// Info is the plugin status summary
type Info struct {
	PluginID         string     `json:"plugin_id"`
	Enabled          bool       `json:"enabled"`
	ReferenceStation string     `json:"reference_station"`
	StationCode      string     `json:"station_code"`
	TrainsCount      int        `json:"trains_count"`
	LastUpdate       *time.Time `json:"last_update"`
}

// Info returns the current status
func (p *Plugin) Info() Info {
	info := Info{
		PluginID:         ID,
		Enabled:          p.enabled,
		ReferenceStation: p.cfg.Station,
		StationCode:      p.stationCode,
		TrainsCount:      p.single.Real,
	}
	if !p.lastUpdate.IsZero() {
		t := p.lastUpdate
		info.LastUpdate = &t
	}
	return info
}

// MaskedConfig returns the configuration with the API key hidden
func (p *Plugin) MaskedConfig() config.Masked {
	return p.cfg.MaskedView()
}

// Board returns the single-queue board
func (p *Plugin) Board() board.Board {
	return p.single
}

// Directional returns the east and west boards
func (p *Plugin) Directional() board.Directional {
	return p.directional
}

// Snapshot is an immutable copy of the plugin's public state
type Snapshot struct {
	Info        Info              `json:"info"`
	Layout      string            `json:"layout"`
	Page        string            `json:"page"`
	Single      board.Board       `json:"single"`
	Directional board.Directional `json:"directional"`
}

// Snapshot copies the current state for readers on other goroutines
func (p *Plugin) Snapshot() Snapshot {
	return Snapshot{
		Info:        p.Info(),
		Layout:      p.cfg.Layout,
		Page:        p.state.Page.String(),
		Single:      cloneBoard(p.single),
		Directional: board.Directional{East: cloneBoard(p.directional.East), West: cloneBoard(p.directional.West)},
	}
}

func cloneBoard(b board.Board) board.Board {
	b.Rows = append([]models.TrainRow(nil), b.Rows...)
	return b
}
