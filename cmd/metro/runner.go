package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/metroboard/metro/internal/config"
	"github.com/metroboard/metro/internal/display"
	"github.com/metroboard/metro/internal/plugin"
)

const minFrameInterval = 50 * time.Millisecond

// runner owns a plugin and drives it from three clocks: refresh fetches
// predictions, frame advances the layout and page flips the paged layout.
// Fetches run on their own goroutine; everything else touches the plugin
// from the Run goroutine only.
type runner struct {
	cfg    *config.Config
	plugin *plugin.Plugin
	logger *slog.Logger

	// onChange is called after new data is applied and after each drawn frame
	onChange func()
}

func newRunner(cfg *config.Config, p *plugin.Plugin, logger *slog.Logger) *runner {
	return &runner{
		cfg:    cfg,
		plugin: p,
		logger: logger.With("component", "runner"),
	}
}

func (r *runner) frameInterval() time.Duration {
	if d := r.cfg.Display.FrameInterval; d >= minFrameInterval {
		return d
	}
	return minFrameInterval
}

// Run fetches immediately and then loops until ctx is done
func (r *runner) Run(ctx context.Context) error {
	results := make(chan plugin.Outcome, 1)
	fetching := false
	startFetch := func() {
		if fetching || !r.plugin.Enabled() {
			return
		}
		fetching = true
		go func() { results <- r.plugin.Fetch(ctx) }()
	}

	frame := time.NewTicker(r.frameInterval())
	defer frame.Stop()
	refresh := time.NewTicker(r.plugin.RefreshInterval())
	defer refresh.Stop()

	var page <-chan time.Time
	if r.cfg.Layout == config.LayoutPaged {
		t := time.NewTicker(r.plugin.DisplayDuration())
		defer t.Stop()
		page = t.C
	}

	r.logger.Info("board running",
		"frame_interval", r.frameInterval(),
		"refresh_interval", r.plugin.RefreshInterval(),
		"layout", r.cfg.Layout,
	)

	startFetch()
	r.draw(true)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("board stopped")
			return nil

		case o := <-results:
			fetching = false
			r.plugin.Apply(o)
			r.changed()
			r.draw(false)

		case <-refresh.C:
			if fetching {
				r.logger.Debug("previous fetch still running, skipping refresh")
			}
			startFetch()

		case <-frame.C:
			r.draw(false)

		case <-page:
			r.plugin.NextPage()
			r.logger.Debug("page switched", "page", r.plugin.Page().String())
			r.draw(false)
		}
	}
}

func (r *runner) draw(force bool) {
	if d := r.plugin.Display(force); d.Drawn {
		r.changed()
	}
}

func (r *runner) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}

// writePNGFile replaces path with the frame. The file is written next to
// path and renamed so readers never see a partial image.
func writePNGFile(path string, img image.Image) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".metro-*.png")
	if err != nil {
		return &display.RenderError{Stage: "present", Err: err}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := png.Encode(tmp, img); err != nil {
		_ = tmp.Close()
		return &display.RenderError{Stage: "present", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &display.RenderError{Stage: "present", Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &display.RenderError{Stage: "present", Err: err}
	}
	return nil
}

// encodePNG returns the current frame as PNG, or nil when encoding fails
func encodePNG(b *display.Bitmap, logger *slog.Logger) []byte {
	var buf bytes.Buffer
	if err := b.WritePNG(&buf); err != nil {
		logger.Warn("encode frame failed", "error", err)
		return nil
	}
	return buf.Bytes()
}

func printPrettyJSON(w io.Writer, data []byte) error {
	var prettyJSON any
	if err := json.Unmarshal(data, &prettyJSON); err != nil {
		// If we can't parse it, just print raw
		_, _ = fmt.Fprintln(w, string(data))
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(prettyJSON)
}
