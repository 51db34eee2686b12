package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/metroboard/metro/internal/api"
	"github.com/metroboard/metro/internal/board"
	"github.com/metroboard/metro/internal/cache"
	"github.com/metroboard/metro/internal/config"
	"github.com/metroboard/metro/internal/display"
	"github.com/metroboard/metro/internal/models"
	"github.com/metroboard/metro/internal/output"
	"github.com/metroboard/metro/internal/plugin"
	"github.com/metroboard/metro/internal/server"
	"github.com/metroboard/metro/internal/tui"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "metro",
	Short: "WMATA next-train arrival board for small pixel displays",
	Long: `metro shows the next Washington Metro trains at one station on a
small pixel display, in the terminal, or over HTTP.

Features:
  - Every predicted arrival in a single scrolling list
  - Paged layout alternating eastbound and westbound trains
  - Terminal, PNG and SSD1306 OLED output
  - HTTP status API with a websocket stream
  - Response caching on disk, in memory or in Redis

Quick Start:
  1. Launch TUI:               metro (or metro tui)
  2. List stations:            metro stations gallery
  3. Show arrivals:            metro arrivals --station "Gallery Place"
  4. Drive a display:          metro run --sink oled
  5. Serve the board:          metro serve --addr :8080

The API key is read from wmata_api_key in the config file or from the
WMATA_API_KEY environment variable.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is provided, launch TUI
		if len(args) == 0 {
			return runTUI(cmd, args)
		}
		return cmd.Help()
	},
}

// Global flags
var (
	flagConfig    string
	flagStation   string
	flagAPIKey    string
	flagLogLevel  string
	flagLogFormat string
	flagColor     string
	flagNoCache   bool
	flagAPIURL    string
)

// Command flags
var (
	flagJSON        bool
	flagRawJSON     bool
	flagDirectional bool
	flagWatch       bool
	flagSink        string
	flagPNGPath     string
	flagAddr        string
	flagLogFile     string
	flagYAML        bool
	flagExpiredOnly bool
)

func init() {
	rootCmd.AddCommand(arrivalsCmd)
	rootCmd.AddCommand(stationsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", config.DefaultPath(), "Config file")
	rootCmd.PersistentFlags().StringVarP(&flagStation, "station", "s", "", "Reference station name (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "WMATA API key (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: text, json")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Disable response caching")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "WMATA API base URL")
	_ = rootCmd.PersistentFlags().MarkHidden("api-url")

	arrivalsCmd.Flags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	arrivalsCmd.Flags().BoolVar(&flagRawJSON, "raw-json", false, "Output raw API response")
	arrivalsCmd.Flags().BoolVarP(&flagDirectional, "directional", "d", false, "Split arrivals into eastbound and westbound")
	arrivalsCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "Watch mode: refresh every refresh_interval")

	stationsCmd.Flags().BoolVar(&flagJSON, "json", false, "Output as JSON")

	runCmd.Flags().StringVar(&flagSink, "sink", "", "Output sink: terminal, png, oled (overrides config)")
	runCmd.Flags().StringVar(&flagPNGPath, "png-path", "", "PNG file written by the png sink (overrides config)")

	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides config)")

	tuiCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file instead of discarding them")

	configShowCmd.Flags().BoolVar(&flagYAML, "yaml", false, "Print the full configuration as YAML, API key included")

	cacheClearCmd.Flags().BoolVar(&flagExpiredOnly, "expired", false, "Only remove expired entries")
}

var arrivalsCmd = &cobra.Command{
	Use:   "arrivals",
	Short: "Show the next trains at the reference station",
	Long: `Show the next trains at the reference station.

All predicted arrivals are shown; the board is padded with "--" rows
up to three. Minutes are printed as "N MIN", ARR (arriving) or BRD
(boarding); unknown values show as "--".

Examples:
  metro arrivals                          # Configured station
  metro arrivals -s "Gallery Place"       # Another station
  metro arrivals --directional            # Eastbound and westbound
  metro arrivals --json                   # Board as JSON
  metro arrivals --watch                  # Refresh until Ctrl+C`,
	Args: cobra.NoArgs,
	RunE: runArrivals,
}

var stationsCmd = &cobra.Command{
	Use:   "stations [filter]",
	Short: "List known stations and their codes",
	Long: `List the stations the board can resolve by name.

Example:
  metro stations
  metro stations gallery`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStations,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the board on a display sink",
	Long: `Fetch arrivals every refresh_interval and draw the board on the
configured sink until interrupted.

Sinks:
  terminal     Half-block rendering of the pixel canvas
  png          Rewrite a PNG file on every change
  oled         SSD1306 panel on an I²C bus`,
	Args: cobra.NoArgs,
	RunE: runBoard,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board over HTTP",
	Long: `Run the board headless and serve it over HTTP.

Endpoints:
  GET /healthz          Liveness and readiness
  GET /api/info         Board status
  GET /api/config       Configuration with the API key masked
  GET /api/board        Current queues (JSON, or msgpack with ?format=msgpack)
  GET /api/board.png    Last rendered frame
  GET /api/ws           Websocket stream of board snapshots`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive full-screen TUI",
	Long: `Launch an interactive terminal preview of the board.

Keyboard:
  r            Refresh now
  ←/→          Switch page (paged layout)
  f            Force a redraw
  space        Pause the display
  /            Switch station
  ?            Toggle help
  q            Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and report every problem",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached API responses (file backend)",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

// loadConfig reads the config file and applies flag overrides. The file
// is required only when --config was given explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}
	if flagStation != "" {
		cfg.Station = flagStation
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Log.Format = flagLogFormat
	}
	if flagNoCache {
		cfg.Cache.Backend = cache.BackendNone
	}
	return cfg, nil
}

// createClient builds the WMATA client with the configured cache. A
// missing API key yields a nil fetcher so the plugin starts disabled.
func createClient(cfg *config.Config, logger *slog.Logger) (plugin.Fetcher, func() error, error) {
	client, closeCache, err := newAPIClient(cfg, logger)
	if client == nil {
		return nil, closeCache, err
	}
	return client, closeCache, err
}

// newAPIClient returns a nil client without error when no API key is set
func newAPIClient(cfg *config.Config, logger *slog.Logger) (*api.Client, func() error, error) {
	store, closeCache, err := cache.Open(cfg.Cache.Options(), logger)
	if err != nil {
		return nil, closeCache, fmt.Errorf("failed to open cache: %w", err)
	}

	opts := []api.ClientOption{
		api.WithLogger(logger),
		api.WithTimeout(plugin.DefaultFetchTimeout),
	}
	if flagAPIURL != "" {
		opts = append(opts, api.WithBaseURL(flagAPIURL))
	}
	if store != nil {
		opts = append(opts, api.WithCache(store))
	}

	client, err := api.NewClient(cfg.APIKey, opts...)
	if err != nil {
		logger.Warn("no API client", "error", err)
		return nil, closeCache, nil
	}
	return client, closeCache, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// getColorMode returns the color mode based on flag
func getColorMode() output.ColorMode {
	return output.ParseColorMode(flagColor)
}

func runArrivals(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	client, closeCache, err := newAPIClient(cfg, logger)
	defer func() { _ = closeCache() }()
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("no API key: set wmata_api_key in %s or %s", flagConfig, config.EnvAPIKey)
	}

	ctx, stop := output.SignalContext(commandContext(cmd))
	defer stop()

	code := cfg.StationCode()
	fetchAndRender := func(w io.Writer) error {
		fetchCtx, cancel := context.WithTimeout(ctx, plugin.DefaultFetchTimeout)
		defer cancel()

		if flagRawJSON {
			raw, err := client.GetPredictionsRaw(fetchCtx, code)
			if err != nil {
				return err
			}
			return printPrettyJSON(w, raw)
		}

		res, err := fetchBoards(fetchCtx, client, code)
		if err != nil {
			return err
		}
		if flagJSON {
			if flagDirectional {
				return output.RenderJSON(w, res.Directional)
			}
			return output.RenderJSON(w, res.Single)
		}

		opts := output.BoardOptions{
			Colors:   output.NewColors(getColorMode()),
			ShowLine: cfg.DisplayOptions.ShowLineAbbreviation,
		}
		if flagDirectional {
			output.RenderDirectional(w, cfg.Station, res.Directional, opts)
		} else {
			output.RenderBoard(w, cfg.Station, res.Single, opts)
		}
		return res.Err
	}

	if flagWatch {
		return runWatch(ctx, cfg.RefreshDuration(), fetchAndRender)
	}
	return fetchAndRender(os.Stdout)
}

// fetchBoards classifies one station's arrivals in both layouts. A payload
// that does not decode gives the ERROR boards with Err set; any other
// failure is returned as is.
func fetchBoards(ctx context.Context, client *api.Client, code string) (board.Result, error) {
	records, err := client.GetPredictions(ctx, code)
	var perr *board.ParseError
	if errors.As(err, &perr) {
		return board.Result{Single: board.Error(), Directional: board.ErrorDirectional(), Err: err}, nil
	}
	if err != nil {
		return board.Result{}, err
	}
	return board.FromRecords(records), nil
}

// runWatch redraws the arrivals every interval until ctx is done
func runWatch(ctx context.Context, interval time.Duration, fetchAndRender func(io.Writer) error) error {
	screen := output.NewScreen(os.Stdout)
	defer screen.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		var sb strings.Builder
		_, _ = fmt.Fprintf(&sb, "Last update: %s | Next refresh in %s | Press Ctrl+C to exit\n\n",
			time.Now().Format("15:04:05"), interval)
		if err := fetchAndRender(&sb); err != nil {
			_, _ = fmt.Fprintf(&sb, "Error: %v\n", err)
		}
		output.ClearScreen(os.Stdout)
		_ = screen.Frame(strings.TrimRight(sb.String(), "\n"))

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}

func runStations(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	stations := output.FilterStations(models.Stations(), query)

	if flagJSON {
		return output.RenderJSON(os.Stdout, stations)
	}
	output.RenderStations(os.Stdout, stations, output.NewColors(getColorMode()))
	return nil
}

func runBoard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flagSink != "" {
		cfg.Display.Sink = flagSink
	}
	if flagPNGPath != "" {
		cfg.Display.PNGPath = flagPNGPath
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	fetcher, closeCache, err := createClient(cfg, logger)
	defer func() { _ = closeCache() }()
	if err != nil {
		return err
	}

	present, closeSink, err := openSink(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeSink() }()

	bitmap, err := display.NewBitmap(cfg.Display.Width, cfg.Display.Height, display.WithPresent(present))
	if err != nil {
		return err
	}

	ctx, stop := output.SignalContext(commandContext(cmd))
	defer stop()

	p := plugin.New(ctx, cfg, fetcher, bitmap, plugin.WithLogger(logger), plugin.WithInitialFetch(false))
	if !p.Enabled() {
		if cerr := p.ConfigError(); cerr != nil {
			return cerr
		}
		logger.Info("board disabled in config")
		return nil
	}

	return newRunner(cfg, p, logger).Run(ctx)
}

// openSink returns the present function for the configured sink and a
// function releasing it
func openSink(cfg *config.Config, logger *slog.Logger) (display.PresentFunc, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Display.Sink {
	case config.SinkTerminal:
		screen := output.NewScreen(os.Stdout)
		present := func(img *image.RGBA) error {
			return screen.Frame(display.RenderANSI(img))
		}
		return present, func() error { screen.Close(); return nil }, nil

	case config.SinkPNG:
		path := cfg.Display.PNGPath
		logger.Info("writing frames", "sink", config.SinkPNG, "path", path)
		return func(img *image.RGBA) error { return writePNGFile(path, img) }, noop, nil

	case config.SinkOLED:
		oled, err := display.OpenOLED(cfg.Display.I2CBus, cfg.Display.Width, cfg.Display.Height)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("oled opened", "bus", cfg.Display.I2CBus)
		return oled.Present, oled.Close, nil
	}
	return nil, noop, &config.ConfigError{Field: "display.sink", Message: fmt.Sprintf("unknown sink %q", cfg.Display.Sink)}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	fetcher, closeCache, err := createClient(cfg, logger)
	defer func() { _ = closeCache() }()
	if err != nil {
		return err
	}

	bitmap, err := display.NewBitmap(cfg.Display.Width, cfg.Display.Height)
	if err != nil {
		return err
	}

	ctx, stop := output.SignalContext(commandContext(cmd))
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := plugin.New(ctx, cfg, fetcher, bitmap, plugin.WithLogger(logger), plugin.WithInitialFetch(false))
	holder := server.NewHolder()
	srv := server.New(holder, logger)

	r := newRunner(cfg, p, logger)
	r.onChange = func() {
		holder.Publish(p.Snapshot(), p.MaskedConfig(), encodePNG(bitmap, logger), time.Now())
	}
	// a disabled board still answers /api/info and /api/config
	r.onChange()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx, cfg.Server.Addr)
		cancel()
	}()

	if p.Enabled() {
		if err := r.Run(ctx); err != nil {
			return err
		}
	} else {
		<-ctx.Done()
	}
	return <-errCh
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// stderr would tear the alt screen
	logOut := io.Discard
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		logOut = f
	}
	logger := cfg.Log.NewLogger(logOut)

	fetcher, closeCache, err := createClient(cfg, logger)
	defer func() { _ = closeCache() }()
	if err != nil {
		return err
	}

	bitmap, err := display.NewBitmap(cfg.Display.Width, cfg.Display.Height)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	factory := func(c *config.Config) *plugin.Plugin {
		return plugin.New(ctx, c, fetcher, bitmap, plugin.WithLogger(logger), plugin.WithInitialFetch(false))
	}

	model := tui.New(cfg, bitmap, factory)
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flagYAML {
		return cfg.Write(os.Stdout)
	}
	return output.RenderJSON(os.Stdout, cfg.MaskedView())
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		colors := output.NewColors(getColorMode())
		for _, line := range strings.Split(err.Error(), "\n") {
			_, _ = fmt.Fprintln(os.Stderr, colors.Error("%s", line))
		}
		return errors.New("configuration is invalid")
	}
	fmt.Printf("configuration OK (station %s, code %s)\n", display.HeaderTitle(cfg.Station), cfg.StationCode())
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Cache.Backend != cache.BackendFile {
		return fmt.Errorf("cache clear only supports the %q backend, configured: %q", cache.BackendFile, cfg.Cache.Backend)
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		dir = cache.DefaultCacheDir()
	}
	fc, err := cache.NewFileCache(dir, cfg.Cache.TTL)
	if err != nil {
		return err
	}

	if flagExpiredOnly {
		if err := fc.Cleanup(); err != nil {
			return err
		}
		fmt.Printf("Removed expired entries from %s\n", fc.Dir())
		return nil
	}
	if err := fc.Clear(); err != nil {
		return err
	}
	fmt.Printf("Cleared %s\n", fc.Dir())
	return nil
}
