// Package server exposes the board over HTTP: status, masked config,
// the current queues as JSON or msgpack, the rendered PNG and a
// websocket stream of snapshots.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	writeTimeout    = 5 * time.Second
	pingInterval    = 30 * time.Second
	shutdownTimeout = 5 * time.Second

	mimeMsgpack = "application/msgpack"
)

// Server serves frames from a Holder
type Server struct {
	echo   *echo.Echo
	holder *Holder
	logger *slog.Logger
}

// New creates the server and registers its routes
func New(holder *Holder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		echo:   echo.New(),
		holder: holder,
		logger: logger.With("component", "http"),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         4 << 10,
		DisablePrintStack: true,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			)
			return nil
		},
	}))

	e.GET("/healthz", s.handleHealth)
	g := e.Group("/api")
	g.GET("/info", s.handleInfo)
	g.GET("/config", s.handleConfig)
	g.GET("/board", s.handleBoard)
	g.GET("/board.png", s.handleBoardPNG)
	g.GET("/ws", s.handleWS)

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is done
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("stopped")
	return nil
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func noData(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, errorBody("no data yet"))
}

func (s *Server) handleHealth(c echo.Context) error {
	_, ready := s.holder.Latest()
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"ready":  ready,
	})
}

func (s *Server) handleInfo(c echo.Context) error {
	f, ok := s.holder.Latest()
	if !ok {
		return noData(c)
	}
	return c.JSON(http.StatusOK, f.Snapshot.Info)
}

func (s *Server) handleConfig(c echo.Context) error {
	f, ok := s.holder.Latest()
	if !ok {
		return noData(c)
	}
	return c.JSON(http.StatusOK, f.Config)
}

func (s *Server) handleBoard(c echo.Context) error {
	f, ok := s.holder.Latest()
	if !ok {
		return noData(c)
	}

	if c.QueryParam("format") == "msgpack" || c.Request().Header.Get(echo.HeaderAccept) == mimeMsgpack {
		data, err := msgpack.Marshal(f.Snapshot)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, errorBody("failed to encode msgpack"))
		}
		return c.Blob(http.StatusOK, mimeMsgpack, data)
	}
	return c.JSON(http.StatusOK, f.Snapshot)
}

func (s *Server) handleBoardPNG(c echo.Context) error {
	f, ok := s.holder.Latest()
	if !ok {
		return noData(c)
	}
	if len(f.PNG) == 0 {
		return c.JSON(http.StatusNotFound, errorBody("no frame rendered"))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Blob(http.StatusOK, "image/png", f.PNG)
}

// Message is one websocket message
type Message struct {
	Type    string `json:"type"`
	Version uint64 `json:"version"`
	Payload any    `json:"payload"`
}

func (s *Server) handleWS(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return nil
	}
	defer func() { _ = conn.CloseNow() }()

	clientID := uuid.NewString()
	log := s.logger.With("client_id", clientID)
	log.Debug("websocket connected")

	updates, unsubscribe := s.holder.Subscribe()
	defer unsubscribe()

	// the stream is server to client only; CloseRead handles pings and close
	ctx := conn.CloseRead(c.Request().Context())

	var sent uint64
	if f, ok := s.holder.Latest(); ok {
		if err := s.send(ctx, conn, f); err != nil {
			return nil
		}
		sent = f.Version
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("websocket closed")
			return nil

		case <-updates:
			f, ok := s.holder.Latest()
			if !ok || f.Version == sent {
				continue
			}
			if err := s.send(ctx, conn, f); err != nil {
				log.Debug("websocket write failed", "error", err)
				return nil
			}
			sent = f.Version

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return nil
			}
		}
	}
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, f *Frame) error {
	data, err := json.Marshal(Message{Type: "snapshot", Version: f.Version, Payload: f.Snapshot})
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
