package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const (
	escClear      = "\033[2J\033[H"
	escHome       = "\033[H"
	escHideCursor = "\033[?25l"
	escShowCursor = "\033[?25h"
)

// ClearScreen clears the terminal screen and moves cursor to top-left
func ClearScreen(w io.Writer) {
	_, _ = fmt.Fprint(w, escClear)
}

// HideCursor hides the terminal cursor
func HideCursor(w io.Writer) {
	_, _ = fmt.Fprint(w, escHideCursor)
}

// ShowCursor shows the terminal cursor
func ShowCursor(w io.Writer) {
	_, _ = fmt.Fprint(w, escShowCursor)
}

// Screen repaints a full frame in place on a terminal
type Screen struct {
	w      io.Writer
	frames int
}

// NewScreen hides the cursor and clears w
func NewScreen(w io.Writer) *Screen {
	HideCursor(w)
	ClearScreen(w)
	return &Screen{w: w}
}

// Frame draws one frame from the top-left corner
func (s *Screen) Frame(frame string) error {
	s.frames++
	_, err := fmt.Fprint(s.w, escHome+frame+"\n")
	return err
}

// Frames returns how many frames were drawn
func (s *Screen) Frames() int {
	return s.frames
}

// Close restores the cursor
func (s *Screen) Close() {
	ShowCursor(s.w)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
