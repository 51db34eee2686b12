package output

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/metroboard/metro/internal/testutil"
)

func TestClearScreen(t *testing.T) {
	var buf bytes.Buffer
	ClearScreen(&buf)

	output := buf.String()
	testutil.AssertContains(t, output, "\033[2J")
	testutil.AssertContains(t, output, "\033[H")
}

func TestHideCursor(t *testing.T) {
	var buf bytes.Buffer
	HideCursor(&buf)
	testutil.AssertContains(t, buf.String(), "\033[?25l")
}

func TestShowCursor(t *testing.T) {
	var buf bytes.Buffer
	ShowCursor(&buf)
	testutil.AssertContains(t, buf.String(), "\033[?25h")
}

func TestScreen(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf)
	testutil.AssertTrue(t, strings.HasPrefix(buf.String(), "\033[?25l\033[2J"))

	buf.Reset()
	testutil.AssertNil(t, s.Frame("row one\nrow two"))
	testutil.AssertEqual(t, buf.String(), "\033[Hrow one\nrow two\n")
	testutil.AssertEqual(t, s.Frames(), 1)

	buf.Reset()
	s.Close()
	testutil.AssertEqual(t, buf.String(), "\033[?25h")
}

func TestSignalContext(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SignalContext(parent)
	defer stop()

	testutil.AssertNil(t, ctx.Err())
	cancel()
	<-ctx.Done()
	testutil.AssertError(t, ctx.Err())
}
