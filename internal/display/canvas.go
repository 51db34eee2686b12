// Package display lays out arrival boards on small fixed-size pixel canvases.
package display

import (
	"errors"
	"fmt"

	"github.com/metroboard/metro/internal/models"
)

// FontSize selects one of the canvas fonts
type FontSize int

const (
	FontSmall FontSize = iota
	FontRegular
)

// Measurer reports the rendered width of text in pixels
type Measurer interface {
	TextWidth(text string, size FontSize) int
}

// Canvas is a display sink. Implementations perform the actual drawing;
// the layout engine only emits commands for them.
type Canvas interface {
	Measurer
	Width() int
	Height() int
	Clear()
	DrawText(text string, x, y int, c models.RGB, size FontSize)
	Present() error
}

// Op is the kind of a draw command
type Op int

const (
	OpClear Op = iota
	OpText
	OpPresent
)

func (o Op) String() string {
	switch o {
	case OpClear:
		return "clear"
	case OpText:
		return "text"
	case OpPresent:
		return "present"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Command is one draw call
type Command struct {
	Op    Op
	Text  string
	X, Y  int
	Color models.RGB
	Size  FontSize
}

// TextCommand builds a text draw command
func TextCommand(text string, x, y int, c models.RGB) Command {
	return Command{Op: OpText, Text: text, X: x, Y: y, Color: c, Size: FontSmall}
}

// Texts returns only the text commands
func Texts(cmds []Command) []Command {
	var out []Command
	for _, c := range cmds {
		if c.Op == OpText {
			out = append(out, c)
		}
	}
	return out
}

// ErrNoCanvas is returned when drawing without a canvas
var ErrNoCanvas = errors.New("no canvas")

// RenderError reports a failure while drawing to a canvas
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Apply executes commands against a canvas in order
func Apply(c Canvas, cmds []Command) error {
	if c == nil {
		return &RenderError{Stage: "apply", Err: ErrNoCanvas}
	}
	for _, cmd := range cmds {
		switch cmd.Op {
		case OpClear:
			c.Clear()
		case OpText:
			c.DrawText(cmd.Text, cmd.X, cmd.Y, cmd.Color, cmd.Size)
		case OpPresent:
			if err := c.Present(); err != nil {
				return &RenderError{Stage: "present", Err: err}
			}
		}
	}
	return nil
}

// ErrorCommands draws the error glyph used when normal rendering fails
func ErrorCommands() []Command {
	return []Command{
		{Op: OpClear},
		TextCommand(models.ErrorText, 5, 15, models.Red),
		{Op: OpPresent},
	}
}
