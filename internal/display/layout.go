package display

import (
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/metroboard/metro/internal/board"
	"github.com/metroboard/metro/internal/models"
)

// Layout constants, in pixels
const (
	HeaderHeight = 7
	RowHeight    = 8
	BottomMargin = 2
	RightMargin  = 2
	// DestinationSpacing is the gap kept between destination and minutes
	DestinationSpacing = 2
	// HeaderInset is subtracted from the canvas width to get the header width
	HeaderInset = 10
	// MinVisibleRows is the floor for the number of rows considered visible
	MinVisibleRows = 3
	// DefaultScrollSpeed is the scroll step added per layout call
	DefaultScrollSpeed = 7
)

// Ellipsis replaces the tail of truncated text
const Ellipsis = ".."

// State carries layout state between calls. It is owned by the caller
// and must not be shared between goroutines.
type State struct {
	ScrollStep  int
	Offset      int
	Fingerprint uint64
	HasRendered bool
	LastOffset  int
	Page        Page
}

// Invalidate forces the next layout call to draw
func (s *State) Invalidate() {
	s.HasRendered = false
}

// Engine computes draw commands for a board
type Engine struct {
	measure     Measurer
	scrollSpeed int
	noScroll    bool
}

// Option configures an Engine
type Option func(*Engine)

// WithScrollSpeed sets the scroll step in pixels per layout call
func WithScrollSpeed(px int) Option {
	return func(e *Engine) {
		if px > 0 {
			e.scrollSpeed = px
		}
	}
}

// WithScrolling turns scrolling of long queues on or off. With scrolling
// off, rows that do not fit are simply not drawn.
func WithScrolling(enabled bool) Option {
	return func(e *Engine) {
		e.noScroll = !enabled
	}
}

// NewEngine creates a layout engine measuring text with m
func NewEngine(m Measurer, opts ...Option) *Engine {
	e := &Engine{measure: m, scrollSpeed: DefaultScrollSpeed}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxVisibleRows returns how many rows fit below the header
func MaxVisibleRows(height int) int {
	return max(MinVisibleRows, (height-HeaderHeight-BottomMargin)/RowHeight)
}

// Layout draws a single scrolling queue under a station header.
// Each call is one tick. It returns nil when nothing visible changed
// and force is false.
func (e *Engine) Layout(st *State, b board.Board, station string, width, height int, force bool) []Command {
	if !e.noScroll && b.Real > MaxVisibleRows(height) {
		st.ScrollStep += e.scrollSpeed
		visible := height - HeaderHeight - BottomMargin
		maxScroll := max(0, b.Real*RowHeight-visible)
		st.Offset = st.ScrollStep % (maxScroll + RowHeight)
	} else {
		st.ScrollStep = 0
		st.Offset = 0
	}
	offset := st.Offset

	header := Truncate(HeaderTitle(station), width-HeaderInset, FontSmall, e.measure)

	var visible []models.TrainRow
	var ys []int
	for i, row := range b.Rows {
		y := HeaderHeight + 1 + i*RowHeight - offset
		if y+RowHeight < 0 || y > height {
			continue
		}
		visible = append(visible, row)
		ys = append(ys, y)
	}

	fp := fingerprint(header, visible)
	if !e.changed(st, fp, offset, force) {
		return nil
	}

	cmds := []Command{{Op: OpClear}, TextCommand(header, 0, -offset, models.White)}
	if allNoData(b.Rows) {
		cmds = append(cmds, TextCommand(models.NoDataText, 5, HeaderHeight-offset, models.Orange))
	} else {
		for i, row := range visible {
			cmds = append(cmds, e.row(row, ys[i], width)...)
		}
	}

	cmds = append(cmds, Command{Op: OpPresent})
	e.commit(st, fp, offset)
	return cmds
}

// LayoutPage draws the current page of a directional board under a
// fixed direction header. Rows never scroll.
func (e *Engine) LayoutPage(st *State, d board.Directional, width, height int, force bool) []Command {
	st.ScrollStep = 0
	st.Offset = 0

	b := d.ForDirection(st.Page.Direction())
	header := Truncate(st.Page.String(), width-HeaderInset, FontSmall, e.measure)
	rows := b.Rows[:min(board.Slots, len(b.Rows))]
	fp := fingerprint(header, rows)
	if !e.changed(st, fp, 0, force) {
		return nil
	}

	cmds := []Command{{Op: OpClear}, TextCommand(header, 0, 0, models.White)}
	for i, row := range rows {
		y := HeaderHeight + 1 + i*RowHeight
		if y > height {
			break
		}
		cmds = append(cmds, e.row(row, y, width)...)
	}
	cmds = append(cmds, Command{Op: OpPresent})
	e.commit(st, fp, 0)
	return cmds
}

func (e *Engine) changed(st *State, fp uint64, offset int, force bool) bool {
	return force || !st.HasRendered || fp != st.Fingerprint || offset != st.LastOffset
}

func (e *Engine) commit(st *State, fp uint64, offset int) {
	st.Fingerprint = fp
	st.LastOffset = offset
	st.HasRendered = true
}

func (e *Engine) row(row models.TrainRow, y, width int) []Command {
	minutesX := width - e.measure.TextWidth(row.Minutes, FontSmall) - RightMargin
	dest := Truncate(row.Destination, minutesX-DestinationSpacing, FontSmall, e.measure)
	return []Command{
		TextCommand(dest, 0, y, row.Color),
		TextCommand(row.Minutes, minutesX, y, row.Color),
	}
}

// Truncate shortens text one rune at a time until it fits maxWidth, then
// replaces the last two runes with "..". Text of two runes or fewer after
// shortening becomes "..".
func Truncate(text string, maxWidth int, size FontSize, m Measurer) string {
	if m.TextWidth(text, size) <= maxWidth {
		return text
	}
	runes := []rune(text)
	n := len(runes)
	for n > 0 && m.TextWidth(string(runes[:n]), size) > maxWidth {
		n--
	}
	if n <= 2 {
		return Ellipsis
	}
	n -= 2
	// proportional fonts can make ".." wider than the two runes it replaced
	for n > 0 && m.TextWidth(string(runes[:n])+Ellipsis, size) > maxWidth {
		n--
	}
	if n == 0 {
		return Ellipsis
	}
	return string(runes[:n]) + Ellipsis
}

// HeaderTitle title-cases a station name for the header. A letter is
// capitalized when it follows anything but a letter or digit, so hyphen
// and apostrophe parts start upper case while "7th" stays lower.
func HeaderTitle(station string) string {
	words := strings.Fields(strings.ToLower(station))
	for i, w := range words {
		r := []rune(w)
		prev := ' '
		for j, c := range r {
			if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
				r[j] = unicode.ToUpper(c)
			}
			prev = c
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func allNoData(rows []models.TrainRow) bool {
	for _, r := range rows {
		if r.Destination != models.NoDataText {
			return false
		}
	}
	return true
}

func fingerprint(header string, rows []models.TrainRow) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(header)
	for _, r := range rows {
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(r.Destination)
		_, _ = d.WriteString("\x1f")
		_, _ = d.WriteString(r.Minutes)
	}
	return d.Sum64()
}
