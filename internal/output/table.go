package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rodaine/table"

	"github.com/metroboard/metro/internal/board"
	"github.com/metroboard/metro/internal/display"
	"github.com/metroboard/metro/internal/models"
)

// minutesWidth fits "NN MIN"
const minutesWidth = 6

// BoardOptions configures the board output
type BoardOptions struct {
	Colors *Colors
	// ShowLine prefixes each arrival with its line code
	ShowLine bool
}

func (o BoardOptions) colors() *Colors {
	if o.Colors == nil {
		return NewColors(ColorNever)
	}
	return o.Colors
}

// RenderBoard renders a single queue under a station header
func RenderBoard(w io.Writer, station string, b board.Board, opts BoardOptions) {
	c := opts.colors()
	_, _ = fmt.Fprintln(w, c.Header("%s", display.HeaderTitle(station)))
	renderRows(w, b, opts, c)
}

// RenderDirectional renders both directions, eastbound first
func RenderDirectional(w io.Writer, station string, d board.Directional, opts BoardOptions) {
	c := opts.colors()
	_, _ = fmt.Fprintln(w, c.Header("%s", display.HeaderTitle(station)))
	for _, page := range []display.Page{display.PageEastbound, display.PageWestbound} {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, c.Muted("%s", page.String()))
		renderRows(w, d.ForDirection(page.Direction()), opts, c)
	}
}

func renderRows(w io.Writer, b board.Board, opts BoardOptions, c *Colors) {
	if b.IsEmpty() {
		if isErrorBoard(b) {
			_, _ = fmt.Fprintln(w, "  "+c.Error("%s", models.ErrorText))
			return
		}
		_, _ = fmt.Fprintln(w, "  "+c.NoData("%s", models.NoDataText))
		return
	}

	for _, row := range b.RealRows() {
		_, _ = fmt.Fprintln(w, FormatRow(row, opts.ShowLine, c))
	}
}

// FormatRow formats one arrival as a single text line
func FormatRow(row models.TrainRow, showLine bool, c *Colors) string {
	var sb strings.Builder
	sb.WriteString("  ")
	if showLine {
		code := row.Line
		if code == "" {
			code = "--"
		}
		sb.WriteString(c.Line(row.Line, "%-2s", code))
		sb.WriteString(" ")
	}

	minutes := fmt.Sprintf("%*s", minutesWidth, row.Minutes)
	switch row.Minutes {
	case models.ArrivingToken, models.BoardingToken:
		minutes = c.Arriving("%s", minutes)
	case models.NoMinutesDisplay:
		minutes = c.Muted("%s", minutes)
	default:
		minutes = c.Minutes("%s", minutes)
	}
	sb.WriteString(minutes)
	sb.WriteString("  ")
	sb.WriteString(c.Line(row.Line, "%s", row.Destination))
	return sb.String()
}

func isErrorBoard(b board.Board) bool {
	return len(b.Rows) > 0 && b.Rows[0].Destination == models.ErrorText
}

// RenderStations renders the station table
func RenderStations(w io.Writer, stations []models.Station, c *Colors) {
	if len(stations) == 0 {
		_, _ = fmt.Fprintln(w, "No stations found.")
		return
	}
	if c == nil {
		c = NewColors(ColorNever)
	}

	tbl := table.New("Code", "Station").WithWriter(w)
	tbl.WithHeaderFormatter(table.Formatter(c.Header))
	tbl.WithFirstColumnFormatter(table.Formatter(c.Muted))
	for _, s := range stations {
		tbl.AddRow(s.Code, s.Name)
	}
	tbl.Print()
}

// FilterStations returns stations whose name or code contains query
func FilterStations(stations []models.Station, query string) []models.Station {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return stations
	}
	var out []models.Station
	for _, s := range stations {
		if strings.Contains(strings.ToLower(s.Name), q) || strings.EqualFold(s.Code, q) {
			out = append(out, s)
		}
	}
	return out
}

// RenderJSON writes v as indented JSON
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
