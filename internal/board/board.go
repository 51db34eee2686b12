// Package board turns raw arrival predictions into bounded, padded display queues.
package board

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/metroboard/metro/internal/models"
)

// Slots is the minimum number of rows in a single queue and the exact
// number of rows per direction in a directional queue.
const Slots = 3

// Board is an ordered list of rows ready for layout. Real counts the
// leading rows that are actual arrivals; the rest are padding.
type Board struct {
	Rows []models.TrainRow `json:"rows"`
	Real int               `json:"real"`
}

// Directional holds one fixed-size board per direction
type Directional struct {
	East Board `json:"east"`
	West Board `json:"west"`
}

// ForDirection returns the board for a direction
func (d Directional) ForDirection(dir models.Direction) Board {
	if dir == models.West {
		return d.West
	}
	return d.East
}

// Real returns the total real arrivals across both directions
func (d Directional) Real() int {
	return d.East.Real + d.West.Real
}

// RealRows returns the real rows in order
func (b Board) RealRows() []models.TrainRow {
	return b.Rows[:b.Real]
}

// IsEmpty reports whether the board holds no real arrivals
func (b Board) IsEmpty() bool {
	return b.Real == 0
}

// Build keeps every arrival in API order and pads to at least Slots rows.
func Build(records []models.ArrivalRecord) Board {
	rows := make([]models.TrainRow, 0, max(len(records), Slots))
	for i := range records {
		rows = append(rows, records[i].ToTrainRow())
	}
	count := len(rows)
	for len(rows) < Slots {
		rows = append(rows, models.PlaceholderRow(models.NoDataText))
	}
	return Board{Rows: rows, Real: count}
}

// BuildDirectional splits arrivals into east and west, keeps the first
// Slots of each in API order and pads each to exactly Slots rows.
func BuildDirectional(records []models.ArrivalRecord) Directional {
	var east, west []models.TrainRow
	for i := range records {
		r := &records[i]
		row := r.ToTrainRow()
		switch models.ClassifyDirection(row.Destination, r.Group) {
		case models.West:
			if len(west) < Slots {
				west = append(west, row)
			}
		default:
			if len(east) < Slots {
				east = append(east, row)
			}
		}
	}
	return Directional{East: fixed(east), West: fixed(west)}
}

func fixed(rows []models.TrainRow) Board {
	out := make([]models.TrainRow, 0, Slots)
	out = append(out, rows...)
	count := len(out)
	for len(out) < Slots {
		out = append(out, models.PlaceholderRow(models.NoDataText))
	}
	return Board{Rows: out, Real: count}
}

// Error returns a board of Slots ERROR placeholders
func Error() Board {
	rows := make([]models.TrainRow, Slots)
	for i := range rows {
		rows[i] = models.PlaceholderRow(models.ErrorText)
	}
	return Board{Rows: rows}
}

// ErrorDirectional returns ERROR placeholders for both directions
func ErrorDirectional() Directional {
	return Directional{East: Error(), West: Error()}
}

// Empty returns a board with no arrivals
func Empty() Board {
	return Build(nil)
}

// ParseError reports a predictions payload that could not be decoded
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed predictions payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrNoTrainList is wrapped by a ParseError when the payload has no
// Trains list. An empty list is valid; a missing or null one is not.
var ErrNoTrainList = errors.New("missing Trains list")

// Decode parses a raw predictions payload into arrival records
func Decode(payload []byte) ([]models.ArrivalRecord, error) {
	var resp models.PredictionsResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, &ParseError{Err: err}
	}
	if resp.Trains == nil {
		return nil, &ParseError{Err: ErrNoTrainList}
	}
	return resp.Trains, nil
}

// Result is the outcome of classifying one payload in both layouts.
// A payload that fails to decode yields ERROR boards and a non-nil Err;
// nothing from a partially decoded payload is kept.
type Result struct {
	Single      Board
	Directional Directional
	Err         error
}

// FromPayload decodes and classifies a raw predictions payload
func FromPayload(payload []byte) Result {
	records, err := Decode(payload)
	if err != nil {
		return Result{Single: Error(), Directional: ErrorDirectional(), Err: err}
	}
	return FromRecords(records)
}

// FromRecords classifies already decoded arrivals
func FromRecords(records []models.ArrivalRecord) Result {
	return Result{
		Single:      Build(records),
		Directional: BuildDirectional(records),
	}
}
