package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Minute tokens used by the predictions API in place of a number.
const (
	ArrivingToken = "ARR"
	BoardingToken = "BRD"
)

// Placeholder text shown in rows that carry no real arrival.
const (
	NoDataText       = "NO DATA"
	ErrorText        = "ERROR"
	NoMinutesDisplay = "--"
)

// ArrivalRecord is one predicted train as returned by the predictions API
type ArrivalRecord struct {
	Car             string     `json:"Car"`
	Destination     string     `json:"Destination"`
	DestinationCode string     `json:"DestinationCode"`
	DestinationName string     `json:"DestinationName"`
	Group           string     `json:"Group"`
	Line            string     `json:"Line"`
	LocationCode    string     `json:"LocationCode"`
	LocationName    string     `json:"LocationName"`
	Min             FlexString `json:"Min"`
}

// PredictionsResponse represents the full API response for a station
type PredictionsResponse struct {
	Trains []ArrivalRecord `json:"Trains"`
}

// FlexString decodes any JSON value into text. Strings keep their
// content and numbers their literal; null is empty. Booleans, objects
// and arrays keep their raw JSON, which never formats as minutes.
// The Min field has been served both as "5" and as 5.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return err
	}
	*f = FlexString(compact.String())
	return nil
}

// TrainRow is one display-ready row. Rows are never updated in place.
type TrainRow struct {
	Destination string `json:"destination"`
	Line        string `json:"line"`
	Minutes     string `json:"minutes"`
	Color       RGB    `json:"color"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// ToTrainRow converts the raw record to a TrainRow
func (r *ArrivalRecord) ToTrainRow() TrainRow {
	return TrainRow{
		Destination: strings.TrimSpace(r.DestinationName),
		Line:        r.Line,
		Minutes:     FormatMinutes(string(r.Min)),
		Color:       LineColor(r.Line),
	}
}

// FormatMinutes turns the raw Min field into its display form:
// "ARR", "BRD", "<N> MIN", or "--" when the value is not a number.
func FormatMinutes(raw string) string {
	switch raw {
	case ArrivingToken:
		return ArrivingToken
	case BoardingToken:
		return BoardingToken
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return NoMinutesDisplay
	}
	return fmt.Sprintf("%d MIN", n)
}

// PlaceholderRow returns a row with the given text, no line and default color
func PlaceholderRow(text string) TrainRow {
	return TrainRow{
		Destination: text,
		Minutes:     NoMinutesDisplay,
		Color:       White,
		Placeholder: true,
	}
}

// IsReal reports whether the row carries a real arrival
func (t TrainRow) IsReal() bool {
	return !t.Placeholder
}
