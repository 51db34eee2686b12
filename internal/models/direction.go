package models

import "strings"

// Direction is the side of the platform a train leaves from
type Direction int

const (
	East Direction = iota
	West
)

func (d Direction) String() string {
	if d == West {
		return "west"
	}
	return "east"
}

// Keyword tables are matched as case-insensitive substrings, east first.
// "falls church" also matches "East Falls Church"; that is known and kept.
var (
	eastKeywords = []string{
		"largo", "branch", "suitland", "naylor", "congress", "southern",
		"navy yard", "anacostia", "waterfront", "ikea",
	}
	westKeywords = []string{
		"vienna", "ashburn", "dunn loring", "falls church", "west falls",
		"friendship heights", "bethesda", "medical center", "shady grove",
		"glenmont", "uptown", "tenleytown", "van ness",
	}
)

// Group tags used by the predictions API for the two platform tracks
const (
	GroupEast = "1"
	GroupWest = "2"
)

// ClassifyDirection resolves the direction of a train from its destination
// name, falling back to the record's group tag and finally to East.
func ClassifyDirection(destination, group string) Direction {
	dest := strings.ToLower(destination)

	for _, kw := range eastKeywords {
		if strings.Contains(dest, kw) {
			return East
		}
	}
	for _, kw := range westKeywords {
		if strings.Contains(dest, kw) {
			return West
		}
	}

	switch strings.TrimSpace(group) {
	case GroupEast:
		return East
	case GroupWest:
		return West
	}
	return East
}
