package display

import "github.com/metroboard/metro/internal/models"

// Page is the direction shown by the paged layout
type Page int

const (
	PageEastbound Page = iota
	PageWestbound
)

// Next returns the other page
func (p Page) Next() Page {
	if p == PageEastbound {
		return PageWestbound
	}
	return PageEastbound
}

// Prev returns the other page; with two pages it is the same as Next
func (p Page) Prev() Page {
	return p.Next()
}

// Direction returns the travel direction the page shows
func (p Page) Direction() models.Direction {
	if p == PageWestbound {
		return models.West
	}
	return models.East
}

func (p Page) String() string {
	if p == PageWestbound {
		return "WESTBOUND"
	}
	return "EASTBOUND"
}
