package models

import (
	"sort"
	"strings"
)

// DefaultStationCode is used when a station name is not in the table (Metro Center)
const DefaultStationCode = "A01"

// Station is a rail station and its agency station code
type Station struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Stations served by two platform levels use the upper-level code.
var stations = []Station{
	// Red
	{"A01", "Metro Center"},
	{"A02", "Farragut North"},
	{"A03", "Dupont Circle"},
	{"A04", "Woodley Park"},
	{"A05", "Cleveland Park"},
	{"A06", "Van Ness-UDC"},
	{"A07", "Tenleytown"},
	{"A08", "Friendship Heights"},
	{"A09", "Bethesda"},
	{"A10", "Medical Center"},
	{"A11", "Grosvenor-Strathmore"},
	{"A12", "North Bethesda"},
	{"A13", "Twinbrook"},
	{"A14", "Rockville"},
	{"A15", "Shady Grove"},
	{"B01", "Gallery Place"},
	{"B02", "Judiciary Square"},
	{"B03", "Union Station"},
	{"B35", "NoMa-Gallaudet U"},
	{"B04", "Rhode Island Ave"},
	{"B05", "Brookland-CUA"},
	{"B06", "Fort Totten"},
	{"B07", "Takoma"},
	{"B08", "Silver Spring"},
	{"B09", "Forest Glen"},
	{"B10", "Wheaton"},
	{"B11", "Glenmont"},
	// Blue, Orange, Silver and Yellow trunk
	{"C02", "McPherson Square"},
	{"C03", "Farragut West"},
	{"C04", "Foggy Bottom"},
	{"C05", "Rosslyn"},
	{"C06", "Arlington Cemetery"},
	{"C07", "Pentagon"},
	{"C08", "Pentagon City"},
	{"C09", "Crystal City"},
	{"C10", "Ronald Reagan Washington National Airport"},
	{"C12", "Braddock Road"},
	{"C13", "King St-Old Town"},
	{"C14", "Eisenhower Avenue"},
	{"C15", "Huntington"},
	{"D01", "Federal Triangle"},
	{"D02", "Smithsonian"},
	{"D03", "L'Enfant Plaza"},
	{"D04", "Federal Center SW"},
	{"D05", "Capitol South"},
	{"D06", "Eastern Market"},
	{"D07", "Potomac Ave"},
	{"D08", "Stadium-Armory"},
	{"D09", "Minnesota Ave"},
	{"D10", "Deanwood"},
	{"D11", "Cheverly"},
	{"D12", "Landover"},
	{"D13", "New Carrollton"},
	// Green and Yellow
	{"E01", "Mt Vernon Sq"},
	{"E02", "Shaw-Howard U"},
	{"E03", "U Street"},
	{"E04", "Columbia Heights"},
	{"E05", "Georgia Ave-Petworth"},
	{"E07", "West Hyattsville"},
	{"E08", "Hyattsville Crossing"},
	{"E09", "College Park-U of Md"},
	{"E10", "Greenbelt"},
	{"F02", "Archives"},
	{"F04", "Waterfront"},
	{"F05", "Navy Yard-Ballpark"},
	{"F06", "Anacostia"},
	{"F07", "Congress Heights"},
	{"F08", "Southern Avenue"},
	{"F09", "Naylor Road"},
	{"F10", "Suitland"},
	{"F11", "Branch Ave"},
	// Blue and Silver east
	{"G01", "Benning Road"},
	{"G02", "Capitol Heights"},
	{"G03", "Addison Road"},
	{"G04", "Morgan Boulevard"},
	{"G05", "Downtown Largo"},
	{"J02", "Van Dorn Street"},
	{"J03", "Franconia-Springfield"},
	// Orange and Silver west
	{"K01", "Court House"},
	{"K02", "Clarendon"},
	{"K03", "Virginia Square-GMU"},
	{"K04", "Ballston-MU"},
	{"K05", "East Falls Church"},
	{"K06", "West Falls Church"},
	{"K07", "Dunn Loring"},
	{"K08", "Vienna"},
	{"N01", "McLean"},
	{"N02", "Tysons"},
	{"N03", "Greensboro"},
	{"N04", "Spring Hill"},
	{"N06", "Wiehle-Reston East"},
	{"N07", "Reston Town Center"},
	{"N08", "Herndon"},
	{"N09", "Innovation Center"},
	{"N10", "Washington Dulles International Airport"},
	{"N11", "Loudoun Gateway"},
	{"N12", "Ashburn"},
}

// Extra names people commonly configure, mapped onto a table entry.
var stationAliases = map[string]string{
	"largo town center":   "G05",
	"navy yard":           "F05",
	"reagan national":     "C10",
	"national airport":    "C10",
	"dulles airport":      "N10",
	"van ness":            "A06",
	"noma":                "B35",
	"brookland":           "B05",
	"ballston":            "K04",
	"virginia square":     "K03",
	"courthouse":          "K01",
	"wfc metro":           "K06",
	"king street":         "C13",
	"college park":        "E09",
	"shaw":                "E02",
	"mount vernon square": "E01",
}

var stationCodes = buildStationIndex()

func buildStationIndex() map[string]string {
	idx := make(map[string]string, len(stations)+len(stationAliases))
	for _, s := range stations {
		idx[strings.ToLower(s.Name)] = s.Code
	}
	for name, code := range stationAliases {
		if _, exists := idx[name]; !exists {
			idx[name] = code
		}
	}
	return idx
}

// StationCode returns the agency code for a station name (case-insensitive).
// Unknown names return DefaultStationCode.
func StationCode(name string) string {
	code, ok := LookupStationCode(name)
	if !ok {
		return DefaultStationCode
	}
	return code
}

// LookupStationCode returns the code for a station name and whether it was found
func LookupStationCode(name string) (string, bool) {
	code, ok := stationCodes[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// StationName returns the display name for a station code
func StationName(code string) (string, bool) {
	for _, s := range stations {
		if s.Code == code {
			return s.Name, true
		}
	}
	return "", false
}

// Stations returns all known stations sorted by code
func Stations() []Station {
	out := make([]Station, len(stations))
	copy(out, stations)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
