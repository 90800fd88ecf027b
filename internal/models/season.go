package models

import (
	"fmt"
	"strings"
)

// Season is a meteorological season code (Northern Hemisphere convention)
type Season int

const (
	SeasonUnknown Season = 0
	Winter        Season = 1
	Spring        Season = 2
	Summer        Season = 3
	Fall          Season = 4
)

// Seasons lists every valid season in code order
var Seasons = []Season{Winter, Spring, Summer, Fall}

// seasonByMonth is indexed by calendar month; index 0 is unused
var seasonByMonth = [13]Season{
	SeasonUnknown,
	Winter, Winter,         // Jan, Feb
	Spring, Spring, Spring, // Mar-May
	Summer, Summer, Summer, // Jun-Aug
	Fall, Fall, Fall,       // Sep-Nov
	Winter,                 // Dec
}

// SeasonForMonth maps a calendar month (1-12) to its season code
func SeasonForMonth(month int) (Season, error) {
	if month < 1 || month > 12 {
		return SeasonUnknown, fmt.Errorf("month out of range: %d", month)
	}
	return seasonByMonth[month], nil
}

// Valid reports whether s is one of the four season codes
func (s Season) Valid() bool {
	return s >= Winter && s <= Fall
}

// String returns the season name
func (s Season) String() string {
	switch s {
	case Winter:
		return "Winter"
	case Spring:
		return "Spring"
	case Summer:
		return "Summer"
	case Fall:
		return "Fall"
	default:
		return "Unknown Season"
	}
}

// ParseSeason accepts either a season code ("3") or a name ("summer")
func ParseSeason(value string) (Season, error) {
	for _, s := range Seasons {
		if value == fmt.Sprint(int(s)) || strings.EqualFold(value, s.String()) {
			return s, nil
		}
	}
	return SeasonUnknown, fmt.Errorf("unknown season: %q", value)
}
