package schedule

import (
	"strings"
	"time"
)

// Document is the schedule config as published remotely and persisted in
// config.json.
type Document struct {
	Wallpapers Wallpapers `json:"wallpapers"`
}

// Wallpapers groups the three schedule layers.
type Wallpapers struct {
	Days    Days              `json:"days"`
	Dates   map[string]string `json:"dates"`
	Periods []Period          `json:"periods"`
}

// Days holds the default URL for every weekday.
type Days struct {
	Monday    string `json:"monday"`
	Tuesday   string `json:"tuesday"`
	Wednesday string `json:"wednesday"`
	Thursday  string `json:"thursday"`
	Friday    string `json:"friday"`
	Saturday  string `json:"saturday"`
	Sunday    string `json:"sunday"`
}

// For returns the default URL for the given weekday.
func (d Days) For(day time.Weekday) string {
	switch day {
	case time.Monday:
		return d.Monday
	case time.Tuesday:
		return d.Tuesday
	case time.Wednesday:
		return d.Wednesday
	case time.Thursday:
		return d.Thursday
	case time.Friday:
		return d.Friday
	case time.Saturday:
		return d.Saturday
	default:
		return d.Sunday
	}
}

// Period overrides the day default inside a [Start, End) window on one weekday.
type Period struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
	URL   string `json:"url"`
}

// Override is a time-boxed manual selection that beats the schedule.
type Override struct {
	URL    string    `json:"url"`
	Expiry time.Time `json:"expiry"`
}

// Active reports whether the override still applies at now.
func (o Override) Active(now time.Time) bool {
	return now.Before(o.Expiry)
}

// Target is the outcome of a resolution.
type Target struct {
	URL       string
	Temporary bool
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ParseWeekday maps an English weekday name, in any case, to a time.Weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	return day, ok
}
