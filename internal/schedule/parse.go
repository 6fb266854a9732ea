package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteDays is returned when a document does not name a URL for every weekday.
var ErrIncompleteDays = errors.New("schedule: days must define all seven weekdays")

// Parse decodes a schedule document. Older documents name the period list
// "specials"; that key is accepted when "periods" is absent.
func Parse(data []byte) (*Document, error) {
	var raw struct {
		Wallpapers struct {
			Days     Days              `json:"days"`
			Dates    map[string]string `json:"dates"`
			Periods  []Period          `json:"periods"`
			Specials []Period          `json:"specials"`
		} `json:"wallpapers"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}

	doc := &Document{Wallpapers: Wallpapers{
		Days:    raw.Wallpapers.Days,
		Dates:   raw.Wallpapers.Dates,
		Periods: raw.Wallpapers.Periods,
	}}
	if len(doc.Wallpapers.Periods) == 0 {
		doc.Wallpapers.Periods = raw.Wallpapers.Specials
	}
	if doc.Wallpapers.Dates == nil {
		doc.Wallpapers.Dates = map[string]string{}
	}
	if missing := doc.Wallpapers.Days.missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteDays, strings.Join(missing, ", "))
	}
	return doc, nil
}

func (d Days) missing() []string {
	var out []string
	for _, day := range []struct {
		name, url string
	}{
		{"monday", d.Monday},
		{"tuesday", d.Tuesday},
		{"wednesday", d.Wednesday},
		{"thursday", d.Thursday},
		{"friday", d.Friday},
		{"saturday", d.Saturday},
		{"sunday", d.Sunday},
	} {
		if strings.TrimSpace(day.url) == "" {
			out = append(out, day.name)
		}
	}
	return out
}
