// Package schedule models the wallpaper schedule document and resolves the
// wallpaper that should be on the desktop at a given instant.
//
// # Layers
//
// A document has three layers, consulted after any temporary override:
//
//   - periods: ordered {day, start, end, url} windows, half-open [start, end)
//   - dates:   "MM-DD" keys matched against the local calendar date
//   - days:    one default URL per weekday, always present
//
// Resolution returns the first applicable rule. Malformed period times and
// unknown weekday names make a period inert instead of failing the document.
//
// # Document format
//
//	{
//	  "wallpapers": {
//	    "days":    {"monday": "https://…/mon.jpg", …, "sunday": "https://…/sun.jpg"},
//	    "dates":   {"12-25": "https://…/xmas.jpg"},
//	    "periods": [{"day": "friday", "start": "18:00", "end": "23:00", "url": "https://…"}]
//	  }
//	}
//
// Resolve is pure. The runtime state owns the override and clears it when a
// resolution observes that it has expired.
package schedule
