package schedule

import "time"

const clockLayout = "15:04"

// Resolve picks the wallpaper for now. The first applicable rule wins: an
// active override, then the first matching period in stored order, then a
// MM-DD date entry, then the weekday default. ok is false only when there is
// neither an active override nor a document.
//
// Resolve never mutates its inputs; clearing an expired override is the
// caller's job (see state.Runtime.Resolve).
func Resolve(now time.Time, doc *Document, override *Override) (Target, bool) {
	if override != nil && override.Active(now) {
		return Target{URL: override.URL, Temporary: true}, true
	}
	if doc == nil {
		return Target{}, false
	}

	if url, ok := matchPeriod(now, doc.Wallpapers.Periods); ok {
		return Target{URL: url}, true
	}
	if url, ok := doc.Wallpapers.Dates[now.Format("01-02")]; ok {
		return Target{URL: url}, true
	}
	return Target{URL: doc.Wallpapers.Days.For(now.Weekday())}, true
}

func matchPeriod(now time.Time, periods []Period) (string, bool) {
	today := now.Weekday()
	clock := sinceMidnight(now)
	for _, p := range periods {
		day, ok := ParseWeekday(p.Day)
		if !ok || day != today {
			continue
		}
		start, err := parseClock(p.Start)
		if err != nil {
			continue
		}
		end, err := parseClock(p.End)
		if err != nil {
			continue
		}
		if clock >= start && clock < end {
			return p.URL, true
		}
	}
	return "", false
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

func parseClock(value string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
