package availability

import (
	"fmt"
	"time"
)

// SlotStep is the booking grid. Slots are anchored at midnight.
const SlotStep = 30 * time.Minute

const (
	clockSecondsLayout = "15:04:05"
	clockLayout        = "15:04"
	dateLayout         = "2006-01-02"
)

// GenerateSlots walks the grid from 00:00 and returns every point t with
// from <= t < to as HH:mm:ss. A malformed or empty window yields nil.
func GenerateSlots(from, to string) []string {
	start, ok := secondsOfDay(from)
	if !ok {
		return nil
	}
	end, ok := secondsOfDay(to)
	if !ok || end <= start {
		return nil
	}

	step := int(SlotStep / time.Second)
	first := (start + step - 1) / step * step

	slots := make([]string, 0, (end-first)/step+1)
	for t := first; t < end; t += step {
		slots = append(slots, formatSeconds(t))
	}
	return slots
}

// Label renders a slot value as HH:mm.
func Label(value string) string {
	if len(value) >= 5 {
		return value[:5]
	}
	return value
}

// secondsOfDay accepts zero-padded HH:mm:ss or HH:mm.
func secondsOfDay(s string) (int, bool) {
	t, ok := parseStrict(clockSecondsLayout, s)
	if !ok {
		t, ok = parseStrict(clockLayout, s)
		if !ok {
			return 0, false
		}
	}
	return t.Hour()*3600 + t.Minute()*60 + t.Second(), true
}

func parseStrict(layout, s string) (time.Time, bool) {
	t, err := time.Parse(layout, s)
	if err != nil || t.Format(layout) != s {
		return time.Time{}, false
	}
	return t, true
}

// ValidClock reports whether s is a zero-padded HH:mm time.
func ValidClock(s string) bool {
	_, ok := parseStrict(clockLayout, s)
	return ok
}

func formatSeconds(sec int) string {
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, sec%3600/60, sec%60)
}

// ParseDate reads a YYYY-MM-DD calendar date at midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, date, loc)
}

// Compose combines a calendar date and an HH:mm wall-clock time in loc.
func Compose(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout+" "+clockLayout, date+" "+clock, loc)
}

// Exists reports whether the wall-clock time occurs on date in loc. Times
// skipped by a daylight-saving jump are normalized forward by Compose.
func Exists(date, clock string, loc *time.Location) bool {
	at, err := Compose(date, clock, loc)
	return err == nil && at.In(loc).Format(clockLayout) == clock
}
