package availability

import "time"

// IsWorkingDay reports from <= weekday(date) <= to, Sunday being 0.
// Ranges do not wrap: from > to matches no day.
func IsWorkingDay(date time.Time, from, to int) bool {
	wd := int(date.Weekday())
	return from <= wd && wd <= to
}

// ValidateWindow checks a weekly working window and returns per-field
// messages keyed by the JSON names, or nil when the window is valid.
func ValidateWindow(fromDay, toDay int, fromTime, toTime string) map[string]string {
	fields := map[string]string{}

	if fromDay < 0 || fromDay > 6 {
		fields["availableFromWeekDay"] = "must be between 0 and 6"
	}
	if toDay < 0 || toDay > 6 {
		fields["availableToWeekDay"] = "must be between 0 and 6"
	}
	if len(fields) == 0 && fromDay > toDay {
		fields["availableToWeekDay"] = "must not be before availableFromWeekDay"
	}

	from, okFrom := parseClockSeconds(fromTime)
	to, okTo := parseClockSeconds(toTime)
	if !okFrom {
		fields["availableFromTime"] = "must be a time in HH:mm:ss format"
	}
	if !okTo {
		fields["availableToTime"] = "must be a time in HH:mm:ss format"
	}
	if okFrom && okTo && from >= to {
		fields["availableToTime"] = "must be after availableFromTime"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func parseClockSeconds(s string) (int, bool) {
	t, ok := parseStrict(clockSecondsLayout, s)
	if !ok {
		return 0, false
	}
	return t.Hour()*3600 + t.Minute()*60 + t.Second(), true
}
