// Package ics serializes event templates into an RFC 5545 iCalendar
// document. Recurrence rules are emitted verbatim as RRULE properties, not
// pre-expanded; any compliant calendar consumer performs its own expansion.
package ics

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"calmaker/internal/dateutil"
	"calmaker/internal/model"
)

const (
	prodID = "-//CalMaker//EN"

	// RFC 5545 content lines are limited to 75 octets before folding.
	maxLineOctets = 75

	// defaultTZID is used for timed events whose template carries no zone.
	defaultTZID = "UTC"
)

// Encoder renders templates into a single VCALENDAR document.
type Encoder struct {
	// Clock supplies the generation instant stamped into each DTSTAMP. It
	// is read once per document, so encoding the same templates under a
	// fixed clock is byte-identical. Nil means time.Now.
	Clock func() time.Time
}

// NewEncoder returns an Encoder stamping documents with the current time.
func NewEncoder() *Encoder {
	return &Encoder{Clock: time.Now}
}

// Encode produces one iCalendar document covering all templates, one VEVENT
// block per template. It never fails: missing optional fields simply omit
// the corresponding line. Lines are CRLF-separated with no trailing newline.
func (e *Encoder) Encode(templates []model.EventTemplate) string {
	clock := e.Clock
	if clock == nil {
		clock = time.Now
	}
	dtstamp := clock().UTC().Format("20060102T150405Z")

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	for _, t := range templates {
		lines = append(lines, encodeEvent(t, dtstamp)...)
	}
	lines = append(lines, "END:VCALENDAR")

	folded := make([]string, len(lines))
	for i, l := range lines {
		folded[i] = foldLine(l)
	}
	return strings.Join(folded, "\r\n")
}

func encodeEvent(t model.EventTemplate, dtstamp string) []string {
	lines := []string{
		"BEGIN:VEVENT",
		"UID:" + t.ID,
		"DTSTAMP:" + dtstamp,
	}

	if t.Title != "" {
		lines = append(lines, "SUMMARY:"+escapeText(t.Title))
	}
	if t.Description != "" {
		lines = append(lines, "DESCRIPTION:"+escapeText(t.Description))
	}
	if t.Location != "" {
		lines = append(lines, "LOCATION:"+escapeText(t.Location))
	}

	start := effectiveStartDate(t)

	if t.AllDay {
		lines = append(lines, "DTSTART;VALUE=DATE:"+compactDate(start))
		// All-day DTEND is exclusive: the day after the start, rolling
		// across month and year boundaries.
		if d, err := dateutil.ParseDate(start); err == nil {
			next := dateutil.FormatDate(dateutil.AddDays(d, 1))
			lines = append(lines, "DTEND;VALUE=DATE:"+compactDate(next))
		}
	} else {
		tzid := t.Timezone
		if tzid == "" {
			tzid = defaultTZID
		}
		end := t.EndTime
		if end == "" {
			// Zero-duration fallback rather than an error.
			end = t.StartTime
		}
		lines = append(lines,
			"DTSTART;TZID="+tzid+":"+compactDate(start)+"T"+compactTime(t.StartTime),
			"DTEND;TZID="+tzid+":"+compactDate(start)+"T"+compactTime(end),
		)
	}

	if rr := encodeRRule(t.Recurrence); rr != "" {
		lines = append(lines, "RRULE:"+rr)
	}

	return append(lines, "END:VEVENT")
}

// effectiveStartDate returns the anchor date, advanced to the nearest
// following date whose weekday is in the rule's weekday set when a weekly
// rule has one. DTSTART itself must satisfy the BYDAY constraint or
// consumers shift the whole series; the expander has no such requirement
// and works from the raw anchor.
func effectiveStartDate(t model.EventTemplate) string {
	r := t.Recurrence
	if r.Freq != model.FreqWeekly || len(r.ByWeekday) == 0 {
		return t.Date
	}
	d, err := dateutil.ParseDate(t.Date)
	if err != nil {
		return t.Date
	}

	wd := int(d.Weekday())
	daysAhead := 7
	for _, target := range r.ByWeekday {
		if target == wd {
			// Anchor already satisfies the constraint.
			return t.Date
		}
		diff := target - wd
		if diff <= 0 {
			diff += 7
		}
		if diff < daysAhead {
			daysAhead = diff
		}
	}
	return dateutil.FormatDate(dateutil.AddDays(d, daysAhead))
}

func encodeRRule(r model.RecurrenceRule) string {
	if !r.Repeats() {
		return ""
	}

	parts := []string{"FREQ=" + string(r.Freq)}
	if r.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", r.Interval))
	}

	if r.Freq == model.FreqWeekly && len(r.ByWeekday) > 0 {
		days := make([]int, 0, len(r.ByWeekday))
		for _, wd := range r.ByWeekday {
			if wd >= 0 && wd <= 6 {
				days = append(days, wd)
			}
		}
		sort.Ints(days)
		codes := make([]string, len(days))
		for i, wd := range days {
			codes[i] = model.WeekdayCodes[wd]
		}
		if len(codes) > 0 {
			parts = append(parts, "BYDAY="+strings.Join(codes, ","))
		}
	}

	switch {
	case r.Until != "":
		// Until wins over count. The date is rendered as the last instant
		// of that day with a UTC suffix, without converting out of the
		// template's zone; the imprecision is accepted for compatibility
		// with files already in circulation.
		parts = append(parts, "UNTIL="+compactDate(r.Until)+"T235959Z")
	case r.Count > 0:
		parts = append(parts, fmt.Sprintf("COUNT=%d", r.Count))
	}
	// Neither terminator set: an open-ended repeating rule, which is valid.

	return strings.Join(parts, ";")
}

// compactDate turns 2024-01-31 into 20240131.
func compactDate(s string) string {
	return strings.ReplaceAll(s, "-", "")
}

// compactTime turns 13:05 into 130500; an empty time becomes midnight.
func compactTime(s string) string {
	if s == "" {
		return "000000"
	}
	return strings.ReplaceAll(s, ":", "") + "00"
}

var textEscaper = strings.NewReplacer(
	"\\", "\\\\",
	";", "\\;",
	",", "\\,",
	"\n", "\\n",
)

// escapeText escapes the TEXT special characters of RFC 5545 section 3.3.11.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// foldLine soft-wraps a content line to the 75-octet limit by inserting
// CRLF plus a single leading space, the continuation marker decoders strip
// when reassembling the line. Splits back off to rune boundaries so a
// multi-byte character is never cut.
func foldLine(line string) string {
	if len(line) <= maxLineOctets {
		return line
	}

	var b strings.Builder
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines give one octet to the leading space.
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	return b.String()
}
