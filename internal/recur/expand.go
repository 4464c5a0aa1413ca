// Package recur expands recurring event templates into concrete
// per-date occurrences. It is pure: no state survives a call, and the
// caller owns the template list.
package recur

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"calmaker/internal/dateutil"
	appLog "calmaker/internal/log"
	"calmaker/internal/model"
)

// DefaultMaxSteps is the default ceiling on cursor steps per template. It is
// a defensive backstop against pathological rules (e.g. a negative interval
// that never advances past the range); hitting it stops the walk silently
// and is reported only through Result.Truncated.
const DefaultMaxSteps = 2000

// Options tunes a single expansion run.
type Options struct {
	// MaxSteps overrides DefaultMaxSteps when positive.
	MaxSteps int
}

// Result holds the expanded occurrences plus per-template diagnostics.
// The diagnostics never change the occurrence set; they let callers tell
// "series ended by its rule" apart from "walk was cut off defensively".
type Result struct {
	Occurrences []model.Occurrence

	// Skipped lists IDs of templates dropped because a date field did not
	// parse. One bad template never aborts the batch.
	Skipped []string

	// Truncated lists IDs of templates whose walk hit the step ceiling.
	Truncated []string
}

// Expand enumerates every occurrence of the given templates whose date falls
// inside [rangeStart, rangeEnd], both bounds inclusive, both YYYY-MM-DD.
//
// An inverted range yields an empty result, not an error; the only error
// case is a range bound that does not parse. Output order is unspecified.
func Expand(templates []model.EventTemplate, rangeStart, rangeEnd string) (Result, error) {
	return ExpandWithOptions(templates, rangeStart, rangeEnd, Options{})
}

// ExpandWithOptions is Expand with an explicit step ceiling.
func ExpandWithOptions(templates []model.EventTemplate, rangeStart, rangeEnd string, opts Options) (Result, error) {
	var result Result

	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	rs, err := dateutil.ParseDate(rangeStart)
	if err != nil {
		return result, fmt.Errorf("expand: bad range start %q: %w", rangeStart, err)
	}
	re, err := dateutil.ParseDate(rangeEnd)
	if err != nil {
		return result, fmt.Errorf("expand: bad range end %q: %w", rangeEnd, err)
	}
	if rs.After(re) {
		return result, nil
	}

	result.Occurrences = make([]model.Occurrence, 0)

	for _, tpl := range templates {
		occ, truncated, err := expandTemplate(tpl, rs, re, maxSteps)
		if err != nil {
			result.Skipped = append(result.Skipped, tpl.ID)
			appLog.Error("expand: skipping template", err, "template", tpl.ID)
			continue
		}
		if truncated {
			result.Truncated = append(result.Truncated, tpl.ID)
			appLog.Error("expand: step ceiling reached", errors.New("max steps reached"),
				"template", tpl.ID, "cap", maxSteps)
		}
		result.Occurrences = append(result.Occurrences, occ...)
	}

	return result, nil
}

// expandTemplate walks a single template's series over the range. truncated
// reports that the step ceiling cut the walk short.
func expandTemplate(t model.EventTemplate, rangeStart, rangeEnd time.Time, maxSteps int) ([]model.Occurrence, bool, error) {
	anchor, err := dateutil.ParseDate(t.Date)
	if err != nil {
		return nil, false, err
	}

	rule := t.Recurrence

	// One-off event: a single instance if the anchor is in range.
	if !rule.Repeats() {
		if inRange(anchor, rangeStart, rangeEnd) {
			return []model.Occurrence{model.NewOccurrence(t, dateutil.FormatDate(anchor))}, false, nil
		}
		return nil, false, nil
	}

	var until time.Time
	hasUntil := false
	if rule.Until != "" {
		until, err = dateutil.ParseDate(rule.Until)
		if err != nil {
			return nil, false, err
		}
		hasUntil = true
	}

	// The zero value means the interval was never set; a negative interval
	// is left alone and contained by the step ceiling.
	interval := rule.Interval
	if interval == 0 {
		interval = 1
	}

	var out []model.Occurrence
	counter := 0
	cursor := anchor

	for steps := 0; steps < maxSteps; steps++ {
		for _, cand := range stepCandidates(rule, cursor, anchor) {
			// Until is the harder bound: it is tested first, so it can cut
			// a series short even when a count remains.
			if hasUntil && cand.After(until) {
				return out, false, nil
			}
			if rule.Count > 0 && counter >= rule.Count {
				return out, false, nil
			}

			// The counter tracks every occurrence the series produces, in
			// or out of the view range, so Count keeps its meaning no
			// matter which window is displayed.
			counter++

			if inRange(cand, rangeStart, rangeEnd) {
				out = append(out, model.NewOccurrence(t, dateutil.FormatDate(cand)))
			}

			// Open-ended past the window: nothing further can land in range.
			if rule.Count == 0 && cand.After(rangeEnd) {
				return out, false, nil
			}
		}

		if rule.Count == 0 && cursor.After(rangeEnd) {
			return out, false, nil
		}

		cursor = advance(cursor, rule.Freq, interval)
	}

	return out, true, nil
}

// stepCandidates yields the candidate dates for one cursor step, ascending.
//
// A weekly rule with an explicit weekday set produces one candidate per
// requested weekday of the cursor's calendar week (computed from that
// week's Sunday), dropping any that precede the anchor. Every other rule
// produces the cursor itself.
func stepCandidates(rule model.RecurrenceRule, cursor, anchor time.Time) []time.Time {
	if rule.Freq != model.FreqWeekly || len(rule.ByWeekday) == 0 {
		return []time.Time{cursor}
	}

	sunday := dateutil.WeekStart(cursor)
	cands := make([]time.Time, 0, len(rule.ByWeekday))
	for _, wd := range rule.ByWeekday {
		c := dateutil.AddDays(sunday, wd)
		if !c.Before(anchor) {
			cands = append(cands, c)
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].Before(cands[j]) })
	return cands
}

// advance moves the cursor one step in the rule's unit. Month and year steps
// clamp the day of month instead of rolling over (Jan 31 + 1 month is the
// last day of February, not March 2). An unknown frequency leaves the cursor
// in place; the step ceiling ends such a walk.
func advance(cursor time.Time, freq model.Frequency, interval int) time.Time {
	switch freq {
	case model.FreqDaily:
		return dateutil.AddDays(cursor, interval)
	case model.FreqWeekly:
		return dateutil.AddDays(cursor, interval*7)
	case model.FreqMonthly:
		return dateutil.AddMonthsClamped(cursor, interval)
	case model.FreqYearly:
		return dateutil.AddYearsClamped(cursor, interval)
	}
	return cursor
}

func inRange(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}
