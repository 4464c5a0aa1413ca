package model

// Frequency describes how often an event template repeats. The values are
// the iCalendar FREQ tokens so they can be written into an RRULE verbatim;
// FreqNone marks a one-off event.
type Frequency string

const (
	FreqNone    Frequency = "NONE"
	FreqDaily   Frequency = "DAILY"
	FreqWeekly  Frequency = "WEEKLY"
	FreqMonthly Frequency = "MONTHLY"
	FreqYearly  Frequency = "YEARLY"
)

// WeekdayCodes maps weekday indices (0=Sunday .. 6=Saturday) to the
// two-letter iCalendar BYDAY codes.
var WeekdayCodes = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// RecurrenceRule specifies how a template repeats.
//
// Interval is the step multiplier in the frequency's unit; the zero value
// means 1. ByWeekday (0=Sunday .. 6=Saturday) is meaningful only for weekly
// rules: the event occurs on each listed weekday every Interval weeks.
// Count and Until are alternative terminators; a well-formed rule sets at
// most one, but consumers must tolerate both (Until wins).
type RecurrenceRule struct {
	Freq      Frequency `yaml:"freq" json:"freq"`
	Interval  int       `yaml:"interval,omitempty" json:"interval,omitempty"`
	ByWeekday []int     `yaml:"by_weekday,omitempty" json:"byWeekday,omitempty"`
	Count     int       `yaml:"count,omitempty" json:"count,omitempty"`
	Until     string    `yaml:"until,omitempty" json:"until,omitempty"` // YYYY-MM-DD, inclusive
}

// Repeats reports whether the rule describes a repeating series.
func (r RecurrenceRule) Repeats() bool {
	return r.Freq != "" && r.Freq != FreqNone
}

// EventTemplate is a user-authored event definition, possibly recurring.
// Both core components treat templates as read-only input.
type EventTemplate struct {
	// ID is a stable unique identifier, immutable for the template's lifetime.
	ID string `yaml:"id" json:"id"`

	Title string `yaml:"title" json:"title"`

	// Date is the anchor date (YYYY-MM-DD): the first possible occurrence,
	// the seed a recurring series grows from.
	Date string `yaml:"date" json:"date"`

	// StartTime / EndTime are HH:MM times of day, empty for all-day events.
	StartTime string `yaml:"start_time,omitempty" json:"startTime,omitempty"`
	EndTime   string `yaml:"end_time,omitempty" json:"endTime,omitempty"`

	AllDay bool `yaml:"all_day" json:"allDay"`

	// Timezone is an IANA zone identifier attached per template.
	Timezone string `yaml:"timezone" json:"timezone"`

	Location    string `yaml:"location,omitempty" json:"location,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Recurrence RecurrenceRule `yaml:"recurrence" json:"recurrence"`

	// CreatedAt is a Unix milliseconds creation stamp, used only for
	// persistence ordering.
	CreatedAt int64 `yaml:"created_at" json:"createdAt"`
}

// Occurrence is a single concrete calendar-date realization of a template.
// It is a value: display fields are copied from the source template so
// consumers need no further lookup.
type Occurrence struct {
	// TemplateID references the originating template.
	TemplateID string

	// Date is the concrete date (YYYY-MM-DD) this instance falls on.
	Date string

	Title       string
	StartTime   string
	EndTime     string
	AllDay      bool
	Timezone    string
	Location    string
	Description string
}

// NewOccurrence copies a template's display fields into an occurrence on
// the given date.
func NewOccurrence(t EventTemplate, date string) Occurrence {
	return Occurrence{
		TemplateID:  t.ID,
		Date:        date,
		Title:       t.Title,
		StartTime:   t.StartTime,
		EndTime:     t.EndTime,
		AllDay:      t.AllDay,
		Timezone:    t.Timezone,
		Location:    t.Location,
		Description: t.Description,
	}
}
