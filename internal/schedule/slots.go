package schedule

import (
	"iter"
	"regexp"
	"slices"
	"time"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a YYYY-MM-DD calendar date as midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if !datePattern.MatchString(date) {
		return time.Time{}, ErrInvalidDate
	}
	t, err := time.ParseInLocation(time.DateOnly, date, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Slots yields consecutive fixed-length slots of the window on date.
// No partial trailing slot is produced. A malformed window, a non-positive
// duration or one longer than the window yields nothing. Slots step in elapsed
// time from the window's opening instant, so a DST change inside the window
// shortens or lengthens the day rather than bending a slot.
// The sequence can be ranged over any number of times.
func (w WorkingWindow) Slots(date time.Time, durationMinutes int) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		if w.Malformed() || durationMinutes <= 0 || durationMinutes > int(w.EndTime-w.StartTime) {
			return
		}
		step := time.Duration(durationMinutes) * time.Minute
		closing := w.EndTime.On(date)
		for start := w.StartTime.On(date); !start.Add(step).After(closing); start = start.Add(step) {
			if !yield(Slot{Start: start, End: start.Add(step)}) {
				return
			}
		}
	}
}

// GenerateSlots collects the window's slots for date.
func GenerateSlots(w WorkingWindow, durationMinutes int, date time.Time) []Slot {
	slots := slices.Collect(w.Slots(date, durationMinutes))
	if slots == nil {
		return []Slot{}
	}
	return slots
}

// Occupant is anything that may hold time on a barber's calendar.
type Occupant interface {
	Interval() (start, end time.Time)
	// HoldsSlot reports whether the occupant still blocks its interval.
	HoldsSlot() bool
}

// Overlaps is the half-open interval test: [aStart, aEnd) and [bStart, bEnd)
// share a point. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Conflicts reports whether [start, end) overlaps any occupant that holds its slot.
func Conflicts[O Occupant](start, end time.Time, existing []O) bool {
	for _, o := range existing {
		if !o.HoldsSlot() {
			continue
		}
		bs, be := o.Interval()
		if Overlaps(start, end, bs, be) {
			return true
		}
	}
	return false
}

// FilterAvailable drops every candidate that conflicts with an existing occupant.
// existing must already be scoped to the same barber and date.
func FilterAvailable[O Occupant](candidates []Slot, existing []O) []Slot {
	out := make([]Slot, 0, len(candidates))
	for _, c := range candidates {
		if !Conflicts(c.Start, c.End, existing) {
			out = append(out, c)
		}
	}
	return out
}

// pickWindow returns the active window with the lowest id, or nil.
func pickWindow(windows []*WorkingWindow) *WorkingWindow {
	var picked *WorkingWindow
	for _, w := range windows {
		if w == nil || !w.IsActive {
			continue
		}
		if picked == nil || w.ID < picked.ID {
			picked = w
		}
	}
	return picked
}
