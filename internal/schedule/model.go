package schedule

import (
	"fmt"
	"time"

	"github.com/nekogravitycat/barbershop-backend/internal/pkg/apperror"
)

var (
	ErrInvalidDate      = apperror.InvalidArgument("date must be in YYYY-MM-DD format")
	ErrInvalidDayOfWeek = apperror.InvalidArgument("day_of_week must be between 0 (Monday) and 6 (Sunday)")
	ErrInvalidClock     = apperror.InvalidArgument("time must be in HH:MM format")
	ErrInvalidWindow    = apperror.InvalidArgument("start_time must be before end_time")
	ErrWindowNotFound   = apperror.NotFound("working window not found")
	ErrBarberNotFound   = apperror.NotFound("barber not found")
)

// Weekday is an ISO 8601 day number: Monday=0 ... Sunday=6.
// time.Weekday (Sunday=0) never crosses this package boundary.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayOf maps a calendar date to its ISO day number.
func WeekdayOf(date time.Time) Weekday {
	return Weekday((int(date.Weekday()) + 6) % 7)
}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	// time.Weekday counts from Sunday.
	return time.Weekday((int(d) + 1) % 7).String()
}

// ClockTime is a wall-clock time of day in minutes after midnight.
type ClockTime int

// ParseClock accepts "HH:MM" or "HH:MM:SS". Seconds are truncated.
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
	}
	if err != nil {
		return 0, ErrInvalidClock
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On places the clock time on the calendar day of date, in date's location.
func (c ClockTime) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, int(c), 0, 0, date.Location())
}

// WorkingWindow is a barber's recurring availability for one weekday.
type WorkingWindow struct {
	ID        int64
	BarberID  string
	DayOfWeek Weekday
	StartTime ClockTime
	EndTime   ClockTime
	IsActive  bool
	CreatedAt time.Time
}

// Malformed reports a window that cannot hold any slot.
func (w *WorkingWindow) Malformed() bool {
	return w.StartTime >= w.EndTime
}

// Slot is a candidate appointment interval [Start, End). It has no identity and is never stored.
type Slot struct {
	Start time.Time
	End   time.Time
}
