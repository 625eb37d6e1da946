// Package schedule resolves the date keywords of a poll into the time of the event.
package schedule

import (
	"strconv"
	"time"

	"github.com/nevaan9/pho_bot/internal/models"
)

const (
	DefaultTimezone = "America/New_York"
	DateLayout      = "January 2, 2006 3:04 PM"
)

var dayOffsets = map[string]int{
	"today":     0,
	"tomorrow":  1,
	"day-after": 2,
}

type Scheduler struct {
	loc *time.Location
}

func New(loc *time.Location) *Scheduler {
	return &Scheduler{loc: loc}
}

// NewWithTimezone loads the IANA zone, e.g. America/New_York.
func NewWithTimezone(name string) (*Scheduler, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	return New(loc), nil
}

func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// Resolve returns the event time for the parsed arguments of a command sent at createdAt.
// If the proposed time of day has already passed at createdAt, the event moves one day
// later. Only the time of day is compared, not the resolved date.
func (s *Scheduler) Resolve(args models.PollArgs, createdAt time.Time) time.Time {
	created := createdAt.In(s.loc)
	hour := atoiOr(args.Hour, models.DefaultHour)
	minute := atoiOr(args.Minute, models.DefaultMinute)

	year, month, day := created.Date()
	when := time.Date(year, month, day+dayOffsets[args.Date], hour, minute, 0, 0, s.loc)

	if hour < created.Hour() || (hour == created.Hour() && minute < created.Minute()) {
		when = when.AddDate(0, 0, 1)
	}
	return when
}

// Format renders t in the scheduler's zone for display on the poll.
func (s *Scheduler) Format(t time.Time) string {
	return t.In(s.loc).Format(DateLayout)
}

func atoiOr(value, fallback string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		n, _ = strconv.Atoi(fallback)
	}
	return n
}
