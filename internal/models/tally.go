package models

import (
	"strconv"
	"time"
)

// Status is the RSVP state of a participant on a poll.
type Status int

const (
	StatusNone Status = iota
	StatusGoing
	StatusDeclined
	StatusMaybe
)

// Statuses lists the RSVP states backed by a set in the tally, in display order.
var Statuses = []Status{StatusGoing, StatusDeclined, StatusMaybe}

// SetName is the record attribute holding the participants of the status.
func (s Status) SetName() string {
	switch s {
	case StatusGoing:
		return "GOING"
	case StatusDeclined:
		return "DECLINED"
	case StatusMaybe:
		return "MAYBE"
	}
	return ""
}

func (s Status) String() string {
	switch s {
	case StatusGoing:
		return "Going"
	case StatusDeclined:
		return "Declined"
	case StatusMaybe:
		return "Maybe"
	}
	return "None"
}

// Others returns the two set-backed statuses other than s.
func (s Status) Others() []Status {
	others := make([]Status, 0, len(Statuses)-1)
	for _, o := range Statuses {
		if o != s {
			others = append(others, o)
		}
	}
	return others
}

// TallyTTL is how long a tally record is kept after its creation.
const TallyTTL = 365 * 24 * time.Hour

// Tally is the persisted record of who responded how to one poll post.
type Tally struct {
	MessageID     string   `json:"MessageId"`
	Going         []string `json:"GOING"`
	Declined      []string `json:"DECLINED"`
	Maybe         []string `json:"MAYBE"`
	TTL           string   `json:"TTL"`
	CreatedAt     int64    `json:"createdAt"`
	EventDateTime string   `json:"eventDateTime"`
	MinPeople     int      `json:"minPeople"`
}

// NewTally builds the empty tally stored when a poll is posted.
func NewTally(messageID, eventDateTime string, minPeople int, now time.Time) *Tally {
	return &Tally{
		MessageID:     messageID,
		Going:         []string{},
		Declined:      []string{},
		Maybe:         []string{},
		TTL:           strconv.FormatInt(now.Add(TallyTTL).Unix(), 10),
		CreatedAt:     now.UnixMilli(),
		EventDateTime: eventDateTime,
		MinPeople:     minPeople,
	}
}

// Set returns the participants holding the given status.
func (t *Tally) Set(s Status) []string {
	switch s {
	case StatusGoing:
		return t.Going
	case StatusDeclined:
		return t.Declined
	case StatusMaybe:
		return t.Maybe
	}
	return nil
}

// SetFor replaces the participants holding the given status.
func (t *Tally) SetFor(s Status, users []string) {
	switch s {
	case StatusGoing:
		t.Going = users
	case StatusDeclined:
		t.Declined = users
	case StatusMaybe:
		t.Maybe = users
	}
}

// Has reports whether user is in the set of the given status.
func (t *Tally) Has(s Status, user string) bool {
	for _, u := range t.Set(s) {
		if u == user {
			return true
		}
	}
	return false
}

// Status returns the first status whose set contains user, or StatusNone.
func (t *Tally) Status(user string) Status {
	for _, s := range Statuses {
		if t.Has(s, user) {
			return s
		}
	}
	return StatusNone
}

// Statuses maps every participant to the statuses they are recorded under.
// More than one entry for a participant means the sets are out of sync.
func (t *Tally) Statuses() map[string][]Status {
	out := make(map[string][]Status)
	for _, s := range Statuses {
		for _, u := range t.Set(s) {
			out[u] = append(out[u], s)
		}
	}
	return out
}

// Threshold returns the number of going participants needed, falling back to the default.
func (t *Tally) Threshold() int {
	if t.MinPeople > 0 {
		return t.MinPeople
	}
	return DefaultMinPeople
}

// Expired reports whether the record's TTL is before now. Records with an unreadable TTL never expire.
func (t *Tally) Expired(now time.Time) bool {
	ttl, err := strconv.ParseInt(t.TTL, 10, 64)
	if err != nil {
		return false
	}
	return ttl < now.Unix()
}
