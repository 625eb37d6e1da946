package models

import (
	"errors"
	"time"
)

var (
	ErrTallyNotFound       = errors.New("tally is not found")
	ErrFailedToProcessData = errors.New("failed to process data")
	ErrUnknownStatus       = errors.New("unknown rsvp status")
	ErrBotNotFound         = errors.New("bot user is not found")
)

const (
	DefaultTitle     = "Who wants pho?"
	DefaultDate      = "today"
	DefaultHour      = "12"
	DefaultMinute    = "15"
	DefaultMention   = "none"
	DefaultMinPeople = 4

	MentionAll = "all"
)

// PollArgs is the result of parsing the `--key=value` arguments of the poll command.
// Every field always carries a value: parsing degrades to defaults instead of failing.
type PollArgs struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Hour      string `json:"hour"`
	Minute    string `json:"minute"`
	Mention   string `json:"mention"`
	MinPeople int    `json:"min_people"`
}

// DefaultPollArgs returns the arguments used when nothing valid was supplied.
func DefaultPollArgs() PollArgs {
	return PollArgs{
		Title:     DefaultTitle,
		Date:      DefaultDate,
		Hour:      DefaultHour,
		Minute:    DefaultMinute,
		Mention:   DefaultMention,
		MinPeople: DefaultMinPeople,
	}
}

type PollConfig struct {
	Title      string    `json:"title"`
	When       time.Time `json:"when"`
	MentionAll bool      `json:"mention_all"`
	MinPeople  int       `json:"min_people"`
	// Author is the username of whoever ran the command.
	Author string `json:"author"`
}
