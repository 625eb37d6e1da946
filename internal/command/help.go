package command

import (
	"fmt"

	"github.com/nevaan9/pho_bot/internal/models"
)

const (
	HelpTitle       = "Accepted Commands"
	HelpDescription = "`!pho` is the base command (creates a default event).\nAppend any of the following args to customize the event."
)

type HelpField struct {
	Name  string
	Value string
}

// HelpFields lists every accepted argument with its default.
func HelpFields() []HelpField {
	return []HelpField{
		{
			Name:  "--date=<value> [default=today, acceptedValues=today|tomorrow|day-after]",
			Value: "Date of the event",
		},
		{
			Name:  fmt.Sprintf("--time=<value> [default=%s:%s, format={hh}:{mm}]", models.DefaultHour, models.DefaultMinute),
			Value: "Time of the event (use 24 hour clock values)",
		},
		{
			Name:  fmt.Sprintf("--title=<value> [default=%s]", models.DefaultTitle),
			Value: "Title of the event",
		},
		{
			Name:  "--mention=<value> [default=none, acceptedValues=none|all]",
			Value: "If you'd like to notify all in the channel",
		},
		{
			Name:  fmt.Sprintf("--minPeople=<value> [default=%d, acceptedValues=n > 0 && n < 100]", models.DefaultMinPeople),
			Value: "The minimum number of people required to say 'Going' for the calendar link to show up",
		},
		{
			Name:  "Examples",
			Value: "`!pho --date=tomorrow`\n`!pho --time=13:30 --minPeople=2`\n`!pho --title=Blue State? --mention=all --time=15:00`",
		},
	}
}
