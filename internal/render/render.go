// Package render turns a tally into what the poll post displays.
package render

import (
	"fmt"
	"strings"

	"github.com/nevaan9/pho_bot/internal/models"
)

const (
	Placeholder        = "----"
	DefaultCalendarURL = "https://calendar.google.com/calendar/"
)

// Field is one column of the poll.
type Field struct {
	Title string
	Value string
}

// View is the displayed state of a poll post.
type View struct {
	Going    Field
	Declined Field
	Maybe    Field
	// Footer and Link are both empty unless enough people are going.
	Footer string
	Link   string
}

func (v View) Fields() []Field {
	return []Field{v.Going, v.Declined, v.Maybe}
}

// HasAffordance reports whether the calendar link is shown.
func (v View) HasAffordance() bool {
	return v.Link != ""
}

type Renderer struct {
	calendarURL string
}

func New(calendarURL string) *Renderer {
	if calendarURL == "" {
		calendarURL = DefaultCalendarURL
	}
	return &Renderer{calendarURL: calendarURL}
}

func (r *Renderer) Render(t *models.Tally) View {
	v := View{
		Going:    field(models.StatusGoing, t.Going),
		Declined: field(models.StatusDeclined, t.Declined),
		Maybe:    field(models.StatusMaybe, t.Maybe),
	}
	if threshold := t.Threshold(); len(t.Going) >= threshold {
		v.Footer = fmt.Sprintf("✅ %d or more people said they are going! Make a calendar invite by clicking the link on top!", threshold)
		v.Link = r.calendarURL
	}
	return v
}

// Description is the poll body shown above the fields.
func Description(when string, minPeople int, emojis models.Emojis) string {
	noun := "people"
	if minPeople == 1 {
		noun = "person"
	}
	return fmt.Sprintf("When: %s\nLooking for: %d %s\n\n%s", when, minPeople, noun, Legend(emojis))
}

// Legend explains which emoji stands for which answer.
func Legend(e models.Emojis) string {
	return fmt.Sprintf(":%s: = Going; :%s: = Not Going; :%s: = Maybe", e.Going, e.Declined, e.Maybe)
}

func field(s models.Status, users []string) Field {
	value := Placeholder
	if len(users) > 0 {
		value = strings.Join(users, "\n")
	}
	return Field{Title: s.String(), Value: value}
}
