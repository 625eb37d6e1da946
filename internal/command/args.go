package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nevaan9/pho_bot/internal/models"
)

const (
	Prefix    = "!"
	ArgPrefix = "--"
	Name      = "pho"
	helpToken = "help"
)

var (
	allowedDates    = map[string]bool{"today": true, "tomorrow": true, "day-after": true}
	allowedMentions = map[string]bool{models.DefaultMention: true, models.MentionAll: true}
)

type Command struct {
	Help bool
	Args models.PollArgs
}

// ParseCommand recognizes `!pho [--key=value ...]` and `!pho help`.
func ParseCommand(message string) (Command, bool) {
	if !strings.HasPrefix(message, Prefix) {
		return Command{}, false
	}
	body := strings.TrimSpace(strings.TrimPrefix(message, Prefix))
	fields := strings.Fields(body)
	if len(fields) == 0 || strings.ToLower(fields[0]) != Name {
		return Command{}, false
	}
	if len(fields) > 1 && strings.ToLower(fields[1]) == helpToken {
		return Command{Help: true}, true
	}

	// the first chunk is the command itself
	tokens := strings.Split(body, ArgPrefix)[1:]
	for _, token := range tokens {
		if strings.TrimSpace(token) == helpToken {
			return Command{Help: true}, true
		}
	}
	return Command{Args: ParseArgs(tokens)}, true
}

// ParseArgs folds `key=value` tokens over the defaults. Invalid tokens are dropped silently.
func ParseArgs(tokens []string) models.PollArgs {
	args := models.DefaultPollArgs()
	for _, token := range tokens {
		kv := strings.Split(strings.TrimSpace(token), "=")
		if len(kv) != 2 {
			continue
		}
		value := kv[1]
		switch strings.ToLower(kv[0]) {
		case "minpeople":
			if n, ok := leadingInt(strings.TrimSpace(value)); ok && n > 0 && n < 100 {
				args.MinPeople = n
			}
		case "title":
			if title := strings.TrimSpace(value); title != "" {
				args.Title = title
			}
		case "mention":
			if mention := strings.ToLower(value); allowedMentions[mention] {
				args.Mention = mention
			}
		case "date":
			date := strings.ToLower(value)
			if allowedDates[date] || isValidDate(date) {
				args.Date = date
			}
		case "time":
			parseTime(strings.ToLower(value), &args)
		}
	}
	return args
}

// parseTime sets the hour and, only when the hour is valid, the minute.
func parseTime(value string, args *models.PollArgs) {
	parts := strings.Split(value, ":")
	hour, ok := leadingInt(orZero(parts[0]))
	if !ok || hour < 0 || hour > 23 {
		args.Hour = models.DefaultHour
		return
	}
	args.Hour = twoDigits(hour)

	minuteText := ""
	if len(parts) > 1 {
		minuteText = parts[1]
	}
	minute, ok := leadingInt(orZero(minuteText))
	if !ok || minute < 0 || minute > 59 {
		args.Minute = models.DefaultMinute
		return
	}
	args.Minute = twoDigits(minute)
}

// isValidDate gates free-form dates. Only the date keywords are supported for now.
func isValidDate(string) bool {
	return false
}

// leadingInt parses the optional sign and leading digits of s, ignoring anything after them.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func twoDigits(n int) string {
	return fmt.Sprintf("%02d", n)
}
