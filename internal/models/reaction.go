package models

// Direction tells whether a reaction was attached to or detached from a post.
type Direction int

const (
	ReactionAdded Direction = iota
	ReactionRemoved
)

func (d Direction) String() string {
	if d == ReactionRemoved {
		return "removed"
	}
	return "added"
}

// ReactionEvent is a reaction change on a poll post, already completed with the post and the user.
type ReactionEvent struct {
	TraceID   string    `json:"trace_id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	EmojiName string    `json:"emoji_name"`
	// CreateAt is when the reaction was put on the post, in milliseconds.
	CreateAt  int64     `json:"create_at"`
	Direction Direction `json:"direction"`
}

// Reaction is one user's emoji on a post as reported by the chat server.
type Reaction struct {
	UserID    string `json:"user_id"`
	PostID    string `json:"post_id"`
	EmojiName string `json:"emoji_name"`
	CreateAt  int64  `json:"create_at"`
}

// Emojis maps the RSVP statuses to the emoji names users react with.
type Emojis struct {
	Going    string `yaml:"EMOJI_GOING"    env:"EMOJI_GOING"    env-default:"heart_eyes"`
	Declined string `yaml:"EMOJI_DECLINED" env:"EMOJI_DECLINED" env-default:"white_frowning_face"`
	Maybe    string `yaml:"EMOJI_MAYBE"    env:"EMOJI_MAYBE"    env-default:"thinking"`
}

// StatusOf returns the status the emoji stands for, or StatusNone for any other emoji.
func (e Emojis) StatusOf(emojiName string) Status {
	switch emojiName {
	case e.Going:
		return StatusGoing
	case e.Declined:
		return StatusDeclined
	case e.Maybe:
		return StatusMaybe
	}
	return StatusNone
}

// EmojiOf returns the emoji name standing for the status.
func (e Emojis) EmojiOf(s Status) string {
	switch s {
	case StatusGoing:
		return e.Going
	case StatusDeclined:
		return e.Declined
	case StatusMaybe:
		return e.Maybe
	}
	return ""
}
