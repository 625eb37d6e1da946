package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/nevaan9/pho_bot/internal/command"
	"github.com/nevaan9/pho_bot/internal/models"
	"github.com/nevaan9/pho_bot/internal/render"
	"github.com/nevaan9/pho_bot/internal/schedule"
	"github.com/nevaan9/pho_bot/internal/service"
	"go.uber.org/zap"
)

const MentionAllMessage = "@all"

// EventRouter takes reaction events for processing.
type EventRouter interface {
	Route(ev models.ReactionEvent) error
}

type PollHandler struct {
	s         *service.PollService
	router    EventRouter
	client    Client
	users     UserFinder
	polls     PollFinder
	scheduler *schedule.Scheduler
	renderer  *render.Renderer
	emojis    models.Emojis
	botID     string
	l         *zap.Logger
}

type Deps struct {
	Service   *service.PollService
	Router    EventRouter
	Client    Client
	Users     UserFinder
	Polls     PollFinder
	Scheduler *schedule.Scheduler
	Renderer  *render.Renderer
	Emojis    models.Emojis
	BotID     string
}

func New(d Deps, l *zap.Logger) *PollHandler {
	return &PollHandler{
		s:         d.Service,
		router:    d.Router,
		client:    d.Client,
		users:     d.Users,
		polls:     d.Polls,
		scheduler: d.Scheduler,
		renderer:  d.Renderer,
		emojis:    d.Emojis,
		botID:     d.BotID,
		l:         l,
	}
}

// Dispatch hands a websocket event to the handler for its type. Other events are dropped.
func (h *PollHandler) Dispatch(event *model.WebSocketEvent) {
	switch event.EventType() {
	case model.WebsocketEventPosted:
		h.l.Debug("new message", zap.String("event", event.EventType()))
		h.HandleMessage(event)
	case model.WebsocketEventReactionAdded:
		h.HandleReaction(event, models.ReactionAdded)
	case model.WebsocketEventReactionRemoved:
		h.HandleReaction(event, models.ReactionRemoved)
	}
}

func (h *PollHandler) HandleMessage(event *model.WebSocketEvent) {
	raw, ok := event.GetData()["post"].(string)
	if !ok {
		h.l.Error("posted event without post", zap.Any("data", event.GetData()))
		return
	}
	post := &model.Post{}
	if err := json.Unmarshal([]byte(raw), post); err != nil {
		h.l.Error("error unmarshalling post", zap.Error(err))
		return
	}
	if post.UserId == h.botID {
		return
	}

	cmd, ok := command.ParseCommand(post.Message)
	if !ok {
		return
	}
	h.l.Info("new request for the bot",
		zap.String("user_id", post.UserId),
		zap.String("channel_id", post.ChannelId),
		zap.String("message", post.Message),
		zap.Bool("help", cmd.Help))

	if cmd.Help {
		if _, _, err := h.client.CreatePost(helpPost(post.ChannelId)); err != nil {
			h.l.Error("failed sending help", zap.Error(err))
		}
		return
	}
	if err := h.CreatePoll(post, cmd.Args); err != nil {
		h.l.Error("failed to create poll", zap.Error(err))
	}
}

// CreatePoll posts the poll asked for by post and stores its empty tally.
func (h *PollHandler) CreatePoll(post *model.Post, args models.PollArgs) error {
	author, err := h.users.Username(post.UserId)
	if err != nil {
		h.l.Warn("unknown poll author", zap.String("user_id", post.UserId), zap.Error(err))
	}
	when := h.scheduler.Resolve(args, time.UnixMilli(post.CreateAt))
	cfg := models.PollConfig{
		Title:      args.Title,
		When:       when,
		MentionAll: args.Mention == models.MentionAll,
		MinPeople:  args.MinPeople,
		Author:     author,
	}
	formatted := h.scheduler.Format(when)
	h.l.Debug("data for creating new poll", zap.Any("config", cfg), zap.String("when", formatted))

	if cfg.MentionAll {
		if err = h.SendMsg(post.ChannelId, MentionAllMessage); err != nil {
			return fmt.Errorf("handler: failed to send mention: %w", err)
		}
	}

	initial := models.NewTally("", formatted, cfg.MinPeople, time.Now())
	pp := pollPost(post.ChannelId, cfg, render.Description(formatted, cfg.MinPeople, h.emojis), h.renderer.Render(initial))
	created, _, err := h.client.CreatePost(pp)
	if err != nil {
		return fmt.Errorf("handler: failed to send poll: %w", err)
	}

	// the poll stays up even if the tally can't be stored; reactions on it are then ignored
	if _, err = h.s.CreatePoll(created.Id, formatted, cfg); err != nil {
		return err
	}
	h.l.Info("successfully created poll",
		zap.String("post_id", created.Id),
		zap.String("title", cfg.Title),
		zap.String("when", formatted))
	return nil
}

func (h *PollHandler) HandleReaction(event *model.WebSocketEvent, direction models.Direction) {
	raw, ok := event.GetData()["reaction"].(string)
	if !ok {
		h.l.Error("reaction event without reaction", zap.Any("data", event.GetData()))
		return
	}
	reaction := &model.Reaction{}
	if err := json.Unmarshal([]byte(raw), reaction); err != nil {
		h.l.Error("error unmarshalling reaction", zap.Error(err))
		return
	}
	if reaction.UserId == h.botID || h.emojis.StatusOf(reaction.EmojiName) == models.StatusNone {
		return
	}

	// the event only carries the reaction, the post has to be fetched to know whose it is
	isPoll, err := h.polls.IsPoll(reaction.PostId)
	if err != nil {
		h.l.Warn("something went wrong when fetching the post",
			zap.String("post_id", reaction.PostId),
			zap.Error(err))
		return
	}
	if !isPoll {
		return
	}
	username, err := h.users.Username(reaction.UserId)
	if err != nil {
		h.l.Warn("something went wrong when fetching the user",
			zap.String("user_id", reaction.UserId),
			zap.Error(err))
		return
	}

	ev := models.ReactionEvent{
		TraceID:   uuid.NewString(),
		PostID:    reaction.PostId,
		UserID:    reaction.UserId,
		Username:  username,
		EmojiName: reaction.EmojiName,
		CreateAt:  reaction.CreateAt,
		Direction: direction,
	}
	if err = h.router.Route(ev); err != nil {
		h.l.Error("failed to route reaction", zap.String("trace_id", ev.TraceID), zap.Error(err))
	}
}

func (h *PollHandler) SendMsg(channelID, message string) error {
	post := &model.Post{
		ChannelId: channelID,
		Message:   message,
	}
	created, resp, err := h.client.CreatePost(post)
	if err != nil {
		return err
	}
	h.l.Debug("send new message",
		zap.String("channel_id", created.ChannelId),
		zap.String("message", created.Message),
		zap.Int("status_code", resp.StatusCode))
	return nil
}
