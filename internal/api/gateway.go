package api

import (
	"fmt"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/nevaan9/pho_bot/internal/command"
	"github.com/nevaan9/pho_bot/internal/models"
	"github.com/nevaan9/pho_bot/internal/render"
	"go.uber.org/zap"
)

const pollColor = "#3498DB"

// Client is the part of *model.Client4 the bot talks to.
type Client interface {
	UserGetter
	CreatePost(post *model.Post) (*model.Post, *model.Response, error)
	GetPost(postId string, etag string) (*model.Post, *model.Response, error)
	UpdatePost(postId string, post *model.Post) (*model.Post, *model.Response, error)
	GetReactions(postId string) ([]*model.Reaction, *model.Response, error)
	DeleteReaction(reaction *model.Reaction) (*model.Response, error)
}

// MattermostGateway lets the reconciler read and edit poll posts.
type MattermostGateway struct {
	client Client
	l      *zap.Logger
}

func NewGateway(client Client, l *zap.Logger) *MattermostGateway {
	return &MattermostGateway{client: client, l: l}
}

func (g *MattermostGateway) Reactions(postID string) ([]models.Reaction, error) {
	reactions, _, err := g.client.GetReactions(postID)
	if err != nil {
		return nil, fmt.Errorf("gateway: failed to get reactions: %w", err)
	}
	out := make([]models.Reaction, 0, len(reactions))
	for _, r := range reactions {
		out = append(out, models.Reaction{UserID: r.UserId, PostID: r.PostId, EmojiName: r.EmojiName, CreateAt: r.CreateAt})
	}
	return out, nil
}

func (g *MattermostGateway) RemoveReaction(reaction models.Reaction) error {
	g.l.Debug("removing reaction",
		zap.String("post_id", reaction.PostID),
		zap.String("user_id", reaction.UserID),
		zap.String("emoji", reaction.EmojiName))
	_, err := g.client.DeleteReaction(&model.Reaction{
		UserId:    reaction.UserID,
		PostId:    reaction.PostID,
		EmojiName: reaction.EmojiName,
	})
	if err != nil {
		return fmt.Errorf("gateway: failed to delete reaction: %w", err)
	}
	return nil
}

// ApplyView rewrites the fields, footer and title link of the poll attachment.
func (g *MattermostGateway) ApplyView(postID string, view render.View) error {
	post, _, err := g.client.GetPost(postID, "")
	if err != nil {
		return fmt.Errorf("gateway: failed to get post: %w", err)
	}
	attachments := post.Attachments()
	if len(attachments) == 0 {
		g.l.Debug("post has no poll attachment", zap.String("post_id", postID))
		return fmt.Errorf("gateway: post %s has no attachment: %w", postID, models.ErrFailedToProcessData)
	}
	applyView(attachments[0], view)
	model.ParseSlackAttachment(post, attachments)

	updated, resp, err := g.client.UpdatePost(post.Id, post)
	if err != nil {
		return fmt.Errorf("gateway: failed to update post: %w", err)
	}
	g.l.Debug("poll updated",
		zap.String("post_id", updated.Id),
		zap.Int("status_code", resp.StatusCode))
	return nil
}

func applyView(a *model.SlackAttachment, view render.View) {
	a.Fields = attachmentFields(view.Fields(), true)
	a.Footer = view.Footer
	a.TitleLink = view.Link
}

func attachmentFields(fields []render.Field, short bool) []*model.SlackAttachmentField {
	out := make([]*model.SlackAttachmentField, 0, len(fields))
	for _, f := range fields {
		out = append(out, &model.SlackAttachmentField{
			Title: f.Title,
			Value: f.Value,
			Short: model.SlackCompatibleBool(short),
		})
	}
	return out
}

// pollPost builds the post of a new poll showing the given view.
func pollPost(channelID string, cfg models.PollConfig, description string, view render.View) *model.Post {
	attachment := &model.SlackAttachment{
		Color:      pollColor,
		AuthorName: cfg.Author,
		Title:      cfg.Title,
		Text:       description,
	}
	applyView(attachment, view)

	post := &model.Post{ChannelId: channelID}
	model.ParseSlackAttachment(post, []*model.SlackAttachment{attachment})
	return post
}

func helpPost(channelID string) *model.Post {
	fields := make([]render.Field, 0)
	for _, f := range command.HelpFields() {
		fields = append(fields, render.Field{Title: f.Name, Value: f.Value})
	}
	attachment := &model.SlackAttachment{
		Color:  pollColor,
		Title:  command.HelpTitle,
		Text:   command.HelpDescription,
		Fields: attachmentFields(fields, false),
	}

	post := &model.Post{ChannelId: channelID}
	model.ParseSlackAttachment(post, []*model.SlackAttachment{attachment})
	return post
}
