package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nevaan9/pho_bot/internal/models"
	"github.com/nevaan9/pho_bot/internal/render"
	"github.com/nevaan9/pho_bot/internal/repository"
	"go.uber.org/zap"
)

// Gateway is what the reconciler needs from the chat server.
type Gateway interface {
	// Reactions lists every reaction currently on the post.
	Reactions(postID string) ([]models.Reaction, error)
	// RemoveReaction detaches a user's reaction. The server emits its own removal event for it.
	RemoveReaction(reaction models.Reaction) error
	// ApplyView edits the poll post to show the view.
	ApplyView(postID string, view render.View) error
}

type Options struct {
	Emojis models.Emojis
	// GracePeriod is how long an add waits after removing the user's other reactions so
	// their removal events can land first. Leave it at zero when events of a post are
	// already processed in order by a Router.
	GracePeriod time.Duration
}

// Reconciler keeps each user in at most one RSVP set of a poll and the poll post in sync
// with its tally.
type Reconciler struct {
	store    repository.TallyStore
	gateway  Gateway
	renderer *render.Renderer
	emojis   models.Emojis
	grace    time.Duration
	l        *zap.Logger
}

func NewReconciler(store repository.TallyStore, gateway Gateway, renderer *render.Renderer, l *zap.Logger, opts Options) *Reconciler {
	return &Reconciler{
		store:    store,
		gateway:  gateway,
		renderer: renderer,
		emojis:   opts.Emojis,
		grace:    opts.GracePeriod,
		l:        l,
	}
}

// Handle dispatches the event on its direction.
func (r *Reconciler) Handle(ctx context.Context, ev models.ReactionEvent) error {
	if ev.Direction == models.ReactionRemoved {
		return r.HandleRemoved(ctx, ev)
	}
	return r.HandleAdded(ctx, ev)
}

func (r *Reconciler) HandleRemoved(_ context.Context, ev models.ReactionEvent) error {
	status := r.emojis.StatusOf(ev.EmojiName)
	if status == models.StatusNone {
		return nil
	}
	l := r.eventLogger(ev, status)

	tally, err := r.store.RemoveFromSet(ev.PostID, status, ev.Username)
	if err != nil {
		return r.abort(l, "failed to remove participant", err)
	}
	if err = r.apply(ev.PostID, tally); err != nil {
		return r.abort(l, "failed to edit poll", err)
	}
	l.Info("participant removed", zap.Int("count", len(tally.Set(status))))
	return nil
}

func (r *Reconciler) HandleAdded(ctx context.Context, ev models.ReactionEvent) error {
	status := r.emojis.StatusOf(ev.EmojiName)
	if status == models.StatusNone {
		return nil
	}
	l := r.eventLogger(ev, status)

	removed, superseded := r.removeOtherReactions(ev, status, l)
	if superseded {
		l.Info("add superseded, later events settle the tally")
		return nil
	}
	if removed > 0 && r.grace > 0 {
		l.Debug("waiting for reaction removals", zap.Int("removed", removed), zap.Duration("grace_period", r.grace))
		timer := time.NewTimer(r.grace)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	tally, err := r.store.AddToSet(ev.PostID, status, ev.Username)
	if err != nil {
		return r.abort(l, "failed to add participant", err)
	}
	if err = r.apply(ev.PostID, tally); err != nil {
		return r.abort(l, "failed to edit poll", err)
	}

	// the removal events may not have been applied yet, or the tally holds a stale entry
	changed := false
	for _, other := range status.Others() {
		if !tally.Has(other, ev.Username) {
			continue
		}
		l.Debug("removing stale entry", zap.String("stale_set", other.SetName()))
		tally, err = r.store.RemoveFromSet(ev.PostID, other, ev.Username)
		if err != nil {
			return r.abort(l, "failed to remove stale entry", err)
		}
		changed = true
	}
	if changed {
		if err = r.apply(ev.PostID, tally); err != nil {
			return r.abort(l, "failed to edit poll", err)
		}
	}
	l.Info("participant added", zap.Int("count", len(tally.Set(status))))
	return nil
}

// removeOtherReactions detaches the user's other RSVP reactions older than the one of ev and
// returns how many went. The add is superseded when that reaction is already gone from the
// post or the user holds a newer RSVP reaction: the events queued behind it settle the tally.
// Failures are logged and do not stop the add.
func (r *Reconciler) removeOtherReactions(ev models.ReactionEvent, status models.Status, l *zap.Logger) (int, bool) {
	reactions, err := r.gateway.Reactions(ev.PostID)
	if err != nil {
		l.Error("failed to list reactions", zap.Error(err))
		return 0, false
	}
	present := false
	var older []models.Reaction
	for _, reaction := range reactions {
		if reaction.UserID != ev.UserID {
			continue
		}
		other := r.emojis.StatusOf(reaction.EmojiName)
		switch {
		case other == models.StatusNone:
		case other == status:
			present = true
		case reaction.CreateAt > ev.CreateAt:
			l.Debug("newer reaction found", zap.String("emoji", reaction.EmojiName))
			return 0, true
		default:
			older = append(older, reaction)
		}
	}
	if !present {
		l.Debug("reaction already removed from post")
		return 0, true
	}

	removed := 0
	for _, reaction := range older {
		if err = r.gateway.RemoveReaction(reaction); err != nil {
			l.Error("failed to remove reaction", zap.String("emoji", reaction.EmojiName), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, false
}

func (r *Reconciler) apply(postID string, tally *models.Tally) error {
	return r.gateway.ApplyView(postID, r.renderer.Render(tally))
}

func (r *Reconciler) abort(l *zap.Logger, msg string, err error) error {
	if errors.Is(err, models.ErrTallyNotFound) {
		l.Warn(msg, zap.Error(err))
	} else {
		l.Error(msg, zap.Error(err))
	}
	return fmt.Errorf("service: %s: %w", msg, err)
}

func (r *Reconciler) eventLogger(ev models.ReactionEvent, status models.Status) *zap.Logger {
	return r.l.With(
		zap.String("trace_id", ev.TraceID),
		zap.String("post_id", ev.PostID),
		zap.String("username", ev.Username),
		zap.String("set", status.SetName()),
		zap.Stringer("direction", ev.Direction))
}
