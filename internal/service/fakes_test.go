package service_test

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nevaan9/pho_bot/internal/models"
	"github.com/nevaan9/pho_bot/internal/render"
)

var errUnavailable = errors.New("store unavailable")

// fakeStore is an in-memory TallyStore with error injection.
type fakeStore struct {
	mu      sync.Mutex
	tallies map[string]*models.Tally
	err     error
	calls   []string
}

func newFakeStore(tallies ...*models.Tally) *fakeStore {
	s := &fakeStore{tallies: make(map[string]*models.Tally)}
	for _, t := range tallies {
		s.tallies[t.MessageID] = t
	}
	return s
}

func (s *fakeStore) Create(tally *models.Tally) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tallies[tally.MessageID] = copyTally(tally)
	return nil
}

func (s *fakeStore) Get(messageID string) (*models.Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tallies[messageID]
	if !ok {
		return nil, models.ErrTallyNotFound
	}
	return copyTally(t), nil
}

func (s *fakeStore) AddToSet(messageID string, status models.Status, users ...string) (*models.Tally, error) {
	return s.update("add", messageID, status, func(set []string) []string {
		for _, u := range users {
			if !containsString(set, u) {
				set = append(set, u)
			}
		}
		return set
	})
}

func (s *fakeStore) RemoveFromSet(messageID string, status models.Status, users ...string) (*models.Tally, error) {
	return s.update("remove", messageID, status, func(set []string) []string {
		out := []string{}
		for _, v := range set {
			if !containsString(users, v) {
				out = append(out, v)
			}
		}
		return out
	})
}

func (s *fakeStore) update(op, messageID string, status models.Status, fn func([]string) []string) (*models.Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fmt.Sprintf("%s %s", op, status.SetName()))
	if s.err != nil {
		return nil, s.err
	}
	t, ok := s.tallies[messageID]
	if !ok {
		return nil, models.ErrTallyNotFound
	}
	t.SetFor(status, fn(append([]string{}, t.Set(status)...)))
	return copyTally(t), nil
}

func (s *fakeStore) Purge(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	n := 0
	for id, t := range s.tallies {
		if t.Expired(now) {
			delete(s.tallies, id)
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) Close() error {
	return nil
}

func (s *fakeStore) recordedCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.calls...)
}

// fakeGateway tracks the reactions on posts and the last view applied to each.
type fakeGateway struct {
	mu        sync.Mutex
	reactions map[string][]models.Reaction
	views     map[string]render.View
	edits     int
	removed   []models.Reaction
	clock     int64
	listErr   error
	applyErr  error
	// onRemove is called for every removed reaction, the way the server emits a removal event.
	onRemove func(models.Reaction)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		reactions: make(map[string][]models.Reaction),
		views:     make(map[string]render.View),
	}
}

// react puts a reaction on the post and returns its creation time, later than any before it.
func (g *fakeGateway) react(postID, userID, emoji string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clock++
	g.reactions[postID] = append(g.reactions[postID], models.Reaction{UserID: userID, PostID: postID, EmojiName: emoji, CreateAt: g.clock})
	return g.clock
}

// unreact takes a reaction off the post the way a user does, without calling onRemove.
func (g *fakeGateway) unreact(postID, userID, emoji string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := []models.Reaction{}
	for _, r := range g.reactions[postID] {
		if r.UserID != userID || r.EmojiName != emoji {
			kept = append(kept, r)
		}
	}
	g.reactions[postID] = kept
}

func (g *fakeGateway) removedReactions() []models.Reaction {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.Reaction{}, g.removed...)
}

func (g *fakeGateway) Reactions(postID string) ([]models.Reaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	return append([]models.Reaction{}, g.reactions[postID]...), nil
}

func (g *fakeGateway) RemoveReaction(reaction models.Reaction) error {
	g.mu.Lock()
	kept := []models.Reaction{}
	for _, r := range g.reactions[reaction.PostID] {
		if r != reaction {
			kept = append(kept, r)
		}
	}
	g.reactions[reaction.PostID] = kept
	g.removed = append(g.removed, reaction)
	onRemove := g.onRemove
	g.mu.Unlock()

	if onRemove != nil {
		onRemove(reaction)
	}
	return nil
}

func (g *fakeGateway) ApplyView(postID string, view render.View) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.applyErr != nil {
		return g.applyErr
	}
	g.views[postID] = view
	g.edits++
	return nil
}

func (g *fakeGateway) view(postID string) (render.View, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.views[postID]
	return v, ok
}

func copyTally(t *models.Tally) *models.Tally {
	c := *t
	c.Going = append([]string{}, t.Going...)
	c.Declined = append([]string{}, t.Declined...)
	c.Maybe = append([]string{}, t.Maybe...)
	return &c
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
