package api

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/nevaan9/pho_bot/internal/models"
)

var errNotFound = errors.New("not found")

// fakeClient stands in for *model.Client4.
type fakeClient struct {
	mu        sync.Mutex
	posts     map[string]*model.Post
	order     []string
	reactions map[string][]*model.Reaction
	users     map[string]*model.User
	deleted   []*model.Reaction
	userCalls int
	postCalls int
	updates   int
	createErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		posts:     make(map[string]*model.Post),
		reactions: make(map[string][]*model.Reaction),
		users: map[string]*model.User{
			"me":         {Id: "bot-id", Username: "phobot"},
			"bot-id":     {Id: "bot-id", Username: "phobot"},
			"ana-id":     {Id: "ana-id", Username: "ana"},
			"creator-id": {Id: "creator-id", Username: "creator"},
		},
	}
}

func ok() *model.Response {
	return &model.Response{StatusCode: http.StatusOK}
}

func (c *fakeClient) GetUser(userId, _ string) (*model.User, *model.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userCalls++
	u, found := c.users[userId]
	if !found {
		return nil, &model.Response{StatusCode: http.StatusNotFound}, errNotFound
	}
	return u, ok(), nil
}

func (c *fakeClient) GetUserByUsername(userName, _ string) (*model.User, *model.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.users {
		if u.Username == userName {
			return u, ok(), nil
		}
	}
	return nil, &model.Response{StatusCode: http.StatusNotFound}, errNotFound
}

func (c *fakeClient) CreatePost(post *model.Post) (*model.Post, *model.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return nil, &model.Response{StatusCode: http.StatusInternalServerError}, c.createErr
	}
	post.Id = fmt.Sprintf("post%d", len(c.order)+1)
	if post.UserId == "" {
		post.UserId = "bot-id"
	}
	c.posts[post.Id] = post
	c.order = append(c.order, post.Id)
	return post, ok(), nil
}

func (c *fakeClient) GetPost(postId string, _ string) (*model.Post, *model.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.postCalls++
	p, found := c.posts[postId]
	if !found {
		return nil, &model.Response{StatusCode: http.StatusNotFound}, errNotFound
	}
	return p, ok(), nil
}

func (c *fakeClient) UpdatePost(postId string, post *model.Post) (*model.Post, *model.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, found := c.posts[postId]; !found {
		return nil, &model.Response{StatusCode: http.StatusNotFound}, errNotFound
	}
	c.posts[postId] = post
	c.updates++
	return post, ok(), nil
}

func (c *fakeClient) GetReactions(postId string) ([]*model.Reaction, *model.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reactions[postId], ok(), nil
}

func (c *fakeClient) DeleteReaction(reaction *model.Reaction) (*model.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, reaction)
	return ok(), nil
}

func (c *fakeClient) postAt(i int) *model.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.posts[c.order[i]]
}

func (c *fakeClient) postCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

type fakeRouter struct {
	events []models.ReactionEvent
}

func (r *fakeRouter) Route(ev models.ReactionEvent) error {
	r.events = append(r.events, ev)
	return nil
}
