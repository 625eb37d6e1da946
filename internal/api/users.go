package api

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/nevaan9/pho_bot/internal/models"
	"go.uber.org/zap"
)

// UserGetter is the part of *model.Client4 used to look users up.
type UserGetter interface {
	GetUser(userId, etag string) (*model.User, *model.Response, error)
	GetUserByUsername(userName, etag string) (*model.User, *model.Response, error)
}

// UserFinder resolves a user id to the username shown on polls.
type UserFinder interface {
	Username(userID string) (string, error)
}

// CachingUserFinder keeps usernames in an ARC cache. A zero cache size disables caching.
type CachingUserFinder struct {
	client UserGetter
	cache  *lru.ARCCache
	l      *zap.Logger
}

func NewUserFinder(client UserGetter, cacheSize int, l *zap.Logger) (*CachingUserFinder, error) {
	f := &CachingUserFinder{client: client, l: l}
	if cacheSize > 0 {
		cache, err := lru.NewARC(cacheSize)
		if err != nil {
			return nil, err
		}
		f.cache = cache
	}
	return f, nil
}

func (f *CachingUserFinder) Username(userID string) (string, error) {
	if f.cache != nil {
		if name, ok := f.cache.Get(userID); ok {
			if username, ok := name.(string); ok {
				return username, nil
			}
		}
	}

	f.l.Debug("loading user from server", zap.String("user_id", userID))
	user, _, err := f.client.GetUser(userID, "")
	if err != nil {
		return "", fmt.Errorf("handler: failed to get user %s: %w", userID, err)
	}
	if f.cache != nil {
		f.cache.Add(userID, user.Username)
	}
	return user.Username, nil
}

// BotID returns the id of the bot user: the one named botName, or the token's own user.
func BotID(client UserGetter, botName string) (string, error) {
	var (
		user *model.User
		err  error
	)
	if botName != "" {
		user, _, err = client.GetUserByUsername(botName, "")
	} else {
		user, _, err = client.GetUser("me", "")
	}
	if err != nil {
		return "", fmt.Errorf("handler: failed to get bot user: %w", err)
	}
	if user == nil || user.Id == "" {
		return "", models.ErrBotNotFound
	}
	return user.Id, nil
}
