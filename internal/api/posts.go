package api

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/mattermost/mattermost-server/v6/model"
	"go.uber.org/zap"
)

// PostGetter is the part of *model.Client4 used to look posts up.
type PostGetter interface {
	GetPost(postId string, etag string) (*model.Post, *model.Response, error)
}

// PollFinder tells whether a post is a poll of the bot.
type PollFinder interface {
	IsPoll(postID string) (bool, error)
}

// CachingPollFinder remembers the answer per post id in an ARC cache, both ways, since the
// author of a post never changes. A zero cache size disables caching.
type CachingPollFinder struct {
	client PostGetter
	botID  string
	cache  *lru.ARCCache
	l      *zap.Logger
}

func NewPollFinder(client PostGetter, botID string, cacheSize int, l *zap.Logger) (*CachingPollFinder, error) {
	f := &CachingPollFinder{client: client, botID: botID, l: l}
	if cacheSize > 0 {
		cache, err := lru.NewARC(cacheSize)
		if err != nil {
			return nil, err
		}
		f.cache = cache
	}
	return f, nil
}

func (f *CachingPollFinder) IsPoll(postID string) (bool, error) {
	if f.cache != nil {
		if v, ok := f.cache.Get(postID); ok {
			if isPoll, ok := v.(bool); ok {
				return isPoll, nil
			}
		}
	}

	f.l.Debug("loading post from server", zap.String("post_id", postID))
	post, _, err := f.client.GetPost(postID, "")
	if err != nil {
		return false, fmt.Errorf("handler: failed to get post %s: %w", postID, err)
	}
	isPoll := post.UserId == f.botID
	if f.cache != nil {
		f.cache.Add(postID, isPoll)
	}
	return isPoll, nil
}
