package service

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"sync"

	"github.com/nevaan9/pho_bot/internal/models"
	"go.uber.org/zap"
)

var ErrRouterStopped = errors.New("router is stopped")

// EventHandler processes one reaction event.
type EventHandler func(ctx context.Context, ev models.ReactionEvent) error

// Router spreads reaction events over ordered queues keyed by the hash of the post id, so
// every event of a post is handled by the same worker in arrival order while different
// posts are handled concurrently.
type Router struct {
	queues   []chan models.ReactionEvent
	hashMask int
	handler  EventHandler
	l        *zap.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewRouter(partitionCount int, queueBufferSize int, handler EventHandler, l *zap.Logger) (*Router, error) {
	if !isPowerOfTwo(partitionCount) {
		return nil, fmt.Errorf("a router can only work with a partitionCount that is a power of two but was [%d]", partitionCount)
	}

	r := &Router{
		queues:   make([]chan models.ReactionEvent, partitionCount),
		hashMask: hashMask(partitionCount),
		handler:  handler,
		l:        l,
	}
	for i := range r.queues {
		r.queues[i] = make(chan models.ReactionEvent, queueBufferSize)
	}
	return r, nil
}

// Start launches one worker per partition. Workers stop once Stop drains their queue.
func (r *Router) Start(ctx context.Context) {
	for i, q := range r.queues {
		r.wg.Add(1)
		go r.work(ctx, i, q)
	}
}

func (r *Router) work(ctx context.Context, partition int, queue <-chan models.ReactionEvent) {
	defer r.wg.Done()
	for ev := range queue {
		if err := r.handler(ctx, ev); err != nil {
			r.l.Debug("event aborted",
				zap.Int("partition", partition),
				zap.String("trace_id", ev.TraceID),
				zap.Error(err))
		}
	}
}

// Route queues the event on its post's partition. It blocks while that queue is full, and
// a caller reading events off a single connection then stalls every other post too, so the
// queues need room for bursts on one post.
func (r *Router) Route(ev models.ReactionEvent) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		return ErrRouterStopped
	}

	partition := r.PartitionFor(ev.PostID)
	r.l.Debug("dispatching event",
		zap.String("post_id", ev.PostID),
		zap.Int("partition", partition))
	r.queues[partition] <- ev
	return nil
}

// Stop closes the queues and waits for the workers to finish what was queued.
func (r *Router) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	for _, q := range r.queues {
		close(q)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Router) PartitionFor(postID string) int {
	// keep only the rightmost bits so the max equals the partition count
	return int(crc32.ChecksumIEEE([]byte(postID))) & r.hashMask
}

func isPowerOfTwo(val int) bool {
	return (val != 0) && (val&(val-1)) == 0
}

// hashMask builds the mask keeping a hash within partitionCount, a power of two.
func hashMask(partitionCount int) int {
	maskSize := int(math.Log2(float64(partitionCount)))
	mask := 0
	for i := 0; i < maskSize; i++ {
		mask = mask<<1 | 1
	}
	return mask
}
