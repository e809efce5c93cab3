package update

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type chatBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

/* ChatLimiter allows at most max free-form replies per window for each chat
 * Buckets idle for a full window are dropped
 */
type ChatLimiter struct {
	limit  rate.Limit
	burst  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	chats     map[int64]*chatBucket
	lastPrune time.Time
}

// NewChatLimiter creates a per-chat limiter
func NewChatLimiter(perWindow int, window time.Duration) *ChatLimiter {
	return &ChatLimiter{
		limit:  rate.Every(window / time.Duration(perWindow)),
		burst:  perWindow,
		window: window,
		now:    time.Now,
		chats:  make(map[int64]*chatBucket),
	}
}

// Allow consumes one token for chatID
func (l *ChatLimiter) Allow(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) >= l.window {
		for id, b := range l.chats {
			if now.Sub(b.lastSeen) >= l.window {
				delete(l.chats, id)
			}
		}
		l.lastPrune = now
	}

	b, ok := l.chats[chatID]
	if !ok {
		b = &chatBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.chats[chatID] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}
