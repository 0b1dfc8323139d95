package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"finditweb/internal/models"
)

const DefaultTTL = 5 * time.Second

// Queue holds one user's ephemeral notifications. Entries keep insertion
// order and drop out once their deadline passes or they are dismissed,
// whichever comes first.
type Queue struct {
	mu      sync.Mutex
	entries []models.Notification
}

func NewQueue() *Queue {
	return &Queue{}
}

// Post appends a notification and returns its token. ttl <= 0 selects
// DefaultTTL.
func (q *Queue) Post(message string, kind models.NotificationKind, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	n := models.Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	q.mu.Lock()
	q.entries = append(q.entries, n)
	q.mu.Unlock()
	return n.ID
}

// Dismiss removes the entry immediately. Dismissing an entry that already
// expired or was dismissed is a no-op.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.entries {
		if n.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

// Active returns the live notifications in insertion order and sweeps out
// everything whose deadline has passed.
func (q *Queue) Active(now time.Time) []models.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	live := q.entries[:0]
	for _, n := range q.entries {
		if now.Before(n.ExpiresAt) {
			live = append(live, n)
		}
	}
	q.entries = live
	out := make([]models.Notification, len(live))
	copy(out, live)
	return out
}
