// Package toast implements the per-session notification queue drained by the
// shell's toast host.
package toast

import (
	"sync"
	"time"
)

// Level classifies a toast for styling.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// DefaultLimit caps how many undelivered toasts a queue keeps.
const DefaultLimit = 16

// Toast is a single notification.
type Toast struct {
	Level       Level     `json:"level"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Queue buffers toasts until the next page render drains them. When full,
// the oldest toast is dropped.
type Queue struct {
	mu    sync.Mutex
	items []Toast
	limit int
	now   func() time.Time
}

// NewQueue returns a queue holding at most limit toasts; limit <= 0 uses
// DefaultLimit.
func NewQueue(limit int) *Queue {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Queue{limit: limit, now: time.Now}
}

// Push enqueues a toast, stamping CreatedAt when unset.
func (q *Queue) Push(t Toast) {
	if q == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if t.Level == "" {
		t.Level = LevelInfo
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = q.now()
	}
	q.items = append(q.items, t)
	if overflow := len(q.items) - q.limit; overflow > 0 {
		q.items = append(q.items[:0:0], q.items[overflow:]...)
	}
}

// Info, Success and Error are shorthands for Push.
func (q *Queue) Info(title, description string) {
	q.Push(Toast{Level: LevelInfo, Title: title, Description: description})
}

func (q *Queue) Success(title, description string) {
	q.Push(Toast{Level: LevelSuccess, Title: title, Description: description})
}

func (q *Queue) Error(title, description string) {
	q.Push(Toast{Level: LevelError, Title: title, Description: description})
}

// Drain returns the pending toasts in arrival order and empties the queue.
func (q *Queue) Drain() []Toast {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Len reports how many toasts are pending.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
