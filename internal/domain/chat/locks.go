package chat

import "sync"

// conversationLocks serializes mutations per conversation ID. Each
// conversation reads the full message sequence and writes it back, so two
// concurrent mutations on the same ID would both truncate against a stale
// sequence. Entries are never evicted; the arena grows with the number of
// distinct conversations touched by this process.
type conversationLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *conversationLocks) lock(publicID string) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[publicID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[publicID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m
}
