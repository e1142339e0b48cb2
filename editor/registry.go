package editor

import (
	"context"
	"log"
	"scrapbook/storage"
	"time"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Registry keeps the open edit sessions, keyed by token
type Registry struct {
	sessions cmap.ConcurrentMap[string, *Session]
	ttl      time.Duration
	storage  storage.StorageAPI
}

func NewRegistry(ttl time.Duration, store storage.StorageAPI) *Registry {
	return &Registry{
		sessions: cmap.New[*Session](),
		ttl:      ttl,
		storage:  store,
	}
}

// Open starts a new edit session for an album of userID
func (r *Registry) Open(userID, albumID uint64) (*Session, error) {
	s, err := Open(uuid.NewString(), userID, albumID, r.storage)
	if err != nil {
		return nil, err
	}
	r.sessions.Set(s.token, s)
	return s, nil
}

// Get returns the session only to the user that opened it
func (r *Registry) Get(token string, userID uint64) (*Session, error) {
	s, ok := r.sessions.Get(token)
	if !ok || s.userID != userID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) Close(token string, userID uint64) error {
	var closed *Session
	r.sessions.RemoveCb(token, func(key string, s *Session, exists bool) bool {
		if exists && s.userID == userID {
			closed = s
			return true
		}
		return false
	})
	if closed == nil {
		return ErrSessionNotFound
	}
	closed.discard()
	return nil
}

func (r *Registry) Count() int {
	return r.sessions.Count()
}

// Expire closes sessions that were idle for longer than the TTL
func (r *Registry) Expire(now time.Time) (expired int) {
	for item := range r.sessions.IterBuffered() {
		if now.Sub(item.Val.idleSince()) < r.ttl {
			continue
		}
		removed := r.sessions.RemoveCb(item.Key, func(key string, s *Session, exists bool) bool {
			return exists && now.Sub(s.idleSince()) >= r.ttl
		})
		if removed {
			item.Val.discard()
			expired++
		}
	}
	return
}

// Run expires idle sessions until ctx is done
func (r *Registry) Run(ctx context.Context) {
	interval := r.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Expire(now); n > 0 {
				log.Printf("Editor: expired %d idle sessions", n)
			}
		}
	}
}
