// internal/service/auth/observer.go
package auth

import (
	"context"
	"sync"

	"warmup-service/internal/domain/auth"

	"go.uber.org/zap"
)

// StateHub fans out sign-in state changes: a *auth.User on login, nil on logout and on
// shutdown.
type StateHub struct {
	mu     sync.RWMutex
	nextID uint64
	users  map[string]map[uint64]func(*auth.User)
	global map[uint64]func(string, *auth.User)
	closed bool
	logger *zap.Logger
}

func NewStateHub(logger *zap.Logger) *StateHub {
	return &StateHub{
		users:  make(map[string]map[uint64]func(*auth.User)),
		global: make(map[uint64]func(string, *auth.User)),
		logger: logger,
	}
}

// Subscribe registers fn for changes of uid and returns its unsubscribe func.
func (h *StateHub) Subscribe(uid string, fn func(*auth.User)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return func() {}
	}

	h.nextID++
	id := h.nextID
	if h.users[uid] == nil {
		h.users[uid] = make(map[uint64]func(*auth.User))
	}
	h.users[uid][id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.users[uid]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(h.users, uid)
			}
		}
	}
}

// SubscribeAll registers fn for changes of every uid.
func (h *StateHub) SubscribeAll(fn func(uid string, user *auth.User)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return func() {}
	}

	h.nextID++
	id := h.nextID
	h.global[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.global, id)
	}
}

// Publish notifies the subscribers of uid, then the global ones. Callbacks run outside
// the lock so they may subscribe or unsubscribe.
func (h *StateHub) Publish(uid string, user *auth.User) {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return
	}
	listeners := make([]func(*auth.User), 0, len(h.users[uid]))
	for _, fn := range h.users[uid] {
		listeners = append(listeners, fn)
	}
	globals := make([]func(string, *auth.User), 0, len(h.global))
	for _, fn := range h.global {
		globals = append(globals, fn)
	}
	h.mu.RUnlock()

	for _, fn := range listeners {
		fn(user)
	}
	for _, fn := range globals {
		fn(uid, user)
	}
}

// Close notifies every subscriber with nil and drops them. Later calls are no-ops.
func (h *StateHub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	users := h.users
	globals := h.global
	h.users = make(map[string]map[uint64]func(*auth.User))
	h.global = make(map[uint64]func(string, *auth.User))
	h.mu.Unlock()

	for uid, subs := range users {
		for _, fn := range subs {
			fn(nil)
		}
		for _, fn := range globals {
			fn(uid, nil)
		}
	}

	if h.logger != nil {
		h.logger.Info("auth state hub closed")
	}
}

// ObserveAuthState calls cb with the current profile of uid (nil when it cannot be loaded)
// and again on every login or logout of uid. The subscription is taken before the lookup,
// so a change published meanwhile is delivered and the older snapshot is dropped.
func (s *AuthService) ObserveAuthState(ctx context.Context, uid string, cb func(*auth.User)) func() {
	var (
		mu      sync.Mutex
		changed bool
	)
	unsubscribe := s.hub.Subscribe(uid, func(u *auth.User) {
		mu.Lock()
		changed = true
		mu.Unlock()
		cb(u)
	})

	user, err := s.CurrentUser(ctx, uid)
	if err != nil {
		s.logger.Warn("auth state lookup failed", zap.String("uid", uid), zap.Error(err))
		user = nil
	}

	mu.Lock()
	stale := changed
	mu.Unlock()
	if !stale {
		cb(user)
	}

	return unsubscribe
}
