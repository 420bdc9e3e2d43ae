// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned when redis holds no record for the token.
var ErrSessionNotFound = errors.New("session not found")

type Manager struct {
	client redis.UniversalClient
	logger *zap.Logger
}

func NewManager(client redis.UniversalClient, logger *zap.Logger) *Manager {
	return &Manager{
		client: client,
		logger: logger,
	}
}

// CreateSession stores a new session keyed by uid and jti until the token expires.
func (m *Manager) CreateSession(ctx context.Context, session *SessionData) error {
	key := m.sessionKey(session.UID, session.JTI)

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	if err := m.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}

	return nil
}

// GetSession retrieves a session and stamps its last activity.
func (m *Manager) GetSession(ctx context.Context, uid, jti string) (*SessionData, error) {
	key := m.sessionKey(uid, jti)

	data, err := m.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	session.LastActivityAt = time.Now()
	if err := m.save(ctx, key, &session); err != nil {
		m.logger.Warn("failed to update session activity", zap.String("uid", uid), zap.Error(err))
	}

	return &session, nil
}

// InvalidateSession removes a session
func (m *Manager) InvalidateSession(ctx context.Context, uid, jti string) error {
	if err := m.client.Del(ctx, m.sessionKey(uid, jti)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// InvalidateAllUserSessions removes all sessions for a user
func (m *Manager) InvalidateAllUserSessions(ctx context.Context, uid string) error {
	pattern := fmt.Sprintf("session:%s:*", uid)

	iter := m.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := m.client.Del(ctx, iter.Val()).Err(); err != nil {
			m.logger.Warn("failed to delete session", zap.String("key", iter.Val()), zap.Error(err))
		}
	}

	return iter.Err()
}

// GetUserActiveSessions returns all active sessions for a user
func (m *Manager) GetUserActiveSessions(ctx context.Context, uid string) ([]*SessionData, error) {
	pattern := fmt.Sprintf("session:%s:*", uid)

	sessions := []*SessionData{}
	iter := m.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		data, err := m.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}

		var session SessionData
		if err := json.Unmarshal(data, &session); err != nil {
			continue
		}

		sessions = append(sessions, &session)
	}

	return sessions, iter.Err()
}

// IsTokenBlacklisted checks if a token is blacklisted
func (m *Manager) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := m.client.Exists(ctx, m.blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return exists > 0, nil
}

// BlacklistToken adds a token to the blacklist for the rest of its lifetime
func (m *Manager) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return m.client.Set(ctx, m.blacklistKey(jti), "1", ttl).Err()
}

func (m *Manager) save(ctx context.Context, key string, session *SessionData) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return m.client.Set(ctx, key, data, ttl).Err()
}

func (m *Manager) sessionKey(uid, jti string) string {
	return fmt.Sprintf("session:%s:%s", uid, jti)
}

func (m *Manager) blacklistKey(jti string) string {
	return fmt.Sprintf("blacklist:%s", jti)
}
