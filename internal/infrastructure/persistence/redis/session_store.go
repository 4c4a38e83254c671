package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps sessions as Redis hashes under session:<id>
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore creates a Redis session store
func NewSessionStore(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix}
}

func (s *SessionStore) key(id string) string {
	return fmt.Sprintf("%ssession:%s", s.prefix, id)
}

// Create stores a session that expires after ttl
func (s *SessionStore) Create(ctx context.Context, session outbound.Session, ttl time.Duration) error {
	key := s.key(session.ID)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"user_id":    session.UserID.String(),
			"ip_address": session.IPAddress,
			"user_agent": session.UserAgent,
			"created_at": session.CreatedAt.Unix(),
			"expires_at": session.ExpiresAt.Unix(),
		})
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get loads a session
func (s *SessionStore) Get(ctx context.Context, id string) (*outbound.Session, error) {
	result, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if len(result) == 0 {
		return nil, outbound.ErrSessionNotFound
	}

	userID, err := uuid.Parse(result["user_id"])
	if err != nil {
		return nil, outbound.ErrSessionNotFound
	}

	return &outbound.Session{
		ID:        id,
		UserID:    userID,
		IPAddress: result["ip_address"],
		UserAgent: result["user_agent"],
		CreatedAt: unixField(result["created_at"]),
		ExpiresAt: unixField(result["expires_at"]),
	}, nil
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return outbound.ErrSessionNotFound
	}
	return nil
}

func unixField(v string) time.Time {
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
