// Package contextstore persists conversation history in Redis, keyed by
// session, capped to the most recent turns and bounded by a TTL.
package contextstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carwise/llm-orchestrator/internal/observability"
	"github.com/carwise/llm-orchestrator/pkg/models"
)

const (
	// MaxTurns caps stored history to the most recent entries. History is
	// trimmed to this cap immediately before every write.
	MaxTurns = 20

	// TTL bounds how long a session's history survives without activity.
	// It is refreshed on every write.
	TTL = 24 * time.Hour
)

// Store is the Redis-backed conversation memory. Reads fail open: any store
// error yields an empty history rather than an error, so an unavailable
// cache degrades to a fresh conversation instead of blocking the request.
//
// Read-modify-write is not atomic across concurrent writers for the same
// session; a lost update under concurrent same-session writes is accepted,
// as sessions normally carry one in-flight request at a time.
type Store struct {
	rdb    redis.Cmdable
	logger *observability.Logger
}

// New creates a context store on the given Redis client.
func New(rdb redis.Cmdable, logger *observability.Logger) *Store {
	return &Store{rdb: rdb, logger: logger}
}

func key(sessionID string) string {
	return "chat:" + sessionID + ":history"
}

// GetHistory returns the stored turns for a session, most recent MaxTurns.
// Returns an empty slice when the session is absent or the store fails.
func (s *Store) GetHistory(ctx context.Context, sessionID string) []models.Turn {
	data, err := s.rdb.Get(ctx, key(sessionID)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Error(ctx, "failed to read context from redis", "error", err, "session_id", sessionID)
		}
		return []models.Turn{}
	}

	var turns []models.Turn
	if err := json.Unmarshal([]byte(data), &turns); err != nil {
		s.logger.Error(ctx, "failed to decode stored context", "error", err, "session_id", sessionID)
		return []models.Turn{}
	}

	return trim(turns)
}

// AppendTurn appends a single turn to the session history.
func (s *Store) AppendTurn(ctx context.Context, sessionID string, turn models.Turn) {
	s.AppendTurns(ctx, sessionID, []models.Turn{turn})
}

// AppendTurns appends turns to the session history, trims to MaxTurns, and
// writes back with a refreshed TTL. Write errors are logged, not propagated.
func (s *Store) AppendTurns(ctx context.Context, sessionID string, turns []models.Turn) {
	if len(turns) == 0 {
		return
	}

	history := s.GetHistory(ctx, sessionID)
	history = trim(append(history, turns...))

	data, err := json.Marshal(history)
	if err != nil {
		s.logger.Error(ctx, "failed to encode context", "error", err, "session_id", sessionID)
		return
	}

	if err := s.rdb.SetEx(ctx, key(sessionID), string(data), TTL).Err(); err != nil {
		s.logger.Error(ctx, "failed to write context to redis", "error", err, "session_id", sessionID)
	}
}

// ClearHistory deletes the stored history for a session. Idempotent; errors
// are logged, not propagated.
func (s *Store) ClearHistory(ctx context.Context, sessionID string) {
	if err := s.rdb.Del(ctx, key(sessionID)).Err(); err != nil {
		s.logger.Error(ctx, "failed to clear context", "error", err, "session_id", sessionID)
		return
	}
	s.logger.Info(ctx, "context cleared", "session_id", sessionID)
}

// TurnCount returns the number of stored turns for a session.
func (s *Store) TurnCount(ctx context.Context, sessionID string) int {
	return len(s.GetHistory(ctx, sessionID))
}

func trim(turns []models.Turn) []models.Turn {
	if len(turns) <= MaxTurns {
		return turns
	}
	return turns[len(turns)-MaxTurns:]
}
