package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	ErrInvalidConversation = errors.New("conversation id is empty")
	ErrInvalidTurn         = errors.New("turn role and content are required")
	ErrUnknownBackend      = errors.New("unknown history backend")
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationLog is the append-only history the supervisor reads before planning.
type ConversationLog interface {
	History(ctx context.Context, conversationID string, limit int) ([]Turn, error)
	Append(ctx context.Context, conversationID string, turn Turn) error
}

type Config struct {
	Backend string `envconfig:"BACKEND" default:"memory"`
	Limit   int    `envconfig:"LIMIT" default:"10"`

	SQLitePath  string        `envconfig:"SQLITE_PATH" split_words:"true" default:"supervisor.db"`
	PostgresDSN string        `envconfig:"POSTGRES_DSN" split_words:"true"`
	TTL         time.Duration `envconfig:"TTL" default:"24h"`

	Upstash UpstashRedisConfig `envconfig:"UPSTASH"`
}

// Open builds the log selected by cfg.Backend.
func Open(ctx context.Context, cfg Config) (ConversationLog, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "memory":
		return NewMemoryLog(), nil
	case "upstash":
		return NewUpstashRedisLog(cfg.Upstash, WithTTL(cfg.TTL))
	case "sqlite":
		return NewSQLiteLog(ctx, cfg.SQLitePath)
	case "postgres":
		return NewPostgresLog(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

func validateTurn(conversationID string, turn Turn) error {
	if strings.TrimSpace(conversationID) == "" {
		return ErrInvalidConversation
	}
	if strings.TrimSpace(turn.Role) == "" || turn.Content == "" {
		return ErrInvalidTurn
	}
	return nil
}

func stamp(turn Turn) Turn {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	turn.CreatedAt = turn.CreatedAt.UTC()
	return turn
}

// MemoryLog keeps conversations in process memory.
type MemoryLog struct {
	mu    sync.RWMutex
	turns map[string][]Turn
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{turns: make(map[string][]Turn)}
}

func (m *MemoryLog) History(_ context.Context, conversationID string, limit int) ([]Turn, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrInvalidConversation
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	turns := m.turns[conversationID]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return append([]Turn(nil), turns...), nil
}

func (m *MemoryLog) Append(_ context.Context, conversationID string, turn Turn) error {
	if err := validateTurn(conversationID, turn); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[conversationID] = append(m.turns[conversationID], stamp(turn))
	return nil
}
