package state

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type turnRow struct {
	bun.BaseModel `bun:"table:conversation_turns,alias:ct"`

	ID             int64     `bun:"id,pk,autoincrement"`
	ConversationID string    `bun:"conversation_id,notnull"`
	Role           string    `bun:"role,notnull"`
	Content        string    `bun:"content,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// PostgresLog stores turns in Postgres through bun.
type PostgresLog struct {
	db *bun.DB
}

func NewPostgresLog(ctx context.Context, dsn string) (*PostgresLog, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if _, err := db.NewCreateTable().
		Model((*turnRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("create conversation_turns: %w", err)
	}
	if _, err := db.NewCreateIndex().
		Model((*turnRow)(nil)).
		Index("conversation_turns_conversation_id_idx").
		Column("conversation_id").
		IfNotExists().
		Exec(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("create conversation_turns index: %w", err)
	}

	return &PostgresLog{db: db}, nil
}

func (p *PostgresLog) History(ctx context.Context, conversationID string, limit int) ([]Turn, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrInvalidConversation
	}

	var rows []turnRow
	q := p.db.NewSelect().
		Model(&rows).
		Where("conversation_id = ?", conversationID).
		OrderExpr("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	turns := make([]Turn, len(rows))
	for i, row := range rows {
		turns[len(rows)-1-i] = Turn{
			Role:      row.Role,
			Content:   row.Content,
			CreatedAt: row.CreatedAt.UTC(),
		}
	}
	return turns, nil
}

func (p *PostgresLog) Append(ctx context.Context, conversationID string, turn Turn) error {
	if err := validateTurn(conversationID, turn); err != nil {
		return err
	}
	turn = stamp(turn)
	row := &turnRow{
		ConversationID: conversationID,
		Role:           turn.Role,
		Content:        turn.Content,
		CreatedAt:      turn.CreatedAt,
	}
	if _, err := p.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

func (p *PostgresLog) Close() error {
	return p.db.Close()
}
