package adapter

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "chatwire/internal/pkg/chat/application/domain"
	apperrors "chatwire/pkg/errors"
)

// PgMessageStore persists the append-only message log. Appends are
// serialized per conversation with a keyed mutex so server-assigned
// timestamps and ids are monotonic within each conversation; writes to
// different conversations proceed in parallel.
type PgMessageStore struct {
	pool *pgxpool.Pool

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewPgMessageStore(pool *pgxpool.Pool) *PgMessageStore {
	return &PgMessageStore{pool: pool, locks: make(map[int64]*sync.Mutex)}
}

func (s *PgMessageStore) conversationLock(chatID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.locks[chatID]
	if l == nil {
		l = &sync.Mutex{}
		s.locks[chatID] = l
	}
	return l
}

const messageColumns = "id, conversation_id, sender_id, receiver_id, content, created_at, is_deleted, status, read_at"

func scanMessage(row pgx.Row) (*chat.Message, error) {
	var m chat.Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID,
		&m.Content, &m.CreatedAt, &m.IsDeleted, &m.Status, &m.ReadAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PgMessageStore) Append(ctx context.Context, m chat.Message) (*chat.Message, error) {
	l := s.conversationLock(m.ConversationID)
	l.Lock()
	defer l.Unlock()

	m.CreatedAt = time.Now().UTC()
	m.Status = chat.StatusSent
	err := s.pool.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, sender_id, receiver_id, content, created_at, is_deleted, status)
		VALUES ($1, $2, $3, $4, $5, false, $6)
		RETURNING id
	`, m.ConversationID, m.SenderID, m.ReceiverID, m.Content, m.CreatedAt, m.Status).Scan(&m.ID)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PgMessageStore) GetMessage(ctx context.Context, id int64) (*chat.Message, error) {
	return scanMessage(s.pool.QueryRow(ctx,
		"SELECT "+messageColumns+" FROM chat.message WHERE id = $1", id))
}

// SetStatus applies only forward transitions. The rank guard runs inside
// the UPDATE, so a row that advanced concurrently (a read receipt racing
// the delivered advance) is left untouched and returned as it stands.
func (s *PgMessageStore) SetStatus(ctx context.Context, id int64, status chat.MessageStatus, readAt *time.Time) (*chat.Message, error) {
	m, err := scanMessage(s.pool.QueryRow(ctx, `
		UPDATE chat.message
		SET status = $2, read_at = COALESCE($3, read_at)
		WHERE id = $1
		  AND (CASE status WHEN 'sent' THEN 0 WHEN 'delivered' THEN 1 ELSE 2 END)
		      <= (CASE $2::text WHEN 'sent' THEN 0 WHEN 'delivered' THEN 1 ELSE 2 END)
		RETURNING `+messageColumns,
		id, status, readAt))
	if errors.Is(err, apperrors.ErrMessageNotFound) {
		// Guarded out, or genuinely missing; re-read to tell them apart.
		return s.GetMessage(ctx, id)
	}
	return m, err
}

func (s *PgMessageStore) Latest(ctx context.Context, chatID int64) (*chat.Message, error) {
	m, err := scanMessage(s.pool.QueryRow(ctx, `
		SELECT `+messageColumns+` FROM chat.message
		WHERE conversation_id = $1 AND is_deleted = false
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, chatID))
	if errors.Is(err, apperrors.ErrMessageNotFound) {
		return nil, nil
	}
	return m, err
}

func (s *PgMessageStore) Range(ctx context.Context, chatID int64, excludeDeleted bool) ([]chat.Message, error) {
	query := "SELECT " + messageColumns + " FROM chat.message WHERE conversation_id = $1"
	if excludeDeleted {
		query += " AND is_deleted = false"
	}
	query += " ORDER BY created_at, id"

	rows, err := s.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID,
			&m.Content, &m.CreatedAt, &m.IsDeleted, &m.Status, &m.ReadAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
