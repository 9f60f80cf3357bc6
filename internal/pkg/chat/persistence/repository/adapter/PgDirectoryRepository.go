package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "chatwire/internal/pkg/chat/application/domain"
	apperrors "chatwire/pkg/errors"
)

// PgDirectoryRepository answers identity and membership questions from
// Postgres. Conversations, participants and accounts live in the chat
// schema.
type PgDirectoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgDirectoryRepository(pool *pgxpool.Pool) *PgDirectoryRepository {
	return &PgDirectoryRepository{pool: pool}
}

const userColumns = "id, username, public_id, email, profile_picture, created_at"

func (r *PgDirectoryRepository) scanUser(row pgx.Row) (*chat.User, error) {
	var u chat.User
	err := row.Scan(&u.ID, &u.Username, &u.PublicID, &u.Email, &u.ProfilePicture, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgDirectoryRepository) ResolveUser(ctx context.Context, publicID string) (*chat.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM chat.account WHERE public_id = $1", publicID))
}

func (r *PgDirectoryRepository) UserByID(ctx context.Context, id int64) (*chat.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM chat.account WHERE id = $1", id))
}

func (r *PgDirectoryRepository) UserByUsername(ctx context.Context, username string) (*chat.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM chat.account WHERE username = $1", username))
}

func (r *PgDirectoryRepository) GetConversation(ctx context.Context, chatID int64) (*chat.Conversation, error) {
	var c chat.Conversation
	err := r.pool.QueryRow(ctx,
		"SELECT id, kind, name, created_at FROM chat.conversation WHERE id = $1", chatID,
	).Scan(&c.ID, &c.Kind, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgDirectoryRepository) IsParticipant(ctx context.Context, chatID, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat.participant
			WHERE conversation_id = $1 AND user_id = $2
		)
	`, chatID, userID).Scan(&exists)
	return exists, err
}

func (r *PgDirectoryRepository) ParticipantsOf(ctx context.Context, chatID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT user_id FROM chat.participant WHERE conversation_id = $1 ORDER BY joined_at", chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgDirectoryRepository) DirectPeer(ctx context.Context, chatID, userID int64) (*chat.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM chat.account
		WHERE id = (
			SELECT p.user_id FROM chat.participant p
			JOIN chat.conversation c ON c.id = p.conversation_id
			WHERE p.conversation_id = $1 AND p.user_id <> $2 AND c.kind = 'direct'
			LIMIT 1
		)
	`, chatID, userID)
	u, err := r.scanUser(row)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		// Group conversation, or the caller is not in this chat.
		return nil, nil
	}
	return u, err
}

func (r *PgDirectoryRepository) ConversationsOf(ctx context.Context, userID int64) ([]chat.Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.kind, c.name, c.created_at
		FROM chat.conversation c
		JOIN chat.participant p ON p.conversation_id = c.id
		WHERE p.user_id = $1
		ORDER BY c.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []chat.Conversation
	for rows.Next() {
		var c chat.Conversation
		if err := rows.Scan(&c.ID, &c.Kind, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func (r *PgDirectoryRepository) CreateDirectConversation(ctx context.Context, userA, userB int64) (*chat.Conversation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Pair uniqueness is derived from the participant set: any direct
	// conversation that both users already belong to blocks a second one.
	var existing int64
	err = tx.QueryRow(ctx, `
		SELECT c.id
		FROM chat.conversation c
		JOIN chat.participant pa ON pa.conversation_id = c.id AND pa.user_id = $1
		JOIN chat.participant pb ON pb.conversation_id = c.id AND pb.user_id = $2
		WHERE c.kind = 'direct'
		LIMIT 1
	`, userA, userB).Scan(&existing)
	if err == nil {
		return nil, apperrors.ErrContactExists
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	c := chat.Conversation{Kind: chat.KindDirect, CreatedAt: time.Now().UTC()}
	err = tx.QueryRow(ctx,
		"INSERT INTO chat.conversation (kind, created_at) VALUES ($1, $2) RETURNING id",
		c.Kind, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return nil, err
	}

	for _, uid := range []int64{userA, userB} {
		if _, err := tx.Exec(ctx, `
			INSERT INTO chat.participant (conversation_id, user_id, joined_at, is_admin)
			VALUES ($1, $2, $3, false)
		`, c.ID, uid, c.CreatedAt); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgDirectoryRepository) CreateGroupConversation(ctx context.Context, name string, creatorID int64, memberIDs []int64) (*chat.Conversation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	c := chat.Conversation{Kind: chat.KindGroup, Name: &name, CreatedAt: now}
	err = tx.QueryRow(ctx,
		"INSERT INTO chat.conversation (kind, name, created_at) VALUES ($1, $2, $3) RETURNING id",
		c.Kind, name, now,
	).Scan(&c.ID)
	if err != nil {
		return nil, err
	}

	insert := func(uid int64, admin bool) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO chat.participant (conversation_id, user_id, joined_at, is_admin)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (conversation_id, user_id) DO NOTHING
		`, c.ID, uid, now, admin)
		return err
	}

	if err := insert(creatorID, true); err != nil {
		return nil, err
	}
	for _, uid := range memberIDs {
		if uid == creatorID {
			continue
		}
		if err := insert(uid, false); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgDirectoryRepository) SaveNotification(ctx context.Context, userID int64, text string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat.notification (user_id, message, read, created_at)
		VALUES ($1, $2, false, $3)
	`, userID, text, time.Now().UTC())
	return err
}
