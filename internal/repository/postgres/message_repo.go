package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quickchat/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, text, image_url, audio_url, video_url, seen, seen_at, is_deleted, deleted_for, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.SenderID, msg.ReceiverID,
		msg.Content.Text, msg.Content.ImageURL, msg.Content.AudioURL, msg.Content.VideoURL,
		msg.Seen, msg.SeenAt, msg.Deletion.Tombstoned, msg.Deletion.HiddenFor,
		msg.CreatedAt,
	)
	return err
}

const messageSelect = `
	SELECT m.id, m.sender_id, m.receiver_id, m.text, m.image_url, m.audio_url, m.video_url,
		m.seen, m.seen_at, m.is_deleted, m.deleted_for, m.created_at,
		u.full_name, u.avatar_url
	FROM messages m
	JOIN users u ON m.sender_id = u.id`

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	var msg domain.Message
	err := scanMessageRow(r.pool.QueryRow(ctx, messageSelect+" WHERE m.id = $1", id), &msg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *MessageRepo) ListConversation(ctx context.Context, userA, userB uuid.UUID, before *uuid.UUID, limit int) ([]domain.Message, error) {
	var query string
	var args []any

	if before != nil {
		query = fmt.Sprintf(messageSelect+`
			WHERE ((m.sender_id = $1 AND m.receiver_id = $2) OR (m.sender_id = $2 AND m.receiver_id = $1))
				AND (m.created_at, m.id) < (SELECT created_at, id FROM messages WHERE id = $3)
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT %d`, limit)
		args = []any{userA, userB, *before}
	} else {
		query = fmt.Sprintf(messageSelect+`
			WHERE ((m.sender_id = $1 AND m.receiver_id = $2) OR (m.sender_id = $2 AND m.receiver_id = $1))
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT %d`, limit)
		args = []any{userA, userB}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := scanMessageRow(rows, &msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	// Reverse to chronological order (query returns DESC)
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, rows.Err()
}

func (r *MessageRepo) MarkSeenBulk(ctx context.Context, senderID, receiverID uuid.UUID, seenAt time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE messages
		SET seen = TRUE, seen_at = $3
		WHERE sender_id = $1 AND receiver_id = $2 AND seen = FALSE
		RETURNING id`

	rows, err := r.pool.Query(ctx, query, senderID, receiverID, seenAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *MessageRepo) MarkSeen(ctx context.Context, id uuid.UUID, seenAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE messages SET seen = TRUE, seen_at = $2 WHERE id = $1`, id, seenAt)
	return err
}

func (r *MessageRepo) HideForViewer(ctx context.Context, id, viewerID uuid.UUID) error {
	// Guarded append keeps deleted_for a set even under concurrent requests.
	query := `
		UPDATE messages
		SET deleted_for = array_append(deleted_for, $2)
		WHERE id = $1 AND NOT (deleted_for @> ARRAY[$2]::uuid[])`
	_, err := r.pool.Exec(ctx, query, id, viewerID)
	return err
}

func (r *MessageRepo) Tombstone(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE messages SET is_deleted = TRUE WHERE id = $1`, id)
	return err
}

func (r *MessageRepo) CountUnseenBySender(ctx context.Context, receiverID uuid.UUID) (map[uuid.UUID]int, error) {
	query := `
		SELECT sender_id, COUNT(*)
		FROM messages
		WHERE receiver_id = $1 AND seen = FALSE AND is_deleted = FALSE
			AND NOT (deleted_for @> ARRAY[$1]::uuid[])
		GROUP BY sender_id`

	rows, err := r.pool.Query(ctx, query, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var senderID uuid.UUID
		var n int
		if err := rows.Scan(&senderID, &n); err != nil {
			return nil, err
		}
		counts[senderID] = n
	}
	return counts, rows.Err()
}

func scanMessageRow(row pgx.Row, msg *domain.Message) error {
	return row.Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID,
		&msg.Content.Text, &msg.Content.ImageURL, &msg.Content.AudioURL, &msg.Content.VideoURL,
		&msg.Seen, &msg.SeenAt, &msg.Deletion.Tombstoned, &msg.Deletion.HiddenFor,
		&msg.CreatedAt,
		&msg.SenderName, &msg.SenderAvatar,
	)
}
