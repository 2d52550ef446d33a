package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quickchat/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = "id, email, full_name, password_hash, avatar_url, bio, is_online, last_seen, created_at, updated_at"

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, full_name, password_hash, avatar_url, bio, is_online, last_seen, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.FullName, user.PasswordHash,
		user.AvatarURL, user.Bio, user.IsOnline, user.LastSeen,
		user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

func (r *UserRepo) ListOthers(ctx context.Context, userID uuid.UUID) ([]domain.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id <> $1 ORDER BY full_name"

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUserRow(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET full_name = $1, bio = $2, avatar_url = $3, updated_at = $4
		WHERE id = $5`
	_, err := r.pool.Exec(ctx, query,
		user.FullName, user.Bio, user.AvatarURL, time.Now().UTC(), user.ID,
	)
	return err
}

func (r *UserRepo) SetOnline(ctx context.Context, userID uuid.UUID, online bool) error {
	query := `UPDATE users SET is_online = $1, last_seen = $2 WHERE id = $3`
	_, err := r.pool.Exec(ctx, query, online, time.Now().UTC(), userID)
	return err
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := scanUserRow(r.pool.QueryRow(ctx, query, arg), &u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUserRow(row pgx.Row, u *domain.User) error {
	return row.Scan(
		&u.ID, &u.Email, &u.FullName, &u.PasswordHash,
		&u.AvatarURL, &u.Bio, &u.IsOnline, &u.LastSeen,
		&u.CreatedAt, &u.UpdatedAt,
	)
}
