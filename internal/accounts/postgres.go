package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/icebob/kantab-sub001/internal/auth"
	"github.com/icebob/kantab-sub001/internal/db"
)

// PostgresStore is the canonical account store.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindOrCreateByProfile(
	ctx context.Context,
	profile auth.Profile,
) (*Account, error) {

	if profile.Provider == "" || profile.ExternalID == "" {
		return nil, fmt.Errorf("accounts: profile missing provider identity")
	}

	// 1. Try identity lookup (provider + provider_user_id)
	account, err := s.byQuery(ctx, `
		SELECT u.id, u.email, u.full_name, u.avatar_url, u.roles
		FROM users u
		JOIN identities i ON i.user_id = u.id
		WHERE i.provider = $1
		  AND i.provider_user_id = $2
	`, profile.Provider, profile.ExternalID)

	if err == nil {
		return account, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	// 2. Try email-based linking (existing user, new provider)
	if profile.Email != "" {
		account, err = s.byQuery(ctx, `
			SELECT id, email, full_name, avatar_url, roles
			FROM users
			WHERE LOWER(email) = LOWER($1)
		`, profile.Email)

		if err == nil {
			if err := s.insertIdentity(ctx, account.ID, profile); err != nil {
				return nil, err
			}
			return account, nil
		}
		if err != sql.ErrNoRows {
			return nil, err
		}
	}

	// 3. Create new user + identity mapping
	var userID uuid.UUID
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, email_verified, full_name, avatar_url)
		VALUES (NULLIF($1, ''), $2, $3, $4)
		RETURNING id
	`,
		profile.Email,
		profile.Email != "",
		profile.FullName,
		profile.AvatarURL,
	).Scan(&userID)

	if err != nil {
		return nil, err
	}

	if err := s.insertIdentity(ctx, userID.String(), profile); err != nil {
		return nil, err
	}

	return &Account{
		ID:        userID.String(),
		Email:     profile.Email,
		FullName:  profile.FullName,
		AvatarURL: profile.AvatarURL,
		Roles:     []string{"user"},
	}, nil
}

func (s *PostgresStore) VerifyPassword(
	ctx context.Context,
	email string,
	password string,
) (*Account, error) {

	var (
		account      Account
		userID       uuid.UUID
		mail         sql.NullString
		passwordHash sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, avatar_url, roles, password_hash
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(
		&userID,
		&mail,
		&account.FullName,
		&account.AvatarURL,
		pq.Array(&account.Roles),
		&passwordHash,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if !passwordHash.Valid || passwordHash.String == "" {
		return nil, ErrPasswordLoginDisabled
	}

	if err := CheckPassword(passwordHash.String, password); err != nil {
		return nil, ErrWrongPassword
	}

	account.ID = userID.String()
	account.Email = mail.String
	return &account, nil
}

func (s *PostgresStore) byQuery(ctx context.Context, query string, args ...any) (*Account, error) {
	var (
		account Account
		userID  uuid.UUID
		mail    sql.NullString
	)

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&userID,
		&mail,
		&account.FullName,
		&account.AvatarURL,
		pq.Array(&account.Roles),
	)
	if err != nil {
		return nil, err
	}

	account.ID = userID.String()
	account.Email = mail.String
	return &account, nil
}

func (s *PostgresStore) insertIdentity(ctx context.Context, userID string, profile auth.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (user_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
	`,
		userID,
		profile.Provider,
		profile.ExternalID,
	)
	return err
}
