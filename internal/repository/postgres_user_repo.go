package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/uranai/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	var email, firstName, lastName, profileImageURL sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, profile_image_url,
		        curse_level, fortune_streak, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &email, &firstName, &lastName, &profileImageURL,
		&user.CurseLevel, &user.FortuneStreak, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	user.Email = email.String
	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.ProfileImageURL = profileImageURL.String

	return user, nil
}

// Upsert はIdP発行のIDをキーにユーザーを作成または更新する。
// ON CONFLICTでプロフィールのみ上書きし、予約カウンターとcreated_atは既存値を維持する。
func (r *PostgresUserRepo) Upsert(ctx context.Context, profile *model.UserProfile) (*model.User, error) {
	user := &model.User{}
	var email, firstName, lastName, profileImageURL sql.NullString
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name, profile_image_url)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   email = EXCLUDED.email,
		   first_name = EXCLUDED.first_name,
		   last_name = EXCLUDED.last_name,
		   profile_image_url = EXCLUDED.profile_image_url,
		   updated_at = now()
		 RETURNING id, email, first_name, last_name, profile_image_url,
		           curse_level, fortune_streak, created_at, updated_at`,
		profile.ID,
		nullIfEmpty(profile.Email),
		nullIfEmpty(profile.FirstName),
		nullIfEmpty(profile.LastName),
		nullIfEmpty(profile.ProfileImageURL),
	).Scan(&user.ID, &email, &firstName, &lastName, &profileImageURL,
		&user.CurseLevel, &user.FortuneStreak, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	user.Email = email.String
	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.ProfileImageURL = profileImageURL.String

	return user, nil
}

// nullIfEmpty は空文字列をNULLとして保存するための変換。
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
