package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/uranai/internal/model"
)

// PostgresFortuneRepo はPostgreSQLを使用した占い結果リポジトリ。
type PostgresFortuneRepo struct {
	db *sql.DB
}

// NewPostgresFortuneRepo はPostgresFortuneRepoを生成する。
func NewPostgresFortuneRepo(db *sql.DB) *PostgresFortuneRepo {
	return &PostgresFortuneRepo{db: db}
}

// Create は占い結果を作成する。
// IDはUUIDで採番し、timestampはDBのクロックで確定させる。
func (r *PostgresFortuneRepo) Create(ctx context.Context, input *model.FortuneInput) (*model.Fortune, error) {
	fortune := &model.Fortune{
		ID:          uuid.New().String(),
		UserID:      input.UserID,
		CardName:    input.CardName,
		FortuneText: input.FortuneText,
		CardImage:   input.CardImage,
		ReadingType: input.ReadingType,
		IsShared:    input.IsShared,
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO fortunes (id, user_id, card_name, fortune_text, card_image, reading_type, is_shared)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING timestamp`,
		fortune.ID, fortune.UserID, fortune.CardName, fortune.FortuneText,
		fortune.CardImage, fortune.ReadingType, fortune.IsShared,
	).Scan(&fortune.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to insert fortune: %w", err)
	}

	return fortune, nil
}

// ListAll は全占い結果をtimestamp降順で返す。同時刻はid降順で決定的に並べる。
func (r *PostgresFortuneRepo) ListAll(ctx context.Context) ([]*model.Fortune, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, card_name, fortune_text, card_image, reading_type, is_shared, timestamp
		 FROM fortunes
		 ORDER BY timestamp DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list fortunes: %w", err)
	}
	defer rows.Close()

	fortunes := []*model.Fortune{}
	for rows.Next() {
		fortune, err := scanFortune(rows)
		if err != nil {
			return nil, err
		}
		fortunes = append(fortunes, fortune)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fortunes: %w", err)
	}

	return fortunes, nil
}

// FindByID は指定IDの占い結果を取得する。見つからない場合はnilを返す。
func (r *PostgresFortuneRepo) FindByID(ctx context.Context, id string) (*model.Fortune, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, card_name, fortune_text, card_image, reading_type, is_shared, timestamp
		 FROM fortunes WHERE id = $1`,
		id,
	)

	fortune, err := scanFortune(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return fortune, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanFortune は1行をFortuneに読み取る。
func scanFortune(row rowScanner) (*model.Fortune, error) {
	fortune := &model.Fortune{}
	var userID, cardImage sql.NullString

	err := row.Scan(&fortune.ID, &userID, &fortune.CardName, &fortune.FortuneText,
		&cardImage, &fortune.ReadingType, &fortune.IsShared, &fortune.Timestamp)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan fortune: %w", err)
	}

	if userID.Valid {
		fortune.UserID = &userID.String
	}
	if cardImage.Valid {
		fortune.CardImage = &cardImage.String
	}

	return fortune, nil
}

// compile-time interface check
var _ FortuneRepository = (*PostgresFortuneRepo)(nil)
