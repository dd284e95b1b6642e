// Package repository はデータ永続化のインターフェースを定義する。
// PostgreSQL実装とインメモリ実装を提供し、起動時にどちらかを選択する。
package repository

import (
	"context"

	"github.com/hitoshi/uranai/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Upsert はIdP発行のIDをキーにユーザーを作成または更新する。
	// 既存ユーザーの場合はプロフィールフィールドを上書きしupdated_atを更新する。
	// curse_level、fortune_streak、created_atは更新時に変更しない。
	// 新規ユーザーの場合はカウンターを0で初期化する。
	Upsert(ctx context.Context, profile *model.UserProfile) (*model.User, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// FortuneRepository は占い結果の永続化インターフェース。
// 占い結果は追記専用で、更新・削除の操作は公開しない。
type FortuneRepository interface {
	// Create は占い結果を作成する。IDと作成時刻はストア側で採番する。
	Create(ctx context.Context, input *model.FortuneInput) (*model.Fortune, error)

	// ListAll は全占い結果をtimestamp降順（新しい順）で返す。
	// 同時刻のレコードはid降順で決定的に並べる。0件の場合は空スライスを返す。
	ListAll(ctx context.Context) ([]*model.Fortune, error)

	// FindByID は指定IDの占い結果を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Fortune, error)
}
