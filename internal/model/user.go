// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// IDは外部IdP（Google）が発行する安定した識別子をそのまま使用する。
// プロフィールフィールドはログインコールバックのたびにIdPの値で上書きされる。
type User struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string

	// CurseLevel / FortuneStreak は将来機能のための予約カウンター。
	// 現行のロジックでは読み取りも加算も行わない。
	CurseLevel    int
	FortuneStreak int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserProfile はIdPから取得したプロフィールのupsert入力を表す。
// 予約カウンターを含まないのは、upsertで上書きしてはならないため。
type UserProfile struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
