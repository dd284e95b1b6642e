// Package model はドメインモデルを定義する。
package model

import "time"

// ReadingTypeSingleCard は現行で唯一の占い種別。
// 将来のスプレッド対応のため自由文字列として保存する。
const ReadingTypeSingleCard = "single-card"

// Fortune は1回の占い結果を表す永続化エンティティ。
// 作成後の更新・削除は行わない（追記専用ログ）。
type Fortune struct {
	ID          string
	UserID      *string // nilは匿名リクエスト
	CardName    string
	FortuneText string
	CardImage   *string
	ReadingType string
	IsShared    bool // 予約フィールド。現行の挙動では参照されない
	Timestamp   time.Time
}

// FortuneInput はFortune作成時の入力を表す。
// IDとTimestampはリポジトリが採番する。
type FortuneInput struct {
	UserID      *string
	CardName    string
	FortuneText string
	CardImage   *string
	ReadingType string
	IsShared    bool
}
