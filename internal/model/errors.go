// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// Messageはそのままクライアントへ返すため、内部詳細を含めてはならない。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, fortune, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeGenerationFailed = "GENERATION_FAILED"
	ErrCodeStorageFailed    = "STORAGE_FAILED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeFortuneNotFound  = "FORTUNE_NOT_FOUND"
)

// NewGenerationError は占い生成失敗エラーを生成する。
// 補完プロバイダー側の失敗はすべてこのエラーに集約し、リトライしない。
func NewGenerationError() *APIError {
	return &APIError{
		Code:     ErrCodeGenerationFailed,
		Message:  "The spirits are unable to communicate at this time",
		Category: "fortune",
		Action:   "Take a breath and draw again.",
	}
}

// NewStorageReadError は占い履歴の読み取り失敗エラーを生成する。
// 詳細はログのみに記録する。
func NewStorageReadError() *APIError {
	return &APIError{
		Code:     ErrCodeStorageFailed,
		Message:  "Failed to retrieve fortune history",
		Category: "fortune",
		Action:   "Wait a moment and try again.",
	}
}

// NewStorageWriteError は占い結果の記録失敗エラーを生成する。
// クライアントには生成失敗と同じテーマ内メッセージを返す（原因は区別させない）。
func NewStorageWriteError() *APIError {
	return &APIError{
		Code:     ErrCodeStorageFailed,
		Message:  "The spirits are unable to communicate at this time",
		Category: "fortune",
		Action:   "Take a breath and draw again.",
	}
}

// NewUnauthorizedError は認証が必要な操作への未認証アクセスエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Unauthorized",
		Category: "auth",
		Action:   "Sign in and try again.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: "auth",
		Action:   "Sign in again.",
	}
}

// NewFortuneNotFoundError は占い結果が見つからない場合のエラーを生成する。
func NewFortuneNotFoundError(fortuneID string) *APIError {
	return &APIError{
		Code:     ErrCodeFortuneNotFound,
		Message:  fmt.Sprintf("Fortune not found: %s", fortuneID),
		Category: "fortune",
		Action:   "Check the fortune id.",
	}
}
