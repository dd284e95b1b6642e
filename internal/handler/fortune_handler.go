// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/uranai/internal/fortune"
	"github.com/hitoshi/uranai/internal/middleware"
	"github.com/hitoshi/uranai/internal/model"
)

// FortuneServiceInterface は占いハンドラーが必要とするサービスインターフェース。
type FortuneServiceInterface interface {
	// Draw は占いを1回実行し、結果を永続化して返す。
	Draw(ctx context.Context, userID *string) (*fortune.Result, error)
	// History は全占い履歴を新しい順で返す。
	History(ctx context.Context) ([]*model.Fortune, error)
	// Get は指定IDの占い結果を返す。
	Get(ctx context.Context, id string) (*model.Fortune, error)
}

// FortuneHandler は占い関連のHTTPハンドラー。
type FortuneHandler struct {
	service FortuneServiceInterface
}

// NewFortuneHandler はFortuneHandlerを生成する。
func NewFortuneHandler(service FortuneServiceInterface) *FortuneHandler {
	return &FortuneHandler{service: service}
}

// drawResponse は占い実行のAPIレスポンス。
type drawResponse struct {
	CardName    string `json:"cardName"`
	FortuneText string `json:"fortuneText"`
	CardImage   string `json:"cardImage"`
}

// fortuneResponse は占い履歴のAPIレスポンス。
type fortuneResponse struct {
	ID          string    `json:"id"`
	UserID      *string   `json:"userId"`
	CardName    string    `json:"cardName"`
	FortuneText string    `json:"fortuneText"`
	CardImage   *string   `json:"cardImage"`
	ReadingType string    `json:"readingType"`
	IsShared    bool      `json:"isShared"`
	Timestamp   time.Time `json:"timestamp"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
// errorフィールドにユーザー向けメッセージを持つ。
type apiErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// Draw は占いを1回実行する。
// POST /api/fortune
// 認証は任意。有効なセッションがあればユーザーに紐付け、なければ匿名で記録する。
func (h *FortuneHandler) Draw(w http.ResponseWriter, r *http.Request) {
	var userID *string
	if id, err := middleware.UserIDFromContext(r.Context()); err == nil {
		userID = &id
	}

	result, err := h.service.Draw(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(drawResponse{
		CardName:    result.CardName,
		FortuneText: result.FortuneText,
		CardImage:   result.CardImage,
	})
}

// ListHistory は全占い履歴を新しい順で返す。
// GET /api/fortunes
func (h *FortuneHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	fortunes, err := h.service.History(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]fortuneResponse, len(fortunes))
	for i, f := range fortunes {
		results[i] = toFortuneResponse(f)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// GetFortune は指定IDの占い結果を返す。
// GET /api/fortunes/{id}
func (h *FortuneHandler) GetFortune(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toFortuneResponse(f))
}

// toFortuneResponse はドメインのFortuneをレスポンス型に変換する。
func toFortuneResponse(f *model.Fortune) fortuneResponse {
	return fortuneResponse{
		ID:          f.ID,
		UserID:      f.UserID,
		CardName:    f.CardName,
		FortuneText: f.FortuneText,
		CardImage:   f.CardImage,
		ReadingType: f.ReadingType,
		IsShared:    f.IsShared,
		Timestamp:   f.Timestamp,
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Error:    apiErr.Message,
		Code:     apiErr.Code,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "An unexpected error occurred.",
		Category: "system",
		Action:   "Please wait a moment and try again.",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeGenerationFailed, model.ErrCodeStorageFailed:
		return http.StatusInternalServerError
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeUserNotFound, model.ErrCodeFortuneNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
