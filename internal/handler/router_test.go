package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/uranai/internal/fortune"
	"github.com/hitoshi/uranai/internal/middleware"
	"github.com/hitoshi/uranai/internal/model"
)

type mockRouterSessionFinder struct {
	sessions map[string]*model.Session
}

func (m *mockRouterSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, nil
}

func newTestRouter(t *testing.T, fortuneService FortuneServiceInterface, authService AuthServiceInterface) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(1000, 1000))
	t.Cleanup(rl.Stop)

	finder := &mockRouterSessionFinder{
		sessions: map[string]*model.Session{
			"sess-valid": {ID: "sess-valid", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)},
		},
	}

	if authService == nil {
		authService = &mockAuthService{}
	}

	return NewRouter(&RouterDeps{
		SessionFinder:     finder,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		CSRFConfig:        middleware.CSRFConfig{},
		AuthService:       authService,
		AuthConfig:        testAuthConfig(),
		FortuneService:    fortuneService,
	})
}

// withCSRF はリクエストにCSRFトークンのCookieとヘッダーを付与する。
func withCSRF(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "test-token"})
	req.Header.Set("X-CSRF-Token", "test-token")
	return req
}

// ヘルスチェックが200を返すことを検証
func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, &mockFortuneService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

// 匿名での占い実行がルーター経由で成功することを検証
func TestRouter_DrawFortune_Anonymous(t *testing.T) {
	var gotUserID *string
	svc := &mockFortuneService{
		drawFn: func(ctx context.Context, userID *string) (*fortune.Result, error) {
			gotUserID = userID
			return &fortune.Result{CardName: "The Moon", FortuneText: "x", CardImage: "moon"}, nil
		},
	}
	router := newTestRouter(t, svc, nil)

	req := withCSRF(httptest.NewRequest(http.MethodPost, "/api/fortune", nil))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if gotUserID != nil {
		t.Errorf("user ID = %v, want nil", *gotUserID)
	}
}

// セッションCookie付きの占い実行がユーザーに紐付くことを検証
func TestRouter_DrawFortune_Authenticated(t *testing.T) {
	var gotUserID *string
	svc := &mockFortuneService{
		drawFn: func(ctx context.Context, userID *string) (*fortune.Result, error) {
			gotUserID = userID
			return &fortune.Result{CardName: "The Moon", FortuneText: "x", CardImage: "moon"}, nil
		},
	}
	router := newTestRouter(t, svc, nil)

	req := withCSRF(httptest.NewRequest(http.MethodPost, "/api/fortune", nil))
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-valid"})
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUserID == nil || *gotUserID != "user-1" {
		t.Errorf("user ID = %v, want user-1", gotUserID)
	}
}

// CSRFトークンなしの占い実行が403になることを検証
func TestRouter_DrawFortune_CSRFRequired(t *testing.T) {
	router := newTestRouter(t, &mockFortuneService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/fortune", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

// 占い履歴がルーター経由で取得できることを検証
func TestRouter_ListFortunes(t *testing.T) {
	svc := &mockFortuneService{
		historyFn: func(ctx context.Context) ([]*model.Fortune, error) {
			return []*model.Fortune{
				{ID: "f1", CardName: "Death", FortuneText: "x", ReadingType: model.ReadingTypeSingleCard},
			}, nil
		},
	}
	router := newTestRouter(t, svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/fortunes", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body []fortuneResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body) != 1 || body[0].ID != "f1" {
		t.Errorf("unexpected body: %+v", body)
	}
}

// 未認証の /api/auth/user が401になることを検証
func TestRouter_CurrentUser_Unauthenticated(t *testing.T) {
	router := newTestRouter(t, &mockFortuneService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// CORSヘッダーが全ルートに付与されることを検証
func TestRouter_CORSHeaders(t *testing.T) {
	router := newTestRouter(t, &mockFortuneService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q, want http://localhost:3000", got)
	}
}

// ハンドラー内のpanicが500に変換されることを検証
func TestRouter_PanicRecovered(t *testing.T) {
	svc := &mockFortuneService{
		historyFn: func(ctx context.Context) ([]*model.Fortune, error) {
			panic("unexpected")
		},
	}
	router := newTestRouter(t, svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/fortunes", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

// CSRFトークン取得エンドポイントを検証
func TestRouter_CSRFTokenEndpoint(t *testing.T) {
	router := newTestRouter(t, &mockFortuneService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["token"] == "" {
		t.Error("expected non-empty token")
	}
}
