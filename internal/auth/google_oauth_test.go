package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// ログインURLに必須パラメータが含まれることを検証
func TestGoogleOAuthProvider_GetLoginURL(t *testing.T) {
	provider := NewGoogleOAuthProvider(GoogleOAuthConfig{
		ClientID:    "test-client-id",
		RedirectURL: "http://localhost:8080/api/auth/callback",
	})

	loginURL := provider.GetLoginURL("state-xyz")

	parsed, err := url.Parse(loginURL)
	if err != nil {
		t.Fatalf("failed to parse login URL: %v", err)
	}

	q := parsed.Query()
	if got := q.Get("client_id"); got != "test-client-id" {
		t.Errorf("client_id = %q, want %q", got, "test-client-id")
	}
	if got := q.Get("state"); got != "state-xyz" {
		t.Errorf("state = %q, want %q", got, "state-xyz")
	}
	if got := q.Get("response_type"); got != "code" {
		t.Errorf("response_type = %q, want %q", got, "code")
	}
	if got := q.Get("scope"); !strings.Contains(got, "email") || !strings.Contains(got, "profile") {
		t.Errorf("scope = %q, want email and profile", got)
	}
}

// コード交換がトークン取得とユーザー情報取得を経てプロフィールを返すことを検証
func TestGoogleOAuthProvider_ExchangeCode(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse token request form: %v", err)
		}
		if got := r.PostForm.Get("code"); got != "auth-code-1" {
			t.Errorf("code = %q, want %q", got, "auth-code-1")
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q, want %q", got, "authorization_code")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "token-abc", "token_type": "Bearer", "expires_in": 3600}`))
	}))
	defer tokenServer.Close()

	userInfoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-abc" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer token-abc")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"sub": "google-sub-1",
			"email": "luna@example.com",
			"given_name": "Luna",
			"family_name": "Moriarty",
			"picture": "https://example.com/luna.png"
		}`))
	}))
	defer userInfoServer.Close()

	provider := NewGoogleOAuthProvider(GoogleOAuthConfig{
		ClientID:     "test-client-id",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/api/auth/callback",
		TokenURL:     tokenServer.URL,
		UserInfoURL:  userInfoServer.URL,
	})

	info, err := provider.ExchangeCode(context.Background(), "auth-code-1")
	if err != nil {
		t.Fatalf("ExchangeCode returned error: %v", err)
	}

	if info.ProviderUserID != "google-sub-1" {
		t.Errorf("ProviderUserID = %q, want %q", info.ProviderUserID, "google-sub-1")
	}
	if info.Email != "luna@example.com" {
		t.Errorf("Email = %q, want %q", info.Email, "luna@example.com")
	}
	if info.FirstName != "Luna" || info.LastName != "Moriarty" {
		t.Errorf("name = %q %q, want Luna Moriarty", info.FirstName, info.LastName)
	}
	if info.ProfileImageURL != "https://example.com/luna.png" {
		t.Errorf("ProfileImageURL = %q", info.ProfileImageURL)
	}
	if info.Provider != "google" {
		t.Errorf("Provider = %q, want %q", info.Provider, "google")
	}
}

// トークンエンドポイントのエラーが伝播することを検証
func TestGoogleOAuthProvider_ExchangeCode_TokenError(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer tokenServer.Close()

	provider := NewGoogleOAuthProvider(GoogleOAuthConfig{
		TokenURL: tokenServer.URL,
	})

	if _, err := provider.ExchangeCode(context.Background(), "expired-code"); err == nil {
		t.Fatal("expected error for rejected code")
	}
}

// subが欠落したユーザー情報がエラーになることを検証
func TestGoogleOAuthProvider_ExchangeCode_MissingSub(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "token-abc"}`))
	}))
	defer tokenServer.Close()

	userInfoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"email": "luna@example.com"}`))
	}))
	defer userInfoServer.Close()

	provider := NewGoogleOAuthProvider(GoogleOAuthConfig{
		TokenURL:    tokenServer.URL,
		UserInfoURL: userInfoServer.URL,
	})

	if _, err := provider.ExchangeCode(context.Background(), "auth-code-1"); err == nil {
		t.Fatal("expected error for missing sub")
	}
}
