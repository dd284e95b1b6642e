// Package llm はOpenAI互換のチャット補完APIクライアントを提供する。
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Completer はテキスト補完プロバイダーのインターフェース。
// テストでモックに差し替えるための抽象化。
type Completer interface {
	// Complete はプロンプトを送信し、補完テキストを返す。
	// プロバイダーが空の補完を返した場合は空文字列とnilエラーを返す。
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClientConfig はClientの設定。
type ClientConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
}

// Client はOpenAI互換API（/chat/completions）のHTTPクライアント。
// タイムアウトは呼び出し側がcontextで課す。
type Client struct {
	httpClient *http.Client
	config     ClientConfig
}

// NewClient はClientを生成する。httpClientがnilの場合はhttp.DefaultClientを使用する。
func NewClient(httpClient *http.Client, config ClientConfig) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &Client{
		httpClient: httpClient,
		config:     config,
	}
}

// chatMessage / chatRequest / chatResponse はOpenAI互換APIのワイヤ形式。
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete はプロンプトを1メッセージの会話として送信し、最初の補完テキストを返す。
// HTTPエラー・不正なレスポンスはエラーとして返し、リトライはしない。
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxCompletionTokens: c.config.MaxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	url := c.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse completion response: %w", err)
	}

	// 補完が欠落している場合は呼び出し側がフォールバック文字列を使う
	if len(chatResp.Choices) == 0 {
		return "", nil
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// compile-time interface check
var _ Completer = (*Client)(nil)
