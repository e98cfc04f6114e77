// Package gemini はGemini APIによる要約・埋め込み生成を提供する。
//
// APIキー未設定の場合、クライアントは縮退モードで動作し、
// 要約は空文字列、埋め込みは空ベクトルを即座に返す。
// API呼び出しの失敗も同様に空の結果へ縮退し、呼び出し元へは伝播しない。
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// summaryModel は要約に使用する生成モデル。
	summaryModel = "gemini-2.5-flash"
	// embeddingModel は埋め込みに使用するモデル。
	embeddingModel = "text-embedding-004"

	// summaryInputLimit は要約リクエストに載せる本文の最大文字数。
	summaryInputLimit = 6000
	// embedInputLimit は埋め込みリクエストに載せる本文の最大文字数。
	embedInputLimit = 7000

	summaryInstruction = "Summarize the following web page content in 5-7 concise bullet points.\n\n"
)

// ClientConfig はGeminiクライアントの設定。
type ClientConfig struct {
	APIKey  string
	Timeout time.Duration

	// テスト用にオーバーライド可能なURL
	BaseURL string
}

// Client はGemini REST APIのクライアント。
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	enabled bool
}

// NewClient はClientを生成する。
// APIKeyが空の場合は縮退モードのクライアントを返す。
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		enabled: cfg.APIKey != "",
	}
}

// Enabled は要約・埋め込み機能が利用可能かを返す。
func (c *Client) Enabled() bool {
	return c.enabled
}

// --- 要約 ---

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

// Summarize は本文の箇条書き要約を生成する。
// 縮退モードまたはエラー時は空文字列を返す。
func (c *Client) Summarize(ctx context.Context, text string) string {
	if !c.enabled {
		return ""
	}

	reqBody := generateRequest{
		Contents: []generateContent{{
			Parts: []generatePart{{Text: summaryInstruction + truncateRunes(text, summaryInputLimit)}},
		}},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, summaryModel)

	var resp generateResponse
	if err := c.post(ctx, endpoint, reqBody, &resp); err != nil {
		slog.Warn("gemini: summarize failed", slog.String("error", err.Error()))
		return ""
	}

	if len(resp.Candidates) == 0 {
		return ""
	}

	var parts []string
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

// --- 埋め込み ---

type embedRequest struct {
	Model   string          `json:"model"`
	Content generateContent `json:"content"`
}

// embedResponse は埋め込みエンドポイントのレスポンス。
// ベクトルはembedding.valuesに載る（このフィールド以外は参照しない）。
type embedResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

// Embed は本文の埋め込みベクトルを生成する。
// 縮退モードまたはエラー時はnilを返す。
// 保存対象の本文と検索クエリの両方で同一のコードパスを使う。
func (c *Client) Embed(ctx context.Context, text string) []float64 {
	if !c.enabled {
		return nil
	}

	reqBody := embedRequest{
		Model: "models/" + embeddingModel,
		Content: generateContent{
			Parts: []generatePart{{Text: truncateRunes(text, embedInputLimit)}},
		},
	}

	endpoint := fmt.Sprintf("%s/models/%s:embedContent", c.baseURL, embeddingModel)

	var resp embedResponse
	if err := c.post(ctx, endpoint, reqBody, &resp); err != nil {
		slog.Warn("gemini: embed failed", slog.String("error", err.Error()))
		return nil
	}

	return resp.Embedding.Values
}

// post はJSONリクエストを送信し、レスポンスをoutへデコードする。
func (c *Client) post(ctx context.Context, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// truncateRunes は文字数（rune数）でテキストを切り詰める。
// バイト境界ではなく文字境界で切ることでマルチバイト文字の破損を防ぐ。
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
