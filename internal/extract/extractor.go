// Package extract はWebページからの本文・タイトル抽出を提供する。
package extract

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// maxFetchSize は取得するページの最大サイズ（5MB）。
const maxFetchSize = 5 * 1024 * 1024

// fallbackSelectors は本文コンテナの候補セレクタ。優先順に走査する。
var fallbackSelectors = []string{
	"article",
	"main",
	"div.post-content",
	`div[role="main"]`,
}

// noiseSelectors は本文抽出前に除去する要素。
var noiseSelectors = []string{"script", "style", "noscript"}

// SSRFValidator はURL事前検証のインターフェース。
// security.SSRFGuardServiceの部分集合として定義する。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
}

// Extractor はWebページの本文・タイトル抽出機能を提供する。
// どの段階の失敗も呼び出し元には伝播せず、空の結果に縮退する。
type Extractor struct {
	client    *http.Client
	ssrfGuard SSRFValidator
}

// NewExtractor はExtractorを生成する。
// clientにはタイムアウトとSSRF防止を設定済みのHTTPクライアントを渡す。
// ssrfGuardはnilを許容する（テスト用）。
func NewExtractor(client *http.Client, ssrfGuard SSRFValidator) *Extractor {
	return &Extractor{
		client:    client,
		ssrfGuard: ssrfGuard,
	}
}

// Extract は指定URLのページから本文とタイトルを抽出する。
// エラーは返さない。取得・解析に失敗した段階は結果に寄与せず、
// 全段階が失敗した場合は ("", "") を返す。
//
// 抽出は次の順で試行する:
//  1. readabilityによる本文抽出
//  2. 生HTMLのフォールバック解析（article/main/本文系コンテナのテキスト）
//  3. metaディスクリプション（og:description、description）
//
// タイトルは1.の成否に関わらず生HTMLの<title>から取得する。
func (e *Extractor) Extract(ctx context.Context, rawURL string) (content, title string) {
	if e.ssrfGuard != nil {
		if err := e.ssrfGuard.ValidateURL(rawURL); err != nil {
			slog.Warn("extract: URL blocked", slog.String("url", rawURL), slog.String("error", err.Error()))
			return "", ""
		}
	}

	content = e.readabilityPass(ctx, rawURL)

	html := e.fetchRaw(ctx, rawURL)
	if html == nil {
		return content, ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		slog.Warn("extract: HTML parse failed", slog.String("url", rawURL), slog.String("error", err.Error()))
		return content, ""
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	if content == "" {
		content = fallbackText(doc)
	}
	if content == "" {
		content = metaDescription(doc)
	}

	return content, title
}

// readabilityPass はページを取得しreadabilityで本文を抽出する。
// 失敗時は空文字列を返す。
func (e *Extractor) readabilityPass(ctx context.Context, rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	body := e.fetchRaw(ctx, rawURL)
	if body == nil {
		return ""
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		slog.Warn("extract: readability failed", slog.String("url", rawURL), slog.String("error", err.Error()))
		return ""
	}

	return strings.TrimSpace(article.TextContent)
}

// fetchRaw はページの生HTMLを取得する。失敗時はnilを返す。
func (e *Extractor) fetchRaw(ctx context.Context, rawURL string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", "KnowledgeLink/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		slog.Warn("extract: fetch failed", slog.String("url", rawURL), slog.String("error", err.Error()))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("extract: unexpected status", slog.String("url", rawURL), slog.Int("status", resp.StatusCode))
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return nil
	}
	return body
}

// fallbackText は本文らしいコンテナのテキストを抽出する。
// article、main、post-contentクラス、main roleの順で探し、
// どれも無ければドキュメント全体のテキストを返す。
func fallbackText(doc *goquery.Document) string {
	doc.Find(strings.Join(noiseSelectors, ", ")).Remove()

	for _, sel := range fallbackSelectors {
		found := doc.Find(sel)
		if found.Length() > 0 {
			return normalizeText(found.First().Text())
		}
	}

	return normalizeText(doc.Text())
}

// metaDescription はog:descriptionまたはdescriptionメタタグの内容を返す。
func metaDescription(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	if v, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// normalizeText は連続する空白を1個のスペースに畳み込む。
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
