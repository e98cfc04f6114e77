// Package link は保存済みリンクのドメインロジックを提供する。
package link

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/knowledgelink/internal/extract"
	"github.com/hitoshi/knowledgelink/internal/model"
	"github.com/hitoshi/knowledgelink/internal/repository"
)

const (
	// minContentLength は保存を許可する抽出本文の最小文字数。
	// これ未満のページはURL自体が不正・到達不能・解析不能とみなし422で拒否する。
	minContentLength = 80

	// searchLimit は検索結果の最大件数。
	searchLimit = 10
	// searchNumCandidates は近傍検索でランク付け前に検査する近似候補数。
	searchNumCandidates = 200
)

// ContentExtractor はページ本文抽出のインターフェース。
type ContentExtractor interface {
	// Extract は本文とタイトルを返す。失敗時は空の結果に縮退し、エラーは返さない。
	Extract(ctx context.Context, url string) (content, title string)
}

// Summarizer は本文要約のインターフェース。
type Summarizer interface {
	// Summarize は要約を返す。縮退モード・失敗時は空文字列。
	Summarize(ctx context.Context, text string) string
}

// Embedder は埋め込みベクトル生成のインターフェース。
// 保存対象の本文と検索クエリの両方に同一実装を使う。
type Embedder interface {
	// Embed は埋め込みベクトルを返す。縮退モード・失敗時は空。
	Embed(ctx context.Context, text string) []float64
}

// MetricsRecorder はリンク操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordLinkCreated()
	RecordLinkRejected()
	RecordSearch()
	RecordSaveLatency(d time.Duration)
}

// Service は保存済みリンクに関するビジネスロジックを提供する。
type Service struct {
	links      repository.LinkRepository
	extractor  ContentExtractor
	summarizer Summarizer
	embedder   Embedder
	metrics    MetricsRecorder
}

// NewService はServiceを生成する。
// linksにはストア未設定時nilを渡してよい。その場合全操作が
// データベース未設定エラーを返す。metricsはnilを許容する。
func NewService(links repository.LinkRepository, extractor ContentExtractor, summarizer Summarizer, embedder Embedder, metrics MetricsRecorder) *Service {
	return &Service{
		links:      links,
		extractor:  extractor,
		summarizer: summarizer,
		embedder:   embedder,
		metrics:    metrics,
	}
}

// Create はURLからページを取り込み、リンクとして保存する。
//
// パイプライン: 抽出 → 本文長チェック → 要約・埋め込み → 永続化。
// 要約と埋め込みの失敗は空の値に縮退してパイプラインを続行する
// （要約なしで保存する方がリクエスト全体を失敗させるより望ましい）。
// 抽出本文がminContentLength未満の場合は保存せず422エラーを返す。
//
// 返却されるLinkのContentEmbeddingは常に空（APIレスポンスに埋め込みは含めない）。
func (s *Service) Create(ctx context.Context, userID, rawURL string) (*model.Link, error) {
	if s.links == nil {
		return nil, model.NewDatabaseNotConfiguredError()
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, model.NewURLRequiredError()
	}

	start := time.Now()

	content, title := s.extractor.Extract(ctx, rawURL)
	if len([]rune(strings.TrimSpace(content))) < minContentLength {
		if s.metrics != nil {
			s.metrics.RecordLinkRejected()
		}
		return nil, model.NewInsufficientContentError()
	}

	summary := s.summarizer.Summarize(ctx, content)
	embedding := s.embedder.Embed(ctx, content)

	if title == "" {
		title = rawURL
	}

	link := &model.Link{
		UserID:           userID,
		URL:              rawURL,
		Title:            title,
		Summary:          summary,
		ContentEmbedding: embedding,
		Favicon:          extract.FaviconURL(rawURL),
		CreatedAt:        time.Now().UTC(),
	}

	id, err := s.links.Create(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("failed to save link: %w", err)
	}
	link.ID = id
	link.ContentEmbedding = nil

	if s.metrics != nil {
		s.metrics.RecordLinkCreated()
		s.metrics.RecordSaveLatency(time.Since(start))
	}

	slog.Info("link saved",
		slog.String("link_id", id),
		slog.String("sub", userID),
		slog.Bool("has_summary", summary != ""),
		slog.Bool("has_embedding", len(embedding) > 0),
	)

	return link, nil
}

// List は指定ユーザーの全リンクを作成日時の降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Link, error) {
	if s.links == nil {
		return nil, model.NewDatabaseNotConfiguredError()
	}
	return s.links.ListByUser(ctx, userID)
}

// Search は自然言語クエリで指定ユーザーのリンクを意味検索する。
//
// 空クエリは埋め込みサービスに接触せず空の結果を返す。
// クエリベクトルを生成できない場合（埋め込みサービス停止時など）も
// エラーではなく空の結果として扱う。
func (s *Service) Search(ctx context.Context, userID, query string) ([]*model.Link, error) {
	if s.links == nil {
		return nil, model.NewDatabaseNotConfiguredError()
	}
	if query == "" {
		return []*model.Link{}, nil
	}

	if s.metrics != nil {
		s.metrics.RecordSearch()
	}

	queryVector := s.embedder.Embed(ctx, query)
	if len(queryVector) == 0 {
		slog.Warn("search degraded: no query vector", slog.String("sub", userID))
		return []*model.Link{}, nil
	}

	return s.links.SearchByVector(ctx, userID, queryVector, searchLimit, searchNumCandidates)
}
