package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hitoshi/knowledgelink/internal/middleware"
	"github.com/hitoshi/knowledgelink/internal/model"
)

// LinkServiceInterface はリンクハンドラーが必要とするサービスインターフェース。
type LinkServiceInterface interface {
	// Create はURLからページを取り込み、リンクとして保存する。
	Create(ctx context.Context, userID, rawURL string) (*model.Link, error)
	// List は指定ユーザーの全リンクを作成日時の降順で返す。
	List(ctx context.Context, userID string) ([]*model.Link, error)
	// Search は自然言語クエリで指定ユーザーのリンクを意味検索する。
	Search(ctx context.Context, userID, query string) ([]*model.Link, error)
}

// LinkHandler はリンク管理のHTTPハンドラー。
type LinkHandler struct {
	service LinkServiceInterface
}

// NewLinkHandler はLinkHandlerを生成する。
func NewLinkHandler(service LinkServiceInterface) *LinkHandler {
	return &LinkHandler{service: service}
}

// createLinkRequest はリンク保存リクエストのボディ。
type createLinkRequest struct {
	URL string `json:"url"`
}

// Validate はリクエストボディを検証する。
// URL形式の妥当性はここでは検証しない。形式不正なURLは抽出段階で
// 本文不足となり422で拒否される。
func (req createLinkRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.URL, validation.Required),
	)
}

// linkResponse はリンク情報のAPIレスポンス。埋め込みベクトルは含めない。
type linkResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Favicon   string    `json:"favicon"`
	CreatedAt time.Time `json:"createdAt"`
}

// linkListResponse はリンク一覧・検索結果のAPIレスポンス。
type linkListResponse struct {
	Links []linkResponse `json:"links"`
}

// CreateLink はリンク保存を処理する。
// POST /api/links
func (h *LinkHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewNotAuthenticatedError())
		return
	}

	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, model.NewInvalidRequestError())
		return
	}
	if err := req.Validate(); err != nil {
		middleware.WriteError(w, model.NewURLRequiredError())
		return
	}

	link, err := h.service.Create(r.Context(), claims.Sub, req.URL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toLinkResponse(link))
}

// ListLinks はユーザーの保存済みリンク一覧を返す。
// GET /api/links
func (h *LinkHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewNotAuthenticatedError())
		return
	}

	links, err := h.service.List(r.Context(), claims.Sub)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toLinkListResponse(links))
}

// SearchLinks はユーザーの保存済みリンクを意味検索する。
// GET /api/search?q=クエリ
func (h *LinkHandler) SearchLinks(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewNotAuthenticatedError())
		return
	}

	q := r.URL.Query().Get("q")

	links, err := h.service.Search(r.Context(), claims.Sub, q)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toLinkListResponse(links))
}

// --- ヘルパー関数 ---

// toLinkResponse はmodel.LinkからAPIレスポンスに変換する。
func toLinkResponse(link *model.Link) linkResponse {
	return linkResponse{
		ID:        link.ID,
		UserID:    link.UserID,
		URL:       link.URL,
		Title:     link.Title,
		Summary:   link.Summary,
		Favicon:   link.Favicon,
		CreatedAt: link.CreatedAt,
	}
}

// toLinkListResponse はリンクのスライスを一覧レスポンスに変換する。
// 結果が空でもJSONでは空配列として返す（nullにしない）。
func toLinkListResponse(links []*model.Link) linkListResponse {
	resp := linkListResponse{Links: make([]linkResponse, 0, len(links))}
	for _, link := range links {
		resp.Links = append(resp.Links, toLinkResponse(link))
	}
	return resp
}
