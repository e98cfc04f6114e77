package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthStatus はヘルスチェックで公開する外部依存の利用可否。
type HealthStatus struct {
	MongoEnabled  bool
	GeminiEnabled bool
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	status HealthStatus
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(status HealthStatus) *HealthHandler {
	return &HealthHandler{status: status}
}

// Health はサービスの稼働状態と外部依存の利用可否を返す。
// 依存が未設定でもサービス自体は稼働しているため常に200を返す。
// GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"mongo":  h.status.MongoEnabled,
		"gemini": h.status.GeminiEnabled,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
