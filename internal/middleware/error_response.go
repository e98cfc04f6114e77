package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/knowledgelink/internal/model"
)

// errorResponseBody はAPIエラーレスポンスの統一フォーマット。
type errorResponseBody struct {
	Detail string `json:"detail"`
}

// WriteError は統一エラーフォーマット {"detail": "..."} でエラーレスポンスを書き込む。
func WriteError(w http.ResponseWriter, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(errorResponseBody{Detail: apiErr.Detail})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteError(w, &model.APIError{
		Status: http.StatusInternalServerError,
		Detail: "Internal server error",
	})
}
