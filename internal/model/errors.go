// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"net/http"
)

// APIError はHTTPステータスとクライアント向けメッセージを持つAPIエラー。
// レスポンスボディは {"detail": "..."} の形で返される。
type APIError struct {
	Status int
	Detail string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Status, e.Detail)
}

// NewNotAuthenticatedError はセッションCookie欠如のエラーを生成する。
func NewNotAuthenticatedError() *APIError {
	return &APIError{
		Status: http.StatusUnauthorized,
		Detail: "Not authenticated",
	}
}

// NewInvalidTokenError はトークンの署名・期限検証失敗のエラーを生成する。
// クライアントにはNewNotAuthenticatedErrorと同じ401として扱われるが、
// 原因の区別のため別エラーとして定義する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Status: http.StatusUnauthorized,
		Detail: "Invalid token",
	}
}

// NewOAuthNotConfiguredError はGoogle OAuth未設定のエラーを生成する。
func NewOAuthNotConfiguredError() *APIError {
	return &APIError{
		Status: http.StatusInternalServerError,
		Detail: "Google OAuth not configured",
	}
}

// NewDatabaseNotConfiguredError はデータベース未設定のエラーを生成する。
// 設定エラーは起動時ではなく依存操作の実行時に表面化させる。
func NewDatabaseNotConfiguredError() *APIError {
	return &APIError{
		Status: http.StatusInternalServerError,
		Detail: "Database not configured",
	}
}

// NewUserInfoError はIdPから有効なユーザー情報を取得できなかったエラーを生成する。
func NewUserInfoError() *APIError {
	return &APIError{
		Status: http.StatusBadRequest,
		Detail: "Failed to retrieve user info",
	}
}

// NewURLRequiredError はURL未指定のエラーを生成する。
func NewURLRequiredError() *APIError {
	return &APIError{
		Status: http.StatusBadRequest,
		Detail: "URL is required",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Status: http.StatusBadRequest,
		Detail: "Invalid request body",
	}
}

// NewInsufficientContentError は抽出コンテンツ不足のエラーを生成する。
// URL自体が不正・到達不能・解析不能であることを示す422であり、
// サーバー障害の500とは区別する。
func NewInsufficientContentError() *APIError {
	return &APIError{
		Status: http.StatusUnprocessableEntity,
		Detail: "Failed to extract sufficient content from the URL",
	}
}
