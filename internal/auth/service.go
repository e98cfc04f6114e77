// Package auth はGoogle OAuth認証フローとセッショントークン管理を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/knowledgelink/internal/model"
	"github.com/hitoshi/knowledgelink/internal/repository"
)

// Service は認証に関するビジネスロジックを提供する。
// セッションはステートレスなJWTで表現され、サーバー側には保存されない。
type Service struct {
	oauth   OAuthProvider
	users   repository.UserRepository
	tokens  *TokenManager
	enabled bool
}

// NewService はServiceを生成する。
// usersにはストア未設定時nilを渡してよい。その場合コールバック時の
// ユーザーアップサートはスキップされる（ログイン自体は成立する）。
// enabledはOAuthクライアント資格情報が設定済みかを示す。
func NewService(oauth OAuthProvider, users repository.UserRepository, tokens *TokenManager, enabled bool) *Service {
	return &Service{
		oauth:   oauth,
		users:   users,
		tokens:  tokens,
		enabled: enabled,
	}
}

// LoginURL はOAuth認証URLを生成する。
// プロバイダー資格情報が未設定の場合は設定エラーを返す。
func (s *Service) LoginURL(state string) (string, error) {
	if !s.enabled {
		return "", model.NewOAuthNotConfiguredError()
	}
	return s.oauth.LoginURL(state), nil
}

// HandleCallback はOAuthコールバックを処理し、セッショントークンを発行する。
// IdPから取得したsubject識別子をキーにユーザーをアップサートする。
// 同一ユーザーが再ログインしてもレコードは重複しない。
func (s *Service) HandleCallback(ctx context.Context, code string) (string, error) {
	identity, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange oauth code: %w", err)
	}
	if identity == nil || identity.Sub == "" {
		return "", model.NewUserInfoError()
	}

	name := identity.Name
	if name == "" {
		name = identity.Email
	}

	if s.users != nil {
		user := &model.User{
			Sub:       identity.Sub,
			Email:     identity.Email,
			Name:      name,
			UpdatedAt: time.Now().UTC(),
		}
		if err := s.users.Upsert(ctx, user); err != nil {
			return "", fmt.Errorf("failed to upsert user: %w", err)
		}
	}

	token, err := s.tokens.Mint(model.Claims{
		Sub:   identity.Sub,
		Email: identity.Email,
		Name:  name,
	})
	if err != nil {
		return "", fmt.Errorf("failed to mint session token: %w", err)
	}

	slog.Info("user logged in", slog.String("sub", identity.Sub))
	return token, nil
}

// VerifyToken はセッショントークンを検証し、クレームを返す。
// トークン欠如はErrTokenMissing、検証失敗はErrTokenInvalid。
func (s *Service) VerifyToken(token string) (*model.Claims, error) {
	return s.tokens.Verify(token)
}

// TokenTTLSeconds はセッションCookieのMax-Ageに使う有効期間（秒）を返す。
func (s *Service) TokenTTLSeconds() int {
	return s.tokens.TTLSeconds()
}
