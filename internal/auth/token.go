package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/knowledgelink/internal/model"
)

var (
	// ErrTokenMissing はトークンが提示されなかったことを示す。
	ErrTokenMissing = errors.New("token is missing")
	// ErrTokenInvalid はトークンの署名または有効期限の検証に失敗したことを示す。
	ErrTokenInvalid = errors.New("token is invalid or expired")
)

// tokenClaims はセッショントークンのJWTクレーム。
// subject識別子はRegisteredClaims.Subjectに載せる。
type tokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// TokenManager はHS256署名のステートレスなセッショントークンを発行・検証する。
// トークンはサーバー側に保存されず、有効性は署名と期限のみで判定する。
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager はTokenManagerを生成する。
// expiresSecondsはトークンの有効期間（秒）。
func NewTokenManager(secret string, expiresSeconds int) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    time.Duration(expiresSeconds) * time.Second,
	}
}

// TTLSeconds はトークンの有効期間（秒）を返す。CookieのMax-Ageに使用する。
func (m *TokenManager) TTLSeconds() int {
	return int(m.ttl / time.Second)
}

// Mint はクレームからセッショントークンを発行する。
// 有効期限は現在時刻 + TTL。
func (m *TokenManager) Mint(claims model.Claims) (string, error) {
	now := time.Now()
	tc := tokenClaims{
		Email: claims.Email,
		Name:  claims.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、格納されたクレームを復元する。
// 空トークンはErrTokenMissing、署名・期限の検証失敗はErrTokenInvalidを返す。
func (m *TokenManager) Verify(token string) (*model.Claims, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}

	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if tc.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return &model.Claims{
		Sub:   tc.Subject,
		Email: tc.Email,
		Name:  tc.Name,
	}, nil
}
