package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/knowledgelink/internal/model"
)

// --- モック定義 ---

type mockOAuthProvider struct {
	loginURLFn func(state string) string
	exchangeFn func(ctx context.Context, code string) (*Identity, error)
}

func (m *mockOAuthProvider) LoginURL(state string) string {
	if m.loginURLFn != nil {
		return m.loginURLFn(state)
	}
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (m *mockOAuthProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	if m.exchangeFn != nil {
		return m.exchangeFn(ctx, code)
	}
	return nil, nil
}

type mockUserRepo struct {
	users map[string]*model.User
	err   error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Upsert(ctx context.Context, user *model.User) error {
	if m.err != nil {
		return m.err
	}
	m.users[user.Sub] = user
	return nil
}

func newTestService(oauth OAuthProvider, users *mockUserRepo, enabled bool) *Service {
	tokens := NewTokenManager("test-secret", 3600)
	if users == nil {
		return NewService(oauth, nil, tokens, enabled)
	}
	return NewService(oauth, users, tokens, enabled)
}

// --- テスト ---

func TestService_LoginURL_ReturnsProviderURL(t *testing.T) {
	svc := newTestService(&mockOAuthProvider{}, newMockUserRepo(), true)

	url, err := svc.LoginURL("state-1")
	if err != nil {
		t.Fatalf("LoginURL failed: %v", err)
	}
	if url != "https://accounts.google.com/o/oauth2/auth?state=state-1" {
		t.Errorf("url = %q", url)
	}
}

func TestService_LoginURL_NotConfigured_ReturnsError(t *testing.T) {
	svc := newTestService(&mockOAuthProvider{}, newMockUserRepo(), false)

	_, err := svc.LoginURL("state-1")
	if err == nil {
		t.Fatal("expected error when oauth is not configured")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Detail != "Google OAuth not configured" {
		t.Errorf("detail = %q", apiErr.Detail)
	}
}

func TestService_HandleCallback_MintsTokenAndUpsertsUser(t *testing.T) {
	oauth := &mockOAuthProvider{
		exchangeFn: func(ctx context.Context, code string) (*Identity, error) {
			return &Identity{Sub: "google-sub-1", Email: "alice@example.com", Name: "Alice"}, nil
		},
	}
	users := newMockUserRepo()
	svc := newTestService(oauth, users, true)

	token, err := svc.HandleCallback(context.Background(), "auth-code-1")
	if err != nil {
		t.Fatalf("HandleCallback failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	// 発行されたトークンが検証可能であること
	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.Sub != "google-sub-1" {
		t.Errorf("sub = %q, want google-sub-1", claims.Sub)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("email = %q", claims.Email)
	}

	// ユーザーがアップサートされていること
	user, ok := users.users["google-sub-1"]
	if !ok {
		t.Fatal("user should be upserted")
	}
	if user.Name != "Alice" {
		t.Errorf("name = %q, want Alice", user.Name)
	}
	if user.UpdatedAt.IsZero() {
		t.Error("updatedAt should be set")
	}
}

func TestService_HandleCallback_RepeatedLogin_SingleUserRecord(t *testing.T) {
	oauth := &mockOAuthProvider{
		exchangeFn: func(ctx context.Context, code string) (*Identity, error) {
			return &Identity{Sub: "google-sub-1", Email: "alice@example.com", Name: "Alice"}, nil
		},
	}
	users := newMockUserRepo()
	svc := newTestService(oauth, users, true)

	if _, err := svc.HandleCallback(context.Background(), "code-1"); err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	if _, err := svc.HandleCallback(context.Background(), "code-2"); err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	if len(users.users) != 1 {
		t.Errorf("user count = %d, want 1 (keyed by sub)", len(users.users))
	}
}

func TestService_HandleCallback_NameFallsBackToEmail(t *testing.T) {
	oauth := &mockOAuthProvider{
		exchangeFn: func(ctx context.Context, code string) (*Identity, error) {
			return &Identity{Sub: "google-sub-2", Email: "bob@example.com", Name: ""}, nil
		},
	}
	users := newMockUserRepo()
	svc := newTestService(oauth, users, true)

	token, err := svc.HandleCallback(context.Background(), "auth-code-1")
	if err != nil {
		t.Fatalf("HandleCallback failed: %v", err)
	}

	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.Name != "bob@example.com" {
		t.Errorf("name = %q, want fallback to email", claims.Name)
	}
	if users.users["google-sub-2"].Name != "bob@example.com" {
		t.Errorf("stored name = %q, want fallback to email", users.users["google-sub-2"].Name)
	}
}

func TestService_HandleCallback_EmptySub_ReturnsUserInfoError(t *testing.T) {
	oauth := &mockOAuthProvider{
		exchangeFn: func(ctx context.Context, code string) (*Identity, error) {
			return &Identity{Sub: "", Email: "x@example.com"}, nil
		},
	}
	svc := newTestService(oauth, newMockUserRepo(), true)

	_, err := svc.HandleCallback(context.Background(), "auth-code-1")
	if err == nil {
		t.Fatal("expected error for empty sub")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Detail != "Failed to retrieve user info" {
		t.Errorf("detail = %q", apiErr.Detail)
	}
}

func TestService_HandleCallback_ExchangeError_Propagates(t *testing.T) {
	oauth := &mockOAuthProvider{
		exchangeFn: func(ctx context.Context, code string) (*Identity, error) {
			return nil, errors.New("token endpoint unreachable")
		},
	}
	svc := newTestService(oauth, newMockUserRepo(), true)

	if _, err := svc.HandleCallback(context.Background(), "auth-code-1"); err == nil {
		t.Fatal("expected error for exchange failure")
	}
}

func TestService_HandleCallback_NilUserRepo_LoginStillSucceeds(t *testing.T) {
	oauth := &mockOAuthProvider{
		exchangeFn: func(ctx context.Context, code string) (*Identity, error) {
			return &Identity{Sub: "google-sub-1", Email: "alice@example.com", Name: "Alice"}, nil
		},
	}
	// ストア未設定でもログイン自体は成立する
	svc := newTestService(oauth, nil, true)

	token, err := svc.HandleCallback(context.Background(), "auth-code-1")
	if err != nil {
		t.Fatalf("HandleCallback failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
}

func TestService_HandleCallback_UpsertError_Propagates(t *testing.T) {
	oauth := &mockOAuthProvider{
		exchangeFn: func(ctx context.Context, code string) (*Identity, error) {
			return &Identity{Sub: "google-sub-1", Email: "a@example.com", Name: "A"}, nil
		},
	}
	users := newMockUserRepo()
	users.err = errors.New("mongo down")
	svc := newTestService(oauth, users, true)

	if _, err := svc.HandleCallback(context.Background(), "auth-code-1"); err == nil {
		t.Fatal("expected error for upsert failure")
	}
}
