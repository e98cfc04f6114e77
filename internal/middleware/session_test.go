package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/knowledgelink/internal/model"
)

type mockVerifier struct {
	verifyFn func(token string) (*model.Claims, error)
}

func (m *mockVerifier) VerifyToken(token string) (*model.Claims, error) {
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return nil, errors.New("not configured")
}

func protectedHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := ClaimsFromContext(r.Context())
		if err != nil {
			t.Errorf("claims missing in protected handler: %v", err)
		}
		w.Write([]byte(claims.Sub))
	})
}

func TestSessionMiddleware_NoCookie_Returns401NotAuthenticated(t *testing.T) {
	mw := NewSessionMiddleware(&mockVerifier{})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a session cookie")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["detail"] != "Not authenticated" {
		t.Errorf("detail = %q, want %q", body["detail"], "Not authenticated")
	}
}

func TestSessionMiddleware_InvalidToken_Returns401InvalidToken(t *testing.T) {
	mw := NewSessionMiddleware(&mockVerifier{
		verifyFn: func(token string) (*model.Claims, error) {
			return nil, errors.New("bad signature")
		},
	})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tampered"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["detail"] != "Invalid token" {
		t.Errorf("detail = %q, want %q", body["detail"], "Invalid token")
	}
}

func TestSessionMiddleware_ValidToken_InjectsClaims(t *testing.T) {
	mw := NewSessionMiddleware(&mockVerifier{
		verifyFn: func(token string) (*model.Claims, error) {
			if token != "good-token" {
				t.Errorf("token = %q, want cookie value", token)
			}
			return &model.Claims{Sub: "google-sub-123", Email: "a@example.com"}, nil
		},
	})
	handler := mw(protectedHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "google-sub-123" {
		t.Errorf("body = %q, want sub from claims", w.Body.String())
	}
}

func TestClaimsFromContext_Missing(t *testing.T) {
	_, err := ClaimsFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	if err == nil {
		t.Error("expected error for context without claims")
	}
}
