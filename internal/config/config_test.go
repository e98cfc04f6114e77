package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// 任意の環境変数が未設定でもLoadは成功し、縮退モードのフラグが立つ
	cfg := Load()

	if cfg.GeminiEnabled {
		t.Error("GeminiEnabled = true, want false without GEMINI_API_KEY")
	}
	if cfg.OAuthEnabled {
		t.Error("OAuthEnabled = true, want false without client credentials")
	}
	if cfg.MongoEnabled {
		t.Error("MongoEnabled = true, want false without MONGODB_URI")
	}
	if cfg.MongoDBName != "knowledgelink" {
		t.Errorf("MongoDBName = %q, want %q", cfg.MongoDBName, "knowledgelink")
	}
	if cfg.MongoVectorIndex != "content_vector_index" {
		t.Errorf("MongoVectorIndex = %q, want %q", cfg.MongoVectorIndex, "content_vector_index")
	}
	if cfg.JWTSecret != "dev-secret-change-me" {
		t.Errorf("JWTSecret = %q, want default dev secret", cfg.JWTSecret)
	}
	if cfg.JWTExpiresSeconds != 7*24*3600 {
		t.Errorf("JWTExpiresSeconds = %d, want %d", cfg.JWTExpiresSeconds, 7*24*3600)
	}
	if cfg.FetchTimeout != 20*time.Second {
		t.Errorf("FetchTimeout = %v, want 20s", cfg.FetchTimeout)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, want 2 default origins", cfg.AllowedOrigins)
	}
}

func TestLoad_CapabilityFlags(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	cfg := Load()

	if !cfg.GeminiEnabled {
		t.Error("GeminiEnabled = false, want true")
	}
	if !cfg.OAuthEnabled {
		t.Error("OAuthEnabled = false, want true")
	}
	if !cfg.MongoEnabled {
		t.Error("MongoEnabled = false, want true")
	}
}

func TestLoad_MongoURIFallsBackToDatabaseURL(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("DATABASE_URL", "mongodb://fallback:27017")

	cfg := Load()

	if cfg.MongoURI != "mongodb://fallback:27017" {
		t.Errorf("MongoURI = %q, want DATABASE_URL fallback", cfg.MongoURI)
	}
	if !cfg.MongoEnabled {
		t.Error("MongoEnabled = false, want true via DATABASE_URL")
	}
}

func TestSplitOrigins(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "カンマ区切り",
			input: "http://a.example.com,http://b.example.com",
			want:  []string{"http://a.example.com", "http://b.example.com"},
		},
		{
			name:  "空白と空要素を除去",
			input: " http://a.example.com , ,http://b.example.com,",
			want:  []string{"http://a.example.com", "http://b.example.com"},
		},
		{
			name:  "空文字列",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitOrigins(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitOrigins(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("origin[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoad_InvalidDurationUsesDefault(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "not-a-duration")

	cfg := Load()

	if cfg.FetchTimeout != 20*time.Second {
		t.Errorf("FetchTimeout = %v, want default 20s on parse failure", cfg.FetchTimeout)
	}
}
