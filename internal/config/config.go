package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
//
// 外部依存（Gemini・MongoDB・Google OAuth）はすべて任意。
// 利用可否はLoad時にCapabilityフラグとして1回だけ判定し、
// 実行時に環境変数を再参照することはない。
type Config struct {
	// Gemini
	GeminiAPIKey  string
	GeminiEnabled bool

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	OAuthEnabled       bool

	// MongoDB
	MongoURI         string
	MongoDBName      string
	MongoVectorIndex string
	MongoEnabled     bool

	// Session token
	JWTSecret         string
	JWTExpiresSeconds int

	// CORS
	AllowedOrigins []string

	// Frontend
	FrontendStaticDir string

	// Fetch
	FetchTimeout time.Duration

	// Server
	ServerPort   string
	CookieSecure bool
}

// Load は環境変数からConfigを読み込む。
// いずれの変数も必須ではない。依存機能が未設定の場合のエラーは
// 起動時ではなく該当操作の実行時に返す方針のため、Loadは失敗しない。
func Load() *Config {
	cfg := &Config{}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiEnabled = cfg.GeminiAPIKey != ""

	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURI = os.Getenv("GOOGLE_REDIRECT_URI")
	cfg.OAuthEnabled = cfg.GoogleClientID != "" && cfg.GoogleClientSecret != ""

	// MONGODB_URIを優先し、互換のためDATABASE_URLにフォールバックする
	cfg.MongoURI = os.Getenv("MONGODB_URI")
	if cfg.MongoURI == "" {
		cfg.MongoURI = os.Getenv("DATABASE_URL")
	}
	cfg.MongoEnabled = cfg.MongoURI != ""
	cfg.MongoDBName = getEnvString("MONGODB_DB_NAME", "knowledgelink")
	cfg.MongoVectorIndex = getEnvString("MONGODB_VECTOR_INDEX", "content_vector_index")

	cfg.JWTSecret = getEnvString("JWT_SECRET", "dev-secret-change-me")
	cfg.JWTExpiresSeconds = getEnvInt("JWT_EXPIRES_SECONDS", 7*24*3600)

	cfg.AllowedOrigins = splitOrigins(getEnvString("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"))

	cfg.FrontendStaticDir = getEnvString("FRONTEND_STATIC_DIR", "/app/frontend_out")
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 20*time.Second)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = getEnvBool("COOKIE_SECURE", false)

	return cfg
}

// splitOrigins はカンマ区切りのオリジンリストをパースする。
// 空要素と前後の空白は除去する。
func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
