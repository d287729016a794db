package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// AuthMode はログイン時の資格情報検証方式を表す。
type AuthMode string

const (
	// AuthModeOpen は送信されたJSONオブジェクトをそのまま署名する。
	AuthModeOpen AuthMode = "open"
	// AuthModeCredentials はusersコレクションのパスワードハッシュで検証してから署名する。
	AuthModeCredentials AuthMode = "credentials"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DBUser           string
	DBPassword       string
	DBHost           string
	DBScheme         string
	DBName           string
	MongoURI         string
	DBConnectTimeout time.Duration
	DBConnectRetries int
	DBConnectBackoff time.Duration

	// Token
	JWTAccessToken string
	TokenTTL       time.Duration
	AuthMode       AuthMode

	// Rate Limit (req/min/client)
	RateLimitGeneral int
	RateLimitLogin   int

	// Server
	Port string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string

	cfg.MongoURI = os.Getenv("MONGODB_URI")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")

	// MONGODB_URIが指定されていればDB_USER/DB_PASSWORDは不要
	if cfg.MongoURI == "" {
		if cfg.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
		if cfg.DBPassword == "" {
			missing = append(missing, "DB_PASSWORD")
		}
	}

	cfg.JWTAccessToken = os.Getenv("JWT_ACCESS_TOKEN")
	if cfg.JWTAccessToken == "" {
		missing = append(missing, "JWT_ACCESS_TOKEN")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.DBHost = getEnvString("DB_HOST", "cluster0.ssehx4e.mongodb.net")
	cfg.DBScheme = getEnvString("DB_SCHEME", "mongodb+srv")
	cfg.DBName = getEnvString("DB_NAME", "easyStock")
	cfg.DBConnectTimeout = getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second)
	cfg.DBConnectRetries = getEnvInt("DB_CONNECT_RETRIES", 5)
	cfg.DBConnectBackoff = getEnvDuration("DB_CONNECT_BACKOFF", time.Second)
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 24*time.Hour)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 300)
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)
	cfg.Port = getEnvString("PORT", "5000")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")

	switch mode := AuthMode(strings.ToLower(getEnvString("AUTH_MODE", string(AuthModeOpen)))); mode {
	case AuthModeOpen, AuthModeCredentials:
		cfg.AuthMode = mode
	default:
		return nil, fmt.Errorf("invalid AUTH_MODE: %q", mode)
	}

	return cfg, nil
}

// DatabaseURI はMongoDBの接続URIを組み立てて返す。
// MONGODB_URIが指定されている場合はそれを優先する。
func (c *Config) DatabaseURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	u := url.URL{
		Scheme:   c.DBScheme,
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

// MigrationURI はgolang-migrateのmongodbドライバ用URIを返す。
// ドライバはパスからデータベース名を取得するため、DB_NAMEをパスに設定する。
func (c *Config) MigrationURI() (string, error) {
	u, err := url.Parse(c.DatabaseURI())
	if err != nil {
		return "", fmt.Errorf("failed to parse database uri: %w", err)
	}
	u.Path = "/" + c.DBName
	return u.String(), nil
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
