package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr string

	MySQLDSN  string
	MongoURI  string
	MongoDB   string
	RedisAddr string
	RedisPass string

	SessionSecret string
	SecureCookies bool

	MailAPIKey string
	MailFrom   string
	AppURL     string

	AllowedOrigins []string

	RateLimit       int
	RateWindow      time.Duration
	RateLimitsRedis bool

	S3Bucket string
	S3Region string
}

// Parse reads flags first and falls back to environment variables, so
// local runs can override a deployed .env without editing it.
func Parse(args []string) (Config, error) {
	var cfg Config
	var origins string

	fs := flag.NewFlagSet("stanzaapp", flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "addr", "", "HTTP listen address")
	fs.StringVar(&cfg.MySQLDSN, "mysql", "", "MySQL DSN for the users table")
	fs.StringVar(&cfg.MongoURI, "mongo", "", "Mongo connection URI")
	fs.StringVar(&cfg.MongoDB, "mongo-db", "", "Mongo database name")
	fs.StringVar(&cfg.RedisAddr, "redis", "", "Redis address")
	fs.StringVar(&cfg.RedisPass, "redis-pass", "", "Redis password (prefer env)")
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")
	fs.StringVar(&cfg.MailAPIKey, "mail-key", "", "Mail API key (prefer env)")
	fs.StringVar(&cfg.MailFrom, "mail-from", "", "Mail sender address")
	fs.StringVar(&cfg.AppURL, "app-url", "", "Public app URL for link construction")
	fs.StringVar(&origins, "origins", "", "Comma separated allowed CORS origins")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", "", "S3 bucket for post images")
	fs.StringVar(&cfg.S3Region, "s3-region", "", "S3 region")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Addr == "" {
		cfg.Addr = envOr("ADDR", "127.0.0.1:8000")
	}
	if cfg.MySQLDSN == "" {
		cfg.MySQLDSN = os.Getenv("MYSQL_DSN")
	}
	if cfg.MySQLDSN == "" {
		return Config{}, errors.New("MySQL DSN required (use -mysql or MYSQL_DSN env)")
	}

	if cfg.MongoURI == "" {
		cfg.MongoURI = os.Getenv("MONGO_URI")
	}
	if cfg.MongoURI == "" {
		return Config{}, errors.New("Mongo URI required (use -mongo or MONGO_URI env)")
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = envOr("MONGO_DB", "stanza")
	}

	if cfg.RedisAddr == "" {
		cfg.RedisAddr = envOr("REDIS_ADDR", "localhost:6379")
	}
	if cfg.RedisPass == "" {
		cfg.RedisPass = os.Getenv("REDIS_PASSWORD")
	}

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	if cfg.MailAPIKey == "" {
		cfg.MailAPIKey = os.Getenv("MAIL_API_KEY")
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = envOr("MAIL_FROM", "noreply@stanza.app")
	}
	if cfg.AppURL == "" {
		cfg.AppURL = envOr("APP_URL", "http://localhost:3000")
	}

	if origins == "" {
		origins = envOr("ALLOWED_ORIGINS", "*")
	}
	cfg.AllowedOrigins = splitOrigins(origins)

	limit, err := envInt("RATE_LIMIT", 5)
	if err != nil {
		return Config{}, errors.New("invalid RATE_LIMIT env variable")
	}
	cfg.RateLimit = limit

	windowMin, err := envInt("RATE_WINDOW_MINUTES", 15)
	if err != nil {
		return Config{}, errors.New("invalid RATE_WINDOW_MINUTES env variable")
	}
	cfg.RateWindow = time.Duration(windowMin) * time.Minute

	cfg.RateLimitsRedis = os.Getenv("RATE_LIMIT_REDIS") == "true"
	cfg.SecureCookies = os.Getenv("ENV") == "production"

	if cfg.S3Bucket == "" {
		cfg.S3Bucket = os.Getenv("S3_BUCKET")
	}
	if cfg.S3Region == "" {
		cfg.S3Region = envOr("S3_REGION", "us-east-1")
	}

	return cfg, nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}

	return fallback
}

func envInt(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}

	return strconv.Atoi(v)
}

func splitOrigins(in string) []string {
	parts := strings.Split(in, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}

	return res
}
