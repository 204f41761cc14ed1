package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	StoreDriver string // mysql|memory
	MySQLDSN    string
	AutoMigrate bool

	RedisAddr string
	RedisDB   int
	RedisPass string
	QueueName string
	CacheTTL  time.Duration

	MailBackend      string // smtp|console|memory
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	DefaultFromEmail string
	MailRatePerSec   int

	Workers     int
	PollTimeout time.Duration
	EmbedWorker bool // run the task worker inside the API process
	CORSOrigins []string
}

// Load reads the environment, after merging a .env file when one exists.
// Variables already set in the environment win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env could not be parsed")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),

		StoreDriver: strings.ToLower(env("STORE_DRIVER", "mysql")),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/alx_travel?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		AutoMigrate: env("AUTO_MIGRATE", "false") == "true",

		RedisAddr: env("REDIS_ADDR", "localhost:6379"),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		QueueName: env("QUEUE_NAME", "alx_travel:tasks"),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,

		MailBackend:      strings.ToLower(env("MAIL_BACKEND", "console")),
		SMTPHost:         env("SMTP_HOST", "localhost"),
		SMTPPort:         atoi("SMTP_PORT", 587),
		SMTPUser:         env("SMTP_USER", ""),
		SMTPPass:         env("SMTP_PASSWORD", ""),
		DefaultFromEmail: env("DEFAULT_FROM_EMAIL", "noreply@alxtravel.com"),
		MailRatePerSec:   atoi("MAIL_RATE_PER_SEC", 5),

		Workers:     atoi("WORKERS", 4),
		PollTimeout: time.Duration(atoi("WORKER_POLL_SECONDS", 5)) * time.Second,
		EmbedWorker: env("EMBED_WORKER", "false") == "true",
		CORSOrigins: splitList(env("CORS_ALLOWED_ORIGINS", "*")),
	}
	if c.MailBackend == "smtp" && c.SMTPUser == "" {
		log.Warn().Msg("SMTP_USER is empty; sending without auth")
	}
	if c.StoreDriver == "memory" && !c.EmbedWorker {
		// a separate worker process cannot see this store
		c.EmbedWorker = true
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
