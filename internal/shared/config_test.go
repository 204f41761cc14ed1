package shared

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"STORE_DRIVER", "MAIL_BACKEND", "CACHE_TTL_SECONDS", "CORS_ALLOWED_ORIGINS", "EMBED_WORKER", "WORKERS"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.StoreDriver != "mysql" || c.MailBackend != "console" {
		t.Fatalf("unexpected drivers: %q %q", c.StoreDriver, c.MailBackend)
	}
	if c.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected ttl %v", c.CacheTTL)
	}
	if c.DefaultFromEmail != "noreply@alxtravel.com" {
		t.Fatalf("unexpected from %q", c.DefaultFromEmail)
	}
	if len(c.CORSOrigins) != 1 || c.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected origins %v", c.CORSOrigins)
	}
	if c.EmbedWorker {
		t.Fatalf("worker must not be embedded by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("MAIL_BACKEND", "smtp")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("WORKERS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	c := Load()
	if c.StoreDriver != "memory" || !c.EmbedWorker {
		t.Fatalf("memory store must embed the worker: %+v", c)
	}
	if c.SMTPPort != 2525 {
		t.Fatalf("unexpected port %d", c.SMTPPort)
	}
	if c.Workers != 4 {
		t.Fatalf("bad integer should fall back to default, got %d", c.Workers)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", c.CORSOrigins)
	}
}
