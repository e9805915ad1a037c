package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
quota:
  renewal_day: 5
  default_timezone: Asia/Kolkata
  limits:
    free:
      daily:
        search_queries: 9
rate:
  generate_per_minute: 12
llm:
  model: gpt-4o
  timeout: 90s
billing:
  provider: stripe
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Quota.RenewalDay != 5 {
		t.Fatalf("unexpected renewal day: %d", cfg.Quota.RenewalDay)
	}
	if cfg.Quota.DefaultTimezone != "Asia/Kolkata" {
		t.Fatalf("unexpected default timezone: %s", cfg.Quota.DefaultTimezone)
	}
	if cfg.Quota.Limits["free"].Daily["search_queries"] != 9 {
		t.Fatalf("unexpected free daily search limit: %d", cfg.Quota.Limits["free"].Daily["search_queries"])
	}
	if cfg.Rate.GeneratePerMinute != 12 {
		t.Fatalf("unexpected generate rate: %d", cfg.Rate.GeneratePerMinute)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Fatalf("unexpected llm model: %s", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout.String() != "1m30s" {
		t.Fatalf("unexpected llm timeout: %s", cfg.LLM.Timeout)
	}
	if cfg.Billing.Provider != "stripe" {
		t.Fatalf("unexpected billing provider: %s", cfg.Billing.Provider)
	}

	// Untouched defaults survive the overlay.
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http addr default should stay :8080, got %s", cfg.HTTP.Addr)
	}
	if cfg.Rate.GeneratePer10Sec != 5 {
		t.Fatalf("generate_per_10sec default should stay 5, got %d", cfg.Rate.GeneratePer10Sec)
	}
	if cfg.Quota.Limits["agency"].Daily["search_queries"] != -1 {
		t.Fatalf("agency search limit default should stay unlimited")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("QUOTA_RENEWAL_DAY", "15")
	t.Setenv("LLM_MODEL", "gpt-4.1")
	t.Setenv("POSTGRES_MIGRATE", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Quota.RenewalDay != 15 {
		t.Fatalf("unexpected renewal day: %d", cfg.Quota.RenewalDay)
	}
	if cfg.LLM.Model != "gpt-4.1" {
		t.Fatalf("unexpected llm model: %s", cfg.LLM.Model)
	}
	if cfg.Postgres.Migrate {
		t.Fatalf("postgres migrate should be disabled by env")
	}
}

func TestLoadRejectsBadEnvValues(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("QUOTA_RENEWAL_DAY", "first")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for non-integer renewal day")
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Quota.Limits["free"].Monthly["content_ideations"] != 5 {
		t.Fatalf("free monthly ideation default should be 5")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_ENV", "HTTP_ADDR", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL", "POSTGRES_DSN", "POSTGRES_MIGRATE", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_USE_SSL",
		"JWT_SECRET", "JWT_ACCESS_TTL", "REFRESH_TTL",
		"LLM_API_KEY", "LLM_BASE_URL", "LLM_MODEL", "LLM_TIMEOUT",
		"QUOTA_RENEWAL_DAY", "QUOTA_DEFAULT_TIMEZONE",
		"BILLING_PROVIDER", "BILLING_WEBHOOK_SECRET",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}
