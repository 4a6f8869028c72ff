package config

import "testing"

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is empty")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetDefaultCommissionPercentage() != 10 {
		t.Fatalf("expected default commission 10, got %v", cfg.GetDefaultCommissionPercentage())
	}
	if cfg.GetPushMaxRetry() != 3 {
		t.Fatalf("expected push max retry 3, got %d", cfg.GetPushMaxRetry())
	}
	if len(cfg.GetCORSOrigins()) != 2 {
		t.Fatalf("expected 2 cors origins, got %v", cfg.GetCORSOrigins())
	}
	if cfg.IsPushEnabled() {
		t.Fatal("expected push disabled without firebase settings")
	}
}

func TestLoadRejectsWildcardWithCredentials(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for wildcard origins with credentials")
	}
}

func TestLoadRejectsBadCommissionDefault(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("DEFAULT_COMMISSION_PERCENTAGE", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative commission default")
	}
}
