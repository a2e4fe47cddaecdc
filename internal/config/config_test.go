package config

import "testing"

func TestJWTWeakSecret(t *testing.T) {
	cases := map[string]bool{
		"short": true,
		"change-me-in-production-0123456789abcdef": true,
		"Your-Secret-Key-padding-padding-padding":  true,
		"f3b0c44298fc1c149afbf4c8996fb92427ae41e4": false,
	}
	for secret, want := range cases {
		if got := (JWTConfig{SecretKey: secret}).WeakSecret(); got != want {
			t.Fatalf("WeakSecret(%q) = %v, want %v", secret, got, want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEFAULT_ADMIN_PASSWORD", "from-env")
	t.Setenv("SERVER_PORT", "9090")
	cfg := Load()
	if cfg.Server.Port != "9090" {
		t.Fatalf("env must override port, got %s", cfg.Server.Port)
	}
	if cfg.Bootstrap.AdminPassword != "from-env" || cfg.Bootstrap.AdminEmail != "admin@realcpa.local" {
		t.Fatalf("unexpected bootstrap config: %+v", cfg.Bootstrap)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Payout.Currency != "RUB" || cfg.IsRelease() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}
