package config

import "testing"

func TestNormalizeEnv(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"dev", "development"},
		{"develop", "development"},
		{"development", "development"},
		{"local", "development"},
		{"prod", "production"},
		{"production", "production"},
		{"stage", "staging"},
		{"staging", "staging"},
		{"test", "test"},
		{"testing", "test"},
		{" Production ", "production"},
		{"DEV", "development"},
		{"qa", "qa"},
	}

	for _, c := range cases {
		if got := normalizeEnv(c.in); got != c.want {
			t.Errorf("normalizeEnv(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsDevelopment(t *testing.T) {
	dev := &Config{AppEnv: "development"}
	if !dev.IsDevelopment() {
		t.Error("expected development config to report IsDevelopment")
	}

	prod := &Config{AppEnv: "production"}
	if prod.IsDevelopment() {
		t.Error("expected production config to not report IsDevelopment")
	}

	var nilCfg *Config
	if nilCfg.IsDevelopment() {
		t.Error("expected nil config to not report IsDevelopment")
	}
}

func TestRTCConfigured(t *testing.T) {
	cfg := &Config{RTCAppID: "app-id", RTCAppCertificate: "cert"}
	if !cfg.RTCConfigured() {
		t.Error("expected config with app id and certificate to be configured")
	}

	missingCert := &Config{RTCAppID: "app-id"}
	if missingCert.RTCConfigured() {
		t.Error("expected config without certificate to not be configured")
	}

	missingID := &Config{RTCAppCertificate: "cert"}
	if missingID.RTCConfigured() {
		t.Error("expected config without app id to not be configured")
	}
}
