package internal

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if got, want := cfg.Content.ArtifactPath(), filepath.Join("public", "reviews.json"); got != want {
		t.Errorf("artifact path = %q, want %q", got, want)
	}
}

func TestApplicationConfig_LogFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.LogFormat = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty log format should default: %v", err)
	}
	if cfg.App.LogFormat != LogFormatJSON {
		t.Errorf("log format = %q, want %q", cfg.App.LogFormat, LogFormatJSON)
	}

	cfg.App.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown log format should fail validation")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
	cfg := HTTPConfig{Port: 9000}
	if cfg.Address() != ":9000" {
		t.Errorf("address = %q", cfg.Address())
	}
}

func TestContentConfig_ArtifactName(t *testing.T) {
	for _, name := range []string{"", "../reviews.json", "sub/reviews.json", ".."} {
		cfg := NewDefaultConfig().Content
		cfg.ArtifactName = name
		if err := cfg.Validate(); err == nil {
			t.Errorf("artifact name %q should fail validation", name)
		}
	}
}

func TestContentConfig_ArtifactURL(t *testing.T) {
	cfg := NewDefaultConfig().Content
	cfg.ArtifactURL = "ftp://example.com/reviews.json"
	if err := cfg.Validate(); err == nil {
		t.Fatal("non-http artifact url should fail validation")
	}
	cfg.ArtifactURL = "https://example.com/reviews.json"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("https artifact url should pass: %v", err)
	}
}

func TestContentConfig_RecordsDirRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.RecordsDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch missing records dir")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled || cfg.AuthEnabled() {
		t.Errorf("mode = %q, enabled = %v", cfg.Mode, cfg.AuthEnabled())
	}
}

func TestAuthConfig_TokenMode(t *testing.T) {
	cfg := AuthConfig{Mode: AuthModeToken, Token: "s3cret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}

	cfg.Token = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}
