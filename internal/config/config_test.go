package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "JERRY_API_KEY", "PATHSTORE_URL", "PATHSTORE_API_KEY",
		"MAX_UPLOAD_BYTES", "MAX_DOCUMENTS", "DOCUMENT_TTL", "PDF_FALLBACK_PDFTOTEXT"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.MaxUploadBytes != 52428800 || cfg.MaxDocuments != 100 || cfg.DocumentTTL != time.Hour {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if !cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback on by default")
	}
	if cfg.PathstoreEnabled() {
		t.Error("expected pathstore disabled without a URL")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_DOCUMENTS", "7")
	t.Setenv("DOCUMENT_TTL", "90s")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("MAX_UPLOAD_BYTES", "-5")
	t.Setenv("PATHSTORE_URL", "http://ps:8080")

	cfg := Load()
	if cfg.Port != "9000" || cfg.MaxDocuments != 7 || cfg.DocumentTTL != 90*time.Second {
		t.Errorf("unexpected overrides %+v", cfg)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback off")
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("expected invalid upload limit to fall back, got %d", cfg.MaxUploadBytes)
	}
	if !cfg.PathstoreEnabled() {
		t.Error("expected pathstore enabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"missing api key", Config{}, true},
		{"api key only", Config{JerryAPIKey: "k"}, false},
		{"pathstore without key", Config{JerryAPIKey: "k", PathstoreURL: "http://ps"}, true},
		{"pathstore with key", Config{JerryAPIKey: "k", PathstoreURL: "http://ps", PathstoreAPIKey: "p"}, false},
	}
	for _, tt := range tests {
		if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: err=%v, wantErr=%v", tt.name, err, tt.wantErr)
		}
	}
}
