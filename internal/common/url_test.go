package common

import "testing"

func TestIsTestURL(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		testURL bool
	}{
		{"Localhost", "http://localhost:8080/site", true},
		{"Localhost subdomain", "http://app.localhost/", true},
		{"Loopback IPv4", "http://127.0.0.1:3000/", true},
		{"Loopback IPv6", "http://[::1]/page", true},
		{"Unspecified address", "http://0.0.0.0:8080/", true},
		{"Public hostname", "https://example.org/page", false},
		{"Hostname containing localhost", "https://localhost.example.org/", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTestURL(tt.rawURL); got != tt.testURL {
				t.Errorf("IsTestURL(%q) = %v, expected %v", tt.rawURL, got, tt.testURL)
			}
		})
	}
}

func TestAllowTestURLs(t *testing.T) {
	cfg := NewDefaultConfig()
	if !cfg.AllowTestURLs() {
		t.Error("Expected development config to allow test URLs")
	}

	cfg.Environment = "production"
	if cfg.AllowTestURLs() {
		t.Error("Expected production config to refuse test URLs")
	}

	cfg.Environment = "PROD"
	if cfg.AllowTestURLs() {
		t.Error("Expected prod alias to refuse test URLs")
	}
}
