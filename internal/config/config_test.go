package config

import "testing"

func TestClientIsLocalhost(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://localhost:5173", true},
		{"http://127.0.0.1:3000", true},
		{"https://shopshere.example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		cfg := Config{ClientURL: tt.url}
		if got := cfg.ClientIsLocalhost(); got != tt.want {
			t.Fatalf("ClientIsLocalhost(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
