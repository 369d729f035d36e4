package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPAddr != ":4000" {
		t.Errorf("expected default addr :4000, got %s", cfg.HTTPAddr)
	}
	if cfg.GatewayTimeout != 5*time.Second {
		t.Errorf("expected 5s gateway timeout, got %s", cfg.GatewayTimeout)
	}
	if cfg.MongoDB != "roboride" {
		t.Errorf("expected default database roboride, got %s", cfg.MongoDB)
	}
	if cfg.MQTTBroker != "" {
		t.Errorf("MQTT should be off by default, got broker %s", cfg.MQTTBroker)
	}
}

func TestLoad_PortShorthand(t *testing.T) {
	t.Setenv("PORT", "8081")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPAddr != ":8081" {
		t.Errorf("expected :8081 from PORT, got %s", cfg.HTTPAddr)
	}
}

func TestLoad_GatewayTimeout(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
		wantErr  bool
	}{
		{"plain seconds", "3", 3 * time.Second, false},
		{"duration string", "1500ms", 1500 * time.Millisecond, false},
		{"garbage", "soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GATEWAY_TIMEOUT", tt.value)
			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.GatewayTimeout != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, cfg.GatewayTimeout)
			}
		})
	}
}
