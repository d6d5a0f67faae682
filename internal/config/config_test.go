package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.AppName != "LingoLink" {
		t.Errorf("AppName = %q, want LingoLink", cfg.AppName)
	}
	if cfg.APIServer.Port != "8081" {
		t.Errorf("APIServer.Port = %q, want 8081", cfg.APIServer.Port)
	}
	if cfg.APIServer.ReadTimeout != 30*time.Second {
		t.Errorf("APIServer.ReadTimeout = %v, want 30s", cfg.APIServer.ReadTimeout)
	}
	if cfg.Database.Type != "postgres" || cfg.Database.DBName != "lingolink_db" {
		t.Errorf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Kafka.FriendEventTopic != "lingolink-friend-events" {
		t.Errorf("Kafka.FriendEventTopic = %q, want lingolink-friend-events", cfg.Kafka.FriendEventTopic)
	}
	if cfg.Prefs.Backend != "memory" || cfg.Prefs.DefaultTheme != "coffee" {
		t.Errorf("unexpected prefs defaults: %+v", cfg.Prefs)
	}
	if len(cfg.APIServer.CORS.AllowedOrigins) == 0 {
		t.Error("expected a non-empty CORS allowed origins default")
	}
}
