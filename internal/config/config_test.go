package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HistoryCapacity != 20 {
		t.Fatalf("HistoryCapacity = %d, want 20", cfg.HistoryCapacity)
	}
	if cfg.ReconnectDelay != 3000*time.Millisecond {
		t.Fatalf("ReconnectDelay = %v, want 3s", cfg.ReconnectDelay)
	}
	if cfg.KeepaliveInterval != 30*time.Second {
		t.Fatalf("KeepaliveInterval = %v, want 30s", cfg.KeepaliveInterval)
	}
	if cfg.ChannelURL == "" || cfg.EventsURL == "" {
		t.Fatalf("endpoint defaults missing: %+v", cfg)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("LIVEVIEW_CHANNEL_URL", "ws://camera.local:9000/ws")
	t.Setenv("LIVEVIEW_HISTORY_CAPACITY", "40")
	t.Setenv("LIVEVIEW_RECONNECT_DELAY", "5s")
	t.Setenv("LIVEVIEW_LOG_COLOR", "false")

	cfg := Load()

	if cfg.ChannelURL != "ws://camera.local:9000/ws" {
		t.Fatalf("ChannelURL = %q", cfg.ChannelURL)
	}
	if cfg.HistoryCapacity != 40 {
		t.Fatalf("HistoryCapacity = %d, want 40", cfg.HistoryCapacity)
	}
	if cfg.ReconnectDelay != 5*time.Second {
		t.Fatalf("ReconnectDelay = %v, want 5s", cfg.ReconnectDelay)
	}
	if cfg.LogColor {
		t.Fatalf("LogColor = true, want false")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("LIVEVIEW_HISTORY_CAPACITY", "lots")
	t.Setenv("LIVEVIEW_RECONNECT_DELAY", "soon")

	cfg := Load()
	defaults := DefaultConfig()

	if cfg.HistoryCapacity != defaults.HistoryCapacity {
		t.Fatalf("HistoryCapacity = %d, want default %d", cfg.HistoryCapacity, defaults.HistoryCapacity)
	}
	if cfg.ReconnectDelay != defaults.ReconnectDelay {
		t.Fatalf("ReconnectDelay = %v, want default %v", cfg.ReconnectDelay, defaults.ReconnectDelay)
	}
}
