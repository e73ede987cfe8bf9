package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "CHAT_STORE_BACKEND", "CHAT_STORE_PATH", "CHAT_NAMESPACE",
		"CHAT_REPLY_MIN_DELAY_MS", "CHAT_REPLY_MAX_DELAY_MS", "CHAT_PERSIST_DEBOUNCE_MS",
		"CHAT_SEND_RATE", "CHAT_SEND_BURST", "ARK_API_KEY", "Model",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.Store.Backend != "pebble" || cfg.Store.Path != "data/chat.pebble" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if cfg.Store.Namespace != "mustafizur-chat" {
		t.Fatalf("unexpected namespace %q", cfg.Store.Namespace)
	}
	if cfg.Chat.ReplyMinDelay != 600*time.Millisecond || cfg.Chat.ReplyMaxDelay != 1600*time.Millisecond {
		t.Fatalf("unexpected reply window %s-%s", cfg.Chat.ReplyMinDelay, cfg.Chat.ReplyMaxDelay)
	}
	if cfg.AI.Enabled() {
		t.Fatal("AI should be disabled without credentials")
	}
}

func TestLoadSQLiteDefaultPath(t *testing.T) {
	t.Setenv("CHAT_STORE_BACKEND", "SQLite")
	t.Setenv("CHAT_STORE_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.Path != "data/chat.db" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"port":      {"PORT": "80 80"},
		"backend":   {"CHAT_STORE_BACKEND": "redis"},
		"delay":     {"CHAT_REPLY_MIN_DELAY_MS": "soon"},
		"negative":  {"CHAT_PERSIST_DEBOUNCE_MS": "-1"},
		"inverted":  {"CHAT_REPLY_MIN_DELAY_MS": "2000", "CHAT_REPLY_MAX_DELAY_MS": "1000"},
		"send rate": {"CHAT_SEND_RATE": "fast"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPortWithHost(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	cfg, err := loadServerConfig()
	if err != nil {
		t.Fatalf("loadServerConfig err: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
}

func TestAIEnabledWithKeyPair(t *testing.T) {
	cfg := AIConfig{Model: "ep-1", AccessKey: "ak", SecretKey: "sk"}
	if !cfg.Enabled() {
		t.Fatal("expected AK/SK pair to enable AI")
	}
}
