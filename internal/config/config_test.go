package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 8000 {
		t.Fatalf("expected default port 8000, got %d", cfg.Port)
	}
	if cfg.DefaultBackend != "openai" {
		t.Fatalf("expected default backend openai, got %q", cfg.DefaultBackend)
	}
	if cfg.ChatHistoryLimit != 50 {
		t.Fatalf("expected history limit 50, got %d", cfg.ChatHistoryLimit)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env by default, got %q", cfg.Env)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DEFAULT_LLM_BACKEND", "gemini")

	cfg := Load()
	if cfg.Port != 9090 || cfg.Env != "production" || cfg.DefaultBackend != "gemini" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.IsDevelopment() {
		t.Fatal("production env reported as development")
	}
}

func TestMockMode(t *testing.T) {
	if MockMode() {
		t.Fatal("mock mode without CHAT_MODE set")
	}
	t.Setenv(EnvChatMode, ModeMock)
	if !MockMode() {
		t.Fatal("expected mock mode with CHAT_MODE=MOCK")
	}
}
