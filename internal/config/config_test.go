package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "FRONTEND_URL", "OLLAMA_BASE_URL", "DEFAULT_MODEL", "OPENAI_BASE_URL", "UPSTREAM_TIMEOUT", "CHATBOT_MODELS_BACKEND"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8000" {
		t.Fatalf("unexpected port: %q", cfg.Port)
	}
	if cfg.FrontendURL != "http://localhost:5173" {
		t.Fatalf("unexpected frontend url: %q", cfg.FrontendURL)
	}
	if cfg.OllamaBaseURL != "http://localhost:11434" || cfg.DefaultModel != "llama2" {
		t.Fatalf("unexpected ollama settings: %#v", cfg)
	}
	if cfg.ModelsBackend != BackendOllama {
		t.Fatalf("unexpected models backend: %q", cfg.ModelsBackend)
	}
	if cfg.UpstreamTimeout != 60*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.UpstreamTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", " 9000 ")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434/")
	t.Setenv("OPENAI_TLS_FINGERPRINT", "true")
	t.Setenv("ANTHROPIC_MAX_TOKENS", "1024")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	cfg := Load()
	if cfg.Port != "9000" {
		t.Fatalf("unexpected port: %q", cfg.Port)
	}
	if cfg.OllamaBaseURL != "http://ollama:11434" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.OllamaBaseURL)
	}
	if !cfg.OpenAITLSFingerprint {
		t.Fatal("expected fingerprint enabled")
	}
	if cfg.AnthropicMaxTokens != 1024 {
		t.Fatalf("unexpected max tokens: %d", cfg.AnthropicMaxTokens)
	}
	if cfg.UpstreamTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.UpstreamTimeout)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("ANTHROPIC_MAX_TOKENS", "-3")
	t.Setenv("UPSTREAM_TIMEOUT", "soon")
	cfg := Load()
	if cfg.AnthropicMaxTokens != 4096 || cfg.UpstreamTimeout != 60*time.Second {
		t.Fatalf("expected defaults for invalid values: %#v", cfg)
	}
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DEFAULT_MODEL=from-dotenv\nPORT=7000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	t.Setenv("PORT", "8100")
	t.Setenv("DEFAULT_MODEL", "")
	os.Unsetenv("DEFAULT_MODEL")

	LoadDotEnv()
	cfg := Load()
	if cfg.DefaultModel != "from-dotenv" {
		t.Fatalf("expected model from .env, got %q", cfg.DefaultModel)
	}
	if cfg.Port != "8100" {
		t.Fatalf("expected environment to win, got %q", cfg.Port)
	}
}

func TestDefaultRoutingTableDependsOnKeys(t *testing.T) {
	table := DefaultRoutingTable(Config{OpenAIModel: "gpt-4"})
	if table.Default != BackendOllama {
		t.Fatalf("unexpected default: %q", table.Default)
	}
	if len(table.Routes) != 1 || table.Routes[0].Backend != BackendLorem {
		t.Fatalf("expected only the lorem route without keys: %#v", table.Routes)
	}

	table = DefaultRoutingTable(Config{OpenAIAPIKey: "sk", OpenAIModel: "gpt-4", AnthropicAPIKey: "ak"})
	backends := map[string]bool{}
	for _, r := range table.Routes {
		backends[r.Backend] = true
	}
	if !backends[BackendOpenAI] || !backends[BackendAnthropic] {
		t.Fatalf("expected hosted routes: %#v", table.Routes)
	}
	if len(table.Models) != 1 || table.Models[0] != "gpt-4" {
		t.Fatalf("unexpected advertised models: %#v", table.Models)
	}
}

func TestParseRoutingTable(t *testing.T) {
	raw := []byte(`
routes:
  - match: "gpt-*"
    backend: openai
  - match: " mistral "
    backend: ollama
models: [gpt-4o]
`)
	table, err := ParseRoutingTable(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if table.Default != BackendOllama {
		t.Fatalf("expected ollama default, got %q", table.Default)
	}
	if len(table.Routes) != 2 || table.Routes[1].Match != "mistral" {
		t.Fatalf("unexpected routes: %#v", table.Routes)
	}
	if len(table.Models) != 1 || table.Models[0] != "gpt-4o" {
		t.Fatalf("unexpected models: %#v", table.Models)
	}
}

func TestParseRoutingTableRejectsIncompleteRule(t *testing.T) {
	if _, err := ParseRoutingTable([]byte("routes:\n  - match: \"gpt-*\"\n")); err == nil {
		t.Fatal("expected error for rule without backend")
	}
	if _, err := ParseRoutingTable([]byte("routes: [")); err == nil {
		t.Fatal("expected yaml error")
	}
}

func TestLoadRoutingTableFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(path, []byte("default: lorem\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	table, err := LoadRoutingTable(Config{RoutesFile: path})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if table.Default != BackendLorem {
		t.Fatalf("unexpected default: %q", table.Default)
	}
	if _, err := LoadRoutingTable(Config{RoutesFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestInitLoggerJSON(t *testing.T) {
	prev := Logger
	defer func() { Logger = prev }()
	var buf bytes.Buffer
	InitLogger("debug", "json", &buf)
	Logger.Debug("hello", "k", "v")
	if !strings.Contains(buf.String(), `"msg":"hello"`) || !strings.Contains(buf.String(), `"k":"v"`) {
		t.Fatalf("unexpected log output: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("WARN").String() != "WARN" || parseLevel("bogus").String() != "INFO" {
		t.Fatal("unexpected level parsing")
	}
}
