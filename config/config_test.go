package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"speech-relay/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoad_ExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("TEST_SPEECH_KEY", "speech-secret")

	path := writeFile(t, t.TempDir(), "relay.yaml", `
speech:
  provider: google
  api_key: ${TEST_SPEECH_KEY}
  min_file_size: 2048
  ambient_window: 250ms
responder:
  timeout: 10s
gemini:
  transport: rest
log:
  level: debug
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Speech.APIKey != "speech-secret" {
		t.Errorf("Speech.APIKey: got %q", cfg.Speech.APIKey)
	}
	if cfg.Speech.MinFileSize != 2048 {
		t.Errorf("Speech.MinFileSize: got %d", cfg.Speech.MinFileSize)
	}
	if cfg.Speech.AmbientWindow != 250*time.Millisecond {
		t.Errorf("Speech.AmbientWindow: got %s", cfg.Speech.AmbientWindow)
	}
	if cfg.Speech.InitialThreshold != 300 || cfg.Speech.FallbackThreshold != 50 {
		t.Errorf("thresholds: got %f/%f", cfg.Speech.InitialThreshold, cfg.Speech.FallbackThreshold)
	}
	if cfg.Responder.Timeout != 10*time.Second {
		t.Errorf("Responder.Timeout: got %s", cfg.Responder.Timeout)
	}
	if cfg.Gemini.Transport != "rest" {
		t.Errorf("Gemini.Transport: got %q", cfg.Gemini.Transport)
	}
	if cfg.Output.ReplyFile != "app_output/ai_response.txt" {
		t.Errorf("Output.ReplyFile: got %q", cfg.Output.ReplyFile)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("Log: got %+v", cfg.Log)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "speech: [unclosed")

	if _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadOptional_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOptional error: %v", err)
	}

	if cfg.Gemini.APIKeyEnv != "GEMINI_API_KEY" {
		t.Errorf("Gemini.APIKeyEnv: got %q", cfg.Gemini.APIKeyEnv)
	}
	if cfg.Output.TranscriptFile != "app_output/transcribed_output.txt" {
		t.Errorf("Output.TranscriptFile: got %q", cfg.Output.TranscriptFile)
	}
	if cfg.Responder.Timeout != 30*time.Second {
		t.Errorf("Responder.Timeout: got %s", cfg.Responder.Timeout)
	}
	if cfg.Speech.MinFileSize != 1000 {
		t.Errorf("Speech.MinFileSize: got %d", cfg.Speech.MinFileSize)
	}
}

func TestAPIKeyEnv(t *testing.T) {
	cfg := config.Default()
	if cfg.APIKeyEnv() != "GEMINI_API_KEY" {
		t.Errorf("gemini env: got %q", cfg.APIKeyEnv())
	}

	cfg.Responder.Provider = "claude"
	if cfg.APIKeyEnv() != "ANTHROPIC_API_KEY" {
		t.Errorf("claude env: got %q", cfg.APIKeyEnv())
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("RELAY_DOTENV_TEST", "")
	os.Unsetenv("RELAY_DOTENV_TEST")
	t.Setenv("RELAY_DOTENV_KEEP", "from-process")

	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "RELAY_DOTENV_TEST=from-file\nRELAY_DOTENV_KEEP=from-file\n")

	if err := config.LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv error: %v", err)
	}

	if got := os.Getenv("RELAY_DOTENV_TEST"); got != "from-file" {
		t.Errorf("RELAY_DOTENV_TEST: got %q", got)
	}
	if got := os.Getenv("RELAY_DOTENV_KEEP"); got != "from-process" {
		t.Errorf("RELAY_DOTENV_KEEP: got %q, existing variables must win", got)
	}
}
