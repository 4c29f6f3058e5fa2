package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"speech-relay/internal/domain"
)

type Config struct {
	Speech     SpeechConfig     `yaml:"speech"`
	Responder  ResponderConfig  `yaml:"responder"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	Output     OutputConfig     `yaml:"output"`
	Microphone MicrophoneConfig `yaml:"microphone"`
	Inbox      InboxConfig      `yaml:"inbox"`
	Pushover   PushoverConfig   `yaml:"pushover"`
	Log        LogConfig        `yaml:"log"`
}

type SpeechConfig struct {
	Provider          string        `yaml:"provider"`
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url"`
	Language          string        `yaml:"language"`
	MinFileSize       int64         `yaml:"min_file_size"`
	InitialThreshold  float64       `yaml:"initial_threshold"`
	FallbackThreshold float64       `yaml:"fallback_threshold"`
	AmbientWindow     time.Duration `yaml:"ambient_window"`
}

type ResponderConfig struct {
	Provider string        `yaml:"provider"`
	Timeout  time.Duration `yaml:"timeout"`
}

type GeminiConfig struct {
	APIKeyEnv       string `yaml:"api_key_env"`
	Model           string `yaml:"model"`
	Transport       string `yaml:"transport"`
	BaseURL         string `yaml:"base_url"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

type AnthropicConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
}

type OutputConfig struct {
	TranscriptFile string `yaml:"transcript_file"`
	ReplyFile      string `yaml:"reply_file"`
	TempInputFile  string `yaml:"temp_input_file"`
}

type MicrophoneConfig struct {
	SampleRate int    `yaml:"sample_rate"`
	MaxSeconds int    `yaml:"max_seconds"`
	OutputFile string `yaml:"output_file"`
}

type InboxConfig struct {
	Dir          string        `yaml:"dir"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

// LoadOptional is Load, except that a missing file yields the defaults.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

// LoadDotEnv copies variables from env files into the process environment.
// Variables that are already set win. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(filepath.Clean(p)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Speech.Provider == "" {
		c.Speech.Provider = "google"
	}
	if c.Speech.APIKey == "" {
		switch c.Speech.Provider {
		case "whisper":
			c.Speech.APIKey = os.Getenv("OPENAI_API_KEY")
		default:
			c.Speech.APIKey = os.Getenv("GOOGLE_SPEECH_API_KEY")
		}
	}
	if c.Speech.Language == "" {
		if c.Speech.Provider == "whisper" {
			c.Speech.Language = "en"
		} else {
			c.Speech.Language = "en-US"
		}
	}
	if c.Speech.MinFileSize == 0 {
		c.Speech.MinFileSize = domain.MinAudioFileSize
	}
	if c.Speech.InitialThreshold == 0 {
		c.Speech.InitialThreshold = domain.DefaultEnergyThreshold
	}
	if c.Speech.FallbackThreshold == 0 {
		c.Speech.FallbackThreshold = domain.FallbackEnergyThreshold
	}
	if c.Speech.AmbientWindow == 0 {
		c.Speech.AmbientWindow = domain.AmbientNoiseWindow
	}
	if c.Responder.Provider == "" {
		c.Responder.Provider = "gemini"
	}
	if c.Responder.Timeout == 0 {
		c.Responder.Timeout = 30 * time.Second
	}
	if c.Gemini.APIKeyEnv == "" {
		c.Gemini.APIKeyEnv = "GEMINI_API_KEY"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Gemini.Transport == "" {
		c.Gemini.Transport = "sdk"
	}
	if c.Anthropic.APIKeyEnv == "" {
		c.Anthropic.APIKeyEnv = "ANTHROPIC_API_KEY"
	}
	if c.Output.TranscriptFile == "" {
		c.Output.TranscriptFile = domain.DefaultTranscriptPath
	}
	if c.Output.ReplyFile == "" {
		c.Output.ReplyFile = domain.DefaultReplyPath
	}
	if c.Output.TempInputFile == "" {
		c.Output.TempInputFile = domain.DefaultTempInputPath
	}
	if c.Microphone.SampleRate == 0 {
		c.Microphone.SampleRate = 16000
	}
	if c.Microphone.MaxSeconds == 0 {
		c.Microphone.MaxSeconds = 10
	}
	if c.Microphone.OutputFile == "" {
		c.Microphone.OutputFile = "output.wav"
	}
	if c.Inbox.PollInterval == 0 {
		c.Inbox.PollInterval = time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// APIKeyEnv names the variable holding the credential of the selected responder.
func (c *Config) APIKeyEnv() string {
	if c.Responder.Provider == "claude" {
		return c.Anthropic.APIKeyEnv
	}
	return c.Gemini.APIKeyEnv
}
