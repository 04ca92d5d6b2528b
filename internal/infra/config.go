package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileEnv names the environment variable pointing at an optional TOML
// file. Values from the file act as defaults; environment variables win.
const ConfigFileEnv = "PODCASTGEN_CONFIG"

// Supported master output formats.
const (
	OutputFormatWAV = "wav"
	OutputFormatMP3 = "mp3"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	OutputDir          string
	PublicOutputPath   string
	OutputFormat       string
	FFmpegPath         string
	ChimePath          string
	GeoIPDBPath        string
	CORSOrigins        []string
	UserAgent          string
	WikipediaBaseURL   string
	MiniMaxAPIKey      string
	MiniMaxGroupID     string
	MiniMaxBaseURL     string
	MiniMaxModel       string
	MiniMaxMusicModel  string
	ElevenLabsAPIKey   string
	ElevenLabsBaseURL  string
	ElevenLabsModel    string
	VoiceAlex          string
	VoiceSam           string
	JinglePollInterval time.Duration
	JingleMaxAttempts  int
	UpstreamTimeout    time.Duration
	ConnectTimeout     time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// fileConfig mirrors Config for the optional TOML file.
type fileConfig struct {
	AppEnv           string   `toml:"app_env"`
	Port             string   `toml:"port"`
	OutputDir        string   `toml:"output_dir"`
	PublicOutputPath string   `toml:"public_output_path"`
	OutputFormat     string   `toml:"output_format"`
	FFmpegPath       string   `toml:"ffmpeg_path"`
	ChimePath        string   `toml:"chime_path"`
	GeoIPDBPath      string   `toml:"geoip_db_path"`
	CORSOrigins      []string `toml:"cors_origins"`
	UserAgent        string   `toml:"user_agent"`
	Wikipedia        struct {
		BaseURL string `toml:"base_url"`
	} `toml:"wikipedia"`
	MiniMax struct {
		APIKey     string `toml:"api_key"`
		GroupID    string `toml:"group_id"`
		BaseURL    string `toml:"base_url"`
		Model      string `toml:"model"`
		MusicModel string `toml:"music_model"`
	} `toml:"minimax"`
	ElevenLabs struct {
		APIKey    string `toml:"api_key"`
		BaseURL   string `toml:"base_url"`
		Model     string `toml:"model"`
		VoiceAlex string `toml:"voice_alex"`
		VoiceSam  string `toml:"voice_sam"`
	} `toml:"elevenlabs"`
	Jingle struct {
		PollIntervalSeconds int `toml:"poll_interval_seconds"`
		MaxAttempts         int `toml:"max_attempts"`
	} `toml:"jingle"`
	RateLimitPerMin int `toml:"rate_limit_per_minute"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	var file fileConfig
	if path := strings.TrimSpace(os.Getenv(ConfigFileEnv)); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", or(file.AppEnv, "development")),
		Port:               getEnv("PORT", or(file.Port, "8000")),
		OutputDir:          getEnv("OUTPUT_DIR", or(file.OutputDir, "output")),
		PublicOutputPath:   getEnv("PUBLIC_OUTPUT_PATH", or(file.PublicOutputPath, "/output")),
		OutputFormat:       strings.ToLower(getEnv("OUTPUT_FORMAT", or(file.OutputFormat, OutputFormatWAV))),
		FFmpegPath:         getEnv("FFMPEG_PATH", or(file.FFmpegPath, "ffmpeg")),
		ChimePath:          getEnv("CHIME_PATH", or(file.ChimePath, "static/bell.mp3")),
		GeoIPDBPath:        getEnv("GEOIP_DB_PATH", file.GeoIPDBPath),
		CORSOrigins:        getEnvList("CORS_ALLOWED_ORIGINS", file.CORSOrigins),
		UserAgent:          getEnv("USER_AGENT", or(file.UserAgent, "PodcastGenerator/1.0 (https://github.com/local/podcastgen; contact@example.com)")),
		WikipediaBaseURL:   getEnv("WIKIPEDIA_API_URL", or(file.Wikipedia.BaseURL, "https://en.wikipedia.org/w/api.php")),
		MiniMaxAPIKey:      getEnv("MINIMAX_API_KEY", file.MiniMax.APIKey),
		MiniMaxGroupID:     getEnv("MINIMAX_GROUP_ID", file.MiniMax.GroupID),
		MiniMaxBaseURL:     getEnv("MINIMAX_BASE_URL", or(file.MiniMax.BaseURL, "https://api.minimaxi.chat/v1")),
		MiniMaxModel:       getEnv("MINIMAX_MODEL", or(file.MiniMax.Model, "MiniMax-Text-01")),
		MiniMaxMusicModel:  getEnv("MINIMAX_MUSIC_MODEL", or(file.MiniMax.MusicModel, "music-01")),
		ElevenLabsAPIKey:   getEnv("ELEVENLABS_API_KEY", file.ElevenLabs.APIKey),
		ElevenLabsBaseURL:  getEnv("ELEVENLABS_BASE_URL", or(file.ElevenLabs.BaseURL, "https://api.elevenlabs.io/v1")),
		ElevenLabsModel:    getEnv("ELEVENLABS_MODEL", or(file.ElevenLabs.Model, "eleven_turbo_v2")),
		VoiceAlex:          getEnv("ELEVENLABS_VOICE_ALEX", or(file.ElevenLabs.VoiceAlex, "21m00Tcm4TlvDq8ikWAM")),
		VoiceSam:           getEnv("ELEVENLABS_VOICE_SAM", or(file.ElevenLabs.VoiceSam, "AZnzlk1XvdvUeBnXmlld")),
		JinglePollInterval: time.Second * time.Duration(getEnvInt("JINGLE_POLL_INTERVAL_SECONDS", orInt(file.Jingle.PollIntervalSeconds, 2))),
		JingleMaxAttempts:  getEnvInt("JINGLE_MAX_ATTEMPTS", orInt(file.Jingle.MaxAttempts, 30)),
		UpstreamTimeout:    time.Second * time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 300)),
		ConnectTimeout:     time.Second * time.Duration(getEnvInt("UPSTREAM_CONNECT_TIMEOUT_SECONDS", 10)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 900)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", orInt(file.RateLimitPerMin, 10)),
	}

	switch cfg.OutputFormat {
	case OutputFormatWAV, OutputFormatMP3:
	default:
		return nil, fmt.Errorf("OUTPUT_FORMAT must be %q or %q, got %q", OutputFormatWAV, OutputFormatMP3, cfg.OutputFormat)
	}

	if cfg.JinglePollInterval <= 0 {
		return nil, fmt.Errorf("JINGLE_POLL_INTERVAL_SECONDS must be positive")
	}

	if cfg.JingleMaxAttempts <= 0 {
		return nil, fmt.Errorf("JINGLE_MAX_ATTEMPTS must be positive")
	}

	return cfg, nil
}

// HasScriptCredentials reports whether the LLM stage can call MiniMax.
func (c *Config) HasScriptCredentials() bool {
	return c.MiniMaxAPIKey != ""
}

// HasMusicCredentials reports whether the jingle stage can call MiniMax music.
func (c *Config) HasMusicCredentials() bool {
	return c.MiniMaxAPIKey != "" && c.MiniMaxGroupID != ""
}

// HasVoiceCredentials reports whether the voice stage can call ElevenLabs.
func (c *Config) HasVoiceCredentials() bool {
	return c.ElevenLabsAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func or(v, fallback string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func orInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}
