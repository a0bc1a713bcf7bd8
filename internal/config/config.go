// Package config handles TOML-based configuration loading and validation.
// Values are layered: built-in defaults, then the config file, then
// CRIOLLOTV_* environment variables (optionally from a .env file).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"criollotv/internal/directory"
	"criollotv/internal/httputil"
	"criollotv/internal/media"
)

const appName = "criollotv"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CRIOLLOTV_"

// Config holds all application configuration.
type Config struct {
	Player           string          `toml:"player" env:"PLAYER"`
	Quality          string          `toml:"quality" env:"QUALITY"`
	History          bool            `toml:"history" env:"HISTORY"`
	RecordDir        string          `toml:"record_dir" env:"RECORD_DIR"`
	Debug            bool            `toml:"debug" env:"DEBUG"`
	UserAgent        string          `toml:"user_agent" env:"USER_AGENT"`
	FetchTimeout     time.Duration   `toml:"fetch_timeout" env:"FETCH_TIMEOUT"`
	DirectoryTimeout time.Duration   `toml:"directory_timeout" env:"DIRECTORY_TIMEOUT"`
	ResolveTimeout   time.Duration   `toml:"resolve_timeout" env:"RESOLVE_TIMEOUT"`
	Proxy            string          `toml:"proxy" env:"PROXY"`
	Prober           string          `toml:"prober" env:"PROBER"`
	YtdlpPath        string          `toml:"ytdlp_path" env:"YTDLP_PATH"`
	Listen           string          `toml:"listen" env:"LISTEN"`
	RateLimit        float64         `toml:"rate_limit" env:"RATE_LIMIT"`
	Directory        DirectoryConfig `toml:"directory"`
	Sections         []SectionConfig `toml:"sections"`
}

// DirectoryConfig configures the directory fallback.
type DirectoryConfig struct {
	Sources       []string          `toml:"sources"`
	Domains       []string          `toml:"domains"`
	KnownChannels map[string]string `toml:"known_channels"`
}

// SectionConfig is a named group of channels as written in the file.
type SectionConfig struct {
	Name     string          `toml:"name"`
	Channels []ChannelConfig `toml:"channels"`
}

// ChannelConfig is one channel as written in the file. Enabled defaults to
// true when omitted.
type ChannelConfig struct {
	Name      string `toml:"name"`
	URL       string `toml:"url"`
	Logo      string `toml:"logo"`
	Enabled   *bool  `toml:"enabled"`
	Method    string `toml:"method"`
	ChannelID string `toml:"channel_id"`
	StreamURL string `toml:"stream_url"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Player:           "mpv",
		Quality:          "1080",
		History:          true,
		RecordDir:        "~/Videos/criollotv",
		Debug:            false,
		FetchTimeout:     10 * time.Second,
		DirectoryTimeout: 15 * time.Second,
		ResolveTimeout:   45 * time.Second,
		Prober:           "kkdai",
		Listen:           "127.0.0.1:8080",
		RateLimit:        2,
		Directory: DirectoryConfig{
			Sources:       directory.DefaultSources(),
			Domains:       []string{"tdtchannels"},
			KnownChannels: map[string]string{},
		},
		Sections: defaultSections(),
	}
}

func youtubeChannel(name, handle, id, logo string) ChannelConfig {
	return ChannelConfig{
		Name:      name,
		URL:       "https://www.youtube.com/@" + handle + "/live",
		Logo:      logo,
		Method:    "youtube_channel",
		ChannelID: id,
	}
}

func defaultSections() []SectionConfig {
	return []SectionConfig{
		{
			Name: "Noticias en Vivo",
			Channels: []ChannelConfig{
				youtubeChannel("TN", "todonoticias", "UCj6PcyLvpnIRT_2W_mwa9Aw", "images/tn.webp"),
				youtubeChannel("C5N", "c5n", "UCFgk2Q2mVO1BklRQhSv6p0w", "images/c5n.webp"),
				youtubeChannel("LN+", "lanacionmas", "UCba3hpU7EFBSk817y9qZkiA", "images/lnmas.webp"),
				youtubeChannel("A24", "A24COM", "UCR9120YBAqMfntqgRTKmkjQ", "images/a24.webp"),
				youtubeChannel("Telefe Noticias", "Telefenoticias", "UChxGASjdNEYHhVKpl667Huw", "images/telefe_noticias.webp"),
				youtubeChannel("Cronica TV", "cronicatv", "UCT7KFGv6s2a-rh2Jq8ZdM1g", "images/cronica.webp"),
				youtubeChannel("Canal 26", "canal26", "UCrpMfcQNog595v5gAS-oUsQ", "images/canal26.webp"),
				youtubeChannel("Canal 9", "canal9oficial", "UCO2ZvU5_VdSt3F55DF8UZRA", "images/el_nueve.webp"),
			},
		},
		{
			Name: "Dibujos Animados",
			Channels: []ChannelConfig{
				youtubeChannel("Cartoon Network", "CartoonLA", "UCQySZQ6rrgJXRuonMwIIGMA", "images/cartoon_network.webp"),
			},
		},
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file, applies environment overrides and validates
// the result. A missing config file is not an error.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		path = ""
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit config path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decodeFile(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// A missing .env file is the common case.
	_ = godotenv.Load()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// decodeFile merges a TOML document over cfg. Lists are replaced, never
// merged element-wise: toml reuses a slice's backing array, so a file channel
// would otherwise inherit the fields it leaves out from the default channel
// at the same index.
func decodeFile(data []byte, cfg *Config) error {
	sections, sources, domains := cfg.Sections, cfg.Directory.Sources, cfg.Directory.Domains
	cfg.Sections, cfg.Directory.Sources, cfg.Directory.Domains = nil, nil, nil

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}

	if !md.IsDefined("sections") {
		cfg.Sections = sections
	}
	if !md.IsDefined("directory", "sources") {
		cfg.Directory.Sources = sources
	}
	if !md.IsDefined("directory", "domains") {
		cfg.Directory.Domains = domains
	}
	return nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	validPlayers := map[string]bool{
		"mpv": true, "vlc": true, "iina": true, "celluloid": true,
	}
	if !validPlayers[strings.ToLower(c.Player)] {
		return fmt.Errorf("unsupported player %q (valid: mpv, vlc, iina, celluloid)", c.Player)
	}

	validQualities := map[string]bool{
		"360": true, "480": true, "720": true, "1080": true,
	}
	if !validQualities[c.Quality] {
		return fmt.Errorf("unsupported quality %q (valid: 360, 480, 720, 1080)", c.Quality)
	}

	validProbers := map[string]bool{"kkdai": true, "ytdlp": true}
	if !validProbers[strings.ToLower(c.Prober)] {
		return fmt.Errorf("unsupported prober %q (valid: kkdai, ytdlp)", c.Prober)
	}

	for name, d := range map[string]time.Duration{
		"fetch_timeout":     c.FetchTimeout,
		"directory_timeout": c.DirectoryTimeout,
		"resolve_timeout":   c.ResolveTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative")
	}

	for _, src := range c.Directory.Sources {
		if err := httputil.ValidateURL(src); err != nil {
			return fmt.Errorf("directory source %q: %w", src, err)
		}
	}

	if len(c.Sections) == 0 {
		return fmt.Errorf("no channel sections configured")
	}

	_, err := c.MediaSections()
	return err
}

// MediaSections converts the configured sections into resolver input,
// checking each channel on the way.
func (c *Config) MediaSections() ([]media.Section, error) {
	out := make([]media.Section, 0, len(c.Sections))
	for _, s := range c.Sections {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("section without a name")
		}
		seen := make(map[string]bool, len(s.Channels))
		section := media.Section{Name: s.Name}

		for _, ch := range s.Channels {
			mc, err := ch.toMedia()
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", s.Name, err)
			}
			if seen[mc.Name] {
				return nil, fmt.Errorf("section %q: duplicate channel %q", s.Name, mc.Name)
			}
			seen[mc.Name] = true
			section.Channels = append(section.Channels, mc)
		}
		out = append(out, section)
	}
	return out, nil
}

func (ch ChannelConfig) toMedia() (media.ChannelConfig, error) {
	name := strings.TrimSpace(ch.Name)
	if name == "" {
		return media.ChannelConfig{}, fmt.Errorf("channel without a name")
	}

	method, err := media.ParseResolutionMethod(ch.Method)
	if err != nil {
		return media.ChannelConfig{}, fmt.Errorf("channel %q: %w", name, err)
	}

	switch method {
	case media.YouTubeChannel:
		if ch.ChannelID == "" && ch.URL == "" {
			return media.ChannelConfig{}, fmt.Errorf("channel %q: youtube_channel needs channel_id or url", name)
		}
	case media.DirectURL:
		if ch.StreamURL == "" {
			return media.ChannelConfig{}, fmt.Errorf("channel %q: direct_url needs stream_url", name)
		}
		if err := httputil.ValidateURL(ch.StreamURL); err != nil {
			return media.ChannelConfig{}, fmt.Errorf("channel %q: stream_url: %w", name, err)
		}
	default:
		if ch.URL == "" {
			return media.ChannelConfig{}, fmt.Errorf("channel %q: page_scrape needs url", name)
		}
		if err := httputil.ValidateURL(ch.URL); err != nil {
			return media.ChannelConfig{}, fmt.Errorf("channel %q: url: %w", name, err)
		}
	}

	enabled := true
	if ch.Enabled != nil {
		enabled = *ch.Enabled
	}

	return media.ChannelConfig{
		Name:              name,
		SourceURL:         ch.URL,
		Logo:              ch.Logo,
		Method:            method,
		ExplicitChannelID: ch.ChannelID,
		DirectStreamURL:   ch.StreamURL,
		Enabled:           enabled,
	}, nil
}

// PreferredHeight returns the configured quality as a height.
func (c *Config) PreferredHeight() int {
	return media.LabelHeight(c.Quality)
}

// ExpandRecordDir resolves ~ in the recording directory path.
func (c *Config) ExpandRecordDir() (string, error) {
	dir := c.RecordDir
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}

// HistoryPath returns the path to the history database.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appName, "history.db"), nil
}
