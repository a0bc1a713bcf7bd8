package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"criollotv/internal/media"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Player != "mpv" {
		t.Errorf("default player = %q, want mpv", cfg.Player)
	}
	if cfg.Quality != "1080" {
		t.Errorf("default quality = %q, want 1080", cfg.Quality)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("default fetch timeout = %v, want 10s", cfg.FetchTimeout)
	}
	if !cfg.History {
		t.Error("default history should be true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	sections, err := cfg.MediaSections()
	if err != nil {
		t.Fatalf("MediaSections() error: %v", err)
	}
	if len(sections) != 2 || sections[0].Name != "Noticias en Vivo" {
		t.Fatalf("unexpected default sections: %+v", sections)
	}
	tn := sections[0].Channels[0]
	if tn.Name != "TN" || tn.Method != media.YouTubeChannel || tn.ExplicitChannelID != "UCj6PcyLvpnIRT_2W_mwa9Aw" || !tn.Enabled {
		t.Errorf("unexpected TN channel: %+v", tn)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"invalid player", func(c *Config) { c.Player = "notepad" }, true},
		{"invalid prober", func(c *Config) { c.Prober = "youtube-dl" }, true},
		{"invalid quality", func(c *Config) { c.Quality = "4k" }, true},
		{"negative timeout", func(c *Config) { c.FetchTimeout = -time.Second }, true},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, true},
		{"no sections", func(c *Config) { c.Sections = nil }, true},
		{"valid vlc", func(c *Config) { c.Player = "vlc" }, false},
		{"valid ytdlp", func(c *Config) { c.Prober = "ytdlp" }, false},
		{"valid 720", func(c *Config) { c.Quality = "720" }, false},
		{"disabled deadline", func(c *Config) { c.ResolveTimeout = 0 }, false},
		{"duplicate channel", func(c *Config) {
			c.Sections[0].Channels = append(c.Sections[0].Channels, c.Sections[0].Channels[0])
		}, true},
		{"same name in another section", func(c *Config) {
			c.Sections[1].Channels = append(c.Sections[1].Channels, c.Sections[0].Channels[0])
		}, false},
		{"unknown method", func(c *Config) { c.Sections[0].Channels[0].Method = "magic" }, true},
		{"youtube channel without reference", func(c *Config) {
			c.Sections[0].Channels[0].ChannelID = ""
			c.Sections[0].Channels[0].URL = ""
		}, true},
		{"direct without stream", func(c *Config) {
			c.Sections[0].Channels[0].Method = "direct_url"
		}, true},
		{"plain http page", func(c *Config) {
			c.Sections[0].Channels[0].Method = ""
			c.Sections[0].Channels[0].URL = "http://www.c5n.com/vivo"
		}, true},
		{"plain http stream", func(c *Config) {
			c.Sections[0].Channels[0].Method = "direct_url"
			c.Sections[0].Channels[0].StreamURL = "http://stream.example/radio.m3u8"
		}, true},
		{"plain http directory source", func(c *Config) {
			c.Directory.Sources = []string{"http://www.tdtchannels.com/lists/tv.json"}
		}, true},
		{"https page", func(c *Config) {
			c.Sections[0].Channels[0].Method = ""
			c.Sections[0].Channels[0].URL = "https://www.c5n.com/vivo"
		}, false},
		{"page without url", func(c *Config) {
			c.Sections[0].Channels[0].Method = ""
			c.Sections[0].Channels[0].URL = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	appDir := filepath.Join(dir, "criollotv")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(appDir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromTOML(t *testing.T) {
	writeConfig(t, `
player = "vlc"
quality = "720"
history = false
fetch_timeout = "5s"
resolve_timeout = "0s"
proxy = "socks5://127.0.0.1:9050"

[directory]
known_channels = { "La 1" = "UCj6PcyLvpnIRT_2W_mwa9Aw" }

[[sections]]
name = "Deportes"

[[sections.channels]]
name = "TyC Sports"
url = "https://www.tycsports.com/envivo"

[[sections.channels]]
name = "Radio"
method = "direct_url"
stream_url = "https://stream.example/radio.m3u8"
enabled = false
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Player != "vlc" {
		t.Errorf("player = %q, want vlc", cfg.Player)
	}
	if cfg.Quality != "720" || cfg.PreferredHeight() != 720 {
		t.Errorf("quality = %q, want 720", cfg.Quality)
	}
	if cfg.History {
		t.Error("history should be false")
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("fetch_timeout = %v, want 5s", cfg.FetchTimeout)
	}
	if cfg.ResolveTimeout != 0 {
		t.Errorf("resolve_timeout = %v, want 0", cfg.ResolveTimeout)
	}
	if cfg.DirectoryTimeout != 15*time.Second {
		t.Errorf("directory_timeout = %v, want default 15s", cfg.DirectoryTimeout)
	}
	if cfg.Directory.KnownChannels["La 1"] != "UCj6PcyLvpnIRT_2W_mwa9Aw" {
		t.Errorf("known_channels = %v", cfg.Directory.KnownChannels)
	}
	if len(cfg.Directory.Sources) != 2 {
		t.Errorf("directory sources should keep defaults, got %v", cfg.Directory.Sources)
	}

	sections, err := cfg.MediaSections()
	if err != nil {
		t.Fatalf("MediaSections() error: %v", err)
	}
	if len(sections) != 1 || sections[0].Name != "Deportes" {
		t.Fatalf("file sections should replace defaults, got %+v", sections)
	}
	tyc, radio := sections[0].Channels[0], sections[0].Channels[1]
	if tyc.Method != media.PageScrape || !tyc.Enabled {
		t.Errorf("TyC Sports = %+v, want enabled page scrape", tyc)
	}
	if radio.Method != media.DirectURL || radio.Enabled || radio.DirectStreamURL == "" {
		t.Errorf("Radio = %+v, want disabled direct url", radio)
	}
}

func TestLoadFileChannelsDoNotInheritDefaults(t *testing.T) {
	writeConfig(t, `
[directory]
sources = ["https://mirror.example/tv.json"]

[[sections]]
name = "Propios"

[[sections.channels]]
name = "Foo"
url = "https://foo.example/live"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	sections, err := cfg.MediaSections()
	if err != nil {
		t.Fatalf("MediaSections() error: %v", err)
	}
	if len(sections) != 1 || len(sections[0].Channels) != 1 {
		t.Fatalf("want one section with one channel, got %+v", sections)
	}
	foo := sections[0].Channels[0]
	if foo.Method != media.PageScrape {
		t.Errorf("Foo method = %v, want page_scrape", foo.Method)
	}
	if foo.ExplicitChannelID != "" || foo.Logo != "" {
		t.Errorf("Foo inherited default fields: %+v", foo)
	}
	if len(cfg.Directory.Sources) != 1 || cfg.Directory.Sources[0] != "https://mirror.example/tv.json" {
		t.Errorf("directory sources = %v, want only the file's", cfg.Directory.Sources)
	}
	if len(cfg.Directory.Domains) != 1 || cfg.Directory.Domains[0] != "tdtchannels" {
		t.Errorf("directory domains = %v, want defaults", cfg.Directory.Domains)
	}
}

func TestLoadWithoutSectionsKeepsDefaults(t *testing.T) {
	writeConfig(t, `player = "vlc"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Sections) != 2 || cfg.Sections[0].Channels[0].Name != "TN" {
		t.Errorf("default sections should survive a file without sections, got %d sections", len(cfg.Sections))
	}
}

func TestLoadRejectsPlainHTTPChannel(t *testing.T) {
	writeConfig(t, `
[[sections]]
name = "Propios"

[[sections.channels]]
name = "Foo"
url = "http://foo.example/live"
`)
	if _, err := Load(); err == nil {
		t.Error("Load() should reject a plain http channel page")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	writeConfig(t, `
player = "vlc"
quality = "720"
`)
	t.Setenv("CRIOLLOTV_PLAYER", "iina")
	t.Setenv("CRIOLLOTV_FETCH_TIMEOUT", "3s")
	t.Setenv("CRIOLLOTV_DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Player != "iina" {
		t.Errorf("player = %q, want env override iina", cfg.Player)
	}
	if cfg.Quality != "720" {
		t.Errorf("quality = %q, want file value 720", cfg.Quality)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("fetch_timeout = %v, want 3s", cfg.FetchTimeout)
	}
	if !cfg.Debug {
		t.Error("debug should be enabled from env")
	}
}

func TestLoadInvalid(t *testing.T) {
	writeConfig(t, `player = "notepad"`)
	if _, err := Load(); err == nil {
		t.Error("Load() should reject an invalid player")
	}

	writeConfig(t, `player = [`)
	if _, err := Load(); err == nil {
		t.Error("Load() should reject malformed TOML")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not error on missing file: %v", err)
	}
	if cfg.Player != "mpv" {
		t.Errorf("missing file should return defaults, got player = %q", cfg.Player)
	}
}

func TestExpandRecordDir(t *testing.T) {
	cfg := Default()
	cfg.RecordDir = "/tmp/test-recordings"

	dir, err := cfg.ExpandRecordDir()
	if err != nil {
		t.Fatalf("ExpandRecordDir() error: %v", err)
	}
	if dir != "/tmp/test-recordings" {
		t.Errorf("got %q, want /tmp/test-recordings", dir)
	}
}

func TestHistoryPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	path, err := HistoryPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/data/criollotv/history.db" {
		t.Errorf("HistoryPath() = %q", path)
	}
}
