package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/viper"
)

// Config collects everything the server needs that is not derivable from
// the documents themselves: how to spawn the backend, receive timing,
// board rendering defaults, and where the response cache lives.
type Config struct {
	BackendCommand []string `json:"backend_command" mapstructure:"backend_command"`
	LibraryPath    string   `json:"library_path"    mapstructure:"library_path"`
	StderrPath     string   `json:"stderr_path"     mapstructure:"stderr_path"`

	PollIntervalMS   int `json:"poll_interval_ms"   mapstructure:"poll_interval_ms"`
	ReceiveTimeoutMS int `json:"receive_timeout_ms" mapstructure:"receive_timeout_ms"`
	StartupTimeoutMS int `json:"startup_timeout_ms" mapstructure:"startup_timeout_ms"`

	Pixels      int    `json:"pixels"       mapstructure:"pixels"`
	BoardFormat string `json:"board_format" mapstructure:"board_format"`
	Flipped     bool   `json:"flipped"      mapstructure:"flipped"`

	Engine string `json:"engine" mapstructure:"engine"`
	Depth  int    `json:"depth"  mapstructure:"depth"`

	// CachePath of "" lets the server pick an XDG state location;
	// "off" disables the response cache.
	CachePath string `json:"cache_path" mapstructure:"cache_path"`
}

var defaultConfig = Config{
	BackendCommand:   []string{"pygn_server"},
	PollIntervalMS:   10,
	ReceiveTimeoutMS: 500,
	StartupTimeoutMS: 5000,
	Pixels:           400,
	BoardFormat:      "svg",
	Engine:           "stockfish",
	Depth:            20,
}

// Load decodes v (typically LSP InitializationOptions) over the ambient
// defaults. Only fields present in v overwrite.
func Load(v any) (Config, error) {
	cfg, err := Ambient()
	if err != nil {
		return Config{}, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return Config{}, fmt.Errorf("failed to marshal source: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal into Config: %w", err)
	}

	return cfg, nil
}

// LoadFromJSON reads JSON from r into a Config over the defaults.
func LoadFromJSON(r io.Reader) (Config, error) {
	cfg := defaultConfig

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Ambient resolves the defaults through an optional config file
// (pgn-mode.{yaml,json,toml} in the XDG config dir or the working
// directory) and PGN_MODE_* environment variables.
func Ambient() (Config, error) {
	v := viper.New()
	v.SetDefault("backend_command", defaultConfig.BackendCommand)
	v.SetDefault("poll_interval_ms", defaultConfig.PollIntervalMS)
	v.SetDefault("receive_timeout_ms", defaultConfig.ReceiveTimeoutMS)
	v.SetDefault("startup_timeout_ms", defaultConfig.StartupTimeoutMS)
	v.SetDefault("pixels", defaultConfig.Pixels)
	v.SetDefault("board_format", defaultConfig.BoardFormat)
	v.SetDefault("engine", defaultConfig.Engine)
	v.SetDefault("depth", defaultConfig.Depth)

	v.SetConfigName("pgn-mode")
	v.AddConfigPath("$XDG_CONFIG_HOME/pgn-mode")
	v.AddConfigPath("$HOME/.config/pgn-mode")
	v.AddConfigPath(".")
	v.SetEnvPrefix("PGN_MODE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
