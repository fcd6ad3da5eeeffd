package server

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// ShutdownGracePeriod bounds how long the server waits for in-flight
// requests to finish before a process signal forces it down.
const ShutdownGracePeriod = 10 * time.Second

// Config is the on-disk shape of the upload service's configuration file.
type Config struct {
	Server ServerConfig `toml:"server"`
}

// ServerConfig carries everything the service needs to bind, authenticate
// requests, and invoke the generator subprocess.
type ServerConfig struct {
	Bind           string   `toml:"bind"`
	DebDirectory   string   `toml:"deb_directory"`
	RepoDirectory  string   `toml:"repo_directory"`
	Audiences      []string `toml:"audiences"`
	Issuer         string   `toml:"issuer"`
	JWKSURL        string   `toml:"jwks_url"`
	KeyFile        string   `toml:"keyfile"`
	RepogenCommand string   `toml:"repogen_command"`
	ConfigPath     string   `toml:"-"`
}

const defaultRepogenCommand = "aptgen"

// LoadConfig reads and parses a TOML service configuration file, applying
// the default generator command name when the field is left empty.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("server: load config %s: %w", path, err)
	}
	if cfg.Server.RepogenCommand == "" {
		cfg.Server.RepogenCommand = defaultRepogenCommand
	}
	cfg.Server.ConfigPath = path
	return cfg, nil
}
