package repogen

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/etnz/debrepod/deb"
)

// Config is the on-disk shape of a repository's configuration file: a
// single [release] table carrying every ReleaseMetadata field except Date,
// which is always generated at regeneration time.
type Config struct {
	Release ConfigReleaseMetadata `toml:"release"`
}

// ConfigReleaseMetadata mirrors deb.ReleaseMetadata, minus Date.
type ConfigReleaseMetadata struct {
	Origin      string `toml:"origin"`
	Label       string `toml:"label"`
	Suite       string `toml:"suite"`
	Codename    string `toml:"codename"`
	Version     string `toml:"version"`
	Description string `toml:"description"`
}

// ToReleaseMetadata converts the parsed configuration into the metadata
// type the deb package's release writer consumes.
func (c Config) ToReleaseMetadata() deb.ReleaseMetadata {
	return deb.ReleaseMetadata{
		Origin:      c.Release.Origin,
		Label:       c.Release.Label,
		Suite:       c.Release.Suite,
		Codename:    c.Release.Codename,
		Version:     c.Release.Version,
		Description: c.Release.Description,
	}
}

// LoadConfig reads and parses a TOML configuration file at path. A file
// without a [release] table is an error.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("repogen: load config %s: %w", path, err)
	}
	if !md.IsDefined("release") {
		return Config{}, fmt.Errorf("repogen: load config %s: missing [release] table", path)
	}
	return cfg, nil
}
