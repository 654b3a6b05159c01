// Package config loads the layered project configuration: embedded
// defaults first, then a .vigil.toml or vigil.toml at the project root.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/rules"
	"github.com/vigil-dev/vigil/pkg/types"
)

// Filenames tried at the project root, in order; the first hit wins
var configFilenames = []string{".vigil.toml", "vigil.toml"}

// Config is the decoded project configuration
type Config struct {
	Cache        CacheConfig        `koanf:"cache"`
	Execution    ExecutionConfig    `koanf:"execution"`
	Conversation ConversationConfig `koanf:"conversation"`
	Project      ProjectConfig      `koanf:"project"`

	// RuleDefinitions are inline rules, the lowest-priority rule source
	RuleDefinitions []rules.Definition `koanf:"rule_definitions"`

	// RuleRefs are explicit external rule references. Non-empty flips
	// rule loading into isolation mode.
	RuleRefs []string `koanf:"rule_refs"`

	// Overrides adjust validator parameters per validator type or rule
	Overrides []OverrideConfig `koanf:"overrides"`
}

// CacheConfig configures the response cache. The toml tags keep the
// generated starter config aligned with the koanf keys Load decodes.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir,omitempty"`
	TTL     string `koanf:"ttl" toml:"ttl"`
}

// ParsedTTL returns the configured TTL, or the fallback when unset or
// malformed
func (c CacheConfig) ParsedTTL(fallback time.Duration) time.Duration {
	if c.TTL == "" {
		return fallback
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return fallback
	}
	return d
}

// ExecutionConfig configures the orchestrator
type ExecutionConfig struct {
	Parallel    bool   `koanf:"parallel" toml:"parallel"`
	MaxWorkers  int    `koanf:"max_workers" toml:"max_workers"`
	UnitTimeout string `koanf:"unit_timeout" toml:"unit_timeout"`
}

// ParsedUnitTimeout returns the per-unit timeout; zero means disabled
func (c ExecutionConfig) ParsedUnitTimeout() time.Duration {
	if c.UnitTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.UnitTimeout)
	if err != nil {
		return 0
	}
	return d
}

// ConversationConfig locates conversation logs
type ConversationConfig struct {
	Dir    string `koanf:"dir" toml:"dir"`
	Client string `koanf:"client" toml:"client,omitempty"`
}

// ProjectConfig configures project resource discovery
type ProjectConfig struct {
	ResourceDirs []string `koanf:"resource_dirs" toml:"resource_dirs"`
}

// OverrideConfig is the decodable form of a parameter override
type OverrideConfig struct {
	Target   string                 `koanf:"target"`
	Strategy string                 `koanf:"strategy"`
	Params   map[string]interface{} `koanf:"params"`
}

// TypedOverrides converts the decoded overrides into the engine's
// override type
func (c *Config) TypedOverrides() []types.Override {
	if len(c.Overrides) == 0 {
		return nil
	}
	out := make([]types.Override, len(c.Overrides))
	for i, o := range c.Overrides {
		out[i] = types.Override{
			Target:   o.Target,
			Strategy: types.OverrideStrategy(o.Strategy),
			Params:   o.Params,
		}
	}
	return out
}

// Load reads the layered configuration for a project root: embedded
// defaults, then the first project config file found.
func Load(root string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "loading embedded defaults")
	}

	for _, filename := range configFilenames {
		path := filepath.Join(root, filename)
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse,
					"loading project config %s", path)
			}
			break
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "decoding configuration")
	}
	return &cfg, nil
}
