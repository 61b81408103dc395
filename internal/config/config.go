// Package config loads the run configuration: which consumer projects to
// stage, where to put them, and which crate dependency to redirect.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
	"github.com/56quarters/cadence-crater/internal/patch"
)

// DefaultCrate is the dependency redirected when the configuration names none.
const DefaultCrate = patch.DefaultCrate

// DefaultRoot is the project root used when a project does not set one.
const DefaultRoot = "."

// Config is the top-level run configuration.
type Config struct {
	Crate       string    `yaml:"crate,omitempty" toml:"crate,omitempty"`
	Destination string    `yaml:"destination,omitempty" toml:"destination,omitempty"`
	Projects    []Project `yaml:"projects" toml:"projects"`
}

// Project is one downstream consumer of the crate.
type Project struct {
	Repo string `yaml:"repo" toml:"repo"`
	// Root is the directory holding the root Cargo.toml, relative to the checkout.
	Root string `yaml:"root,omitempty" toml:"root,omitempty"`
	// Subprojects are directories relative to Root, each with its own Cargo.toml.
	Subprojects []string    `yaml:"subprojects,omitempty" toml:"subprojects,omitempty"`
	Branch      string      `yaml:"branch,omitempty" toml:"branch,omitempty"`
	Depth       int         `yaml:"depth,omitempty" toml:"depth,omitempty"`
	Auth        *AuthConfig `yaml:"auth,omitempty" toml:"auth,omitempty"`
}

// Load reads, expands, decodes, defaults and validates the configuration at
// configPath. Files ending in .toml are decoded as TOML, anything else as YAML.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cerrors.ConfigError("configuration file not found").WithPath(configPath).Build()
		}
		return nil, cerrors.WrapError(err, cerrors.CategoryConfig, "failed to read config file").
			WithPath(configPath).Fatal().Build()
	}

	return Parse(configPath, []byte(os.ExpandEnv(string(data))))
}

// Parse decodes data, choosing the format from the extension of name, then
// applies defaults and validates. Environment expansion is left to the caller.
func Parse(name string, data []byte) (*Config, error) {
	var cfg Config
	var err error
	if isTOML(name) {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	}
	if err != nil {
		return nil, cerrors.WrapError(err, cerrors.CategoryConfig, "failed to decode config").
			WithPath(name).Fatal().Build()
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isTOML(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".toml")
}

func (c *Config) applyDefaults() {
	if c.Crate == "" {
		c.Crate = DefaultCrate
	}
	for i := range c.Projects {
		if c.Projects[i].Root == "" {
			c.Projects[i].Root = DefaultRoot
		}
	}
}

// Validate checks the configuration for values that cannot produce a run.
func (c *Config) Validate() error {
	if len(c.Projects) == 0 {
		return cerrors.ValidationError("no projects configured").Build()
	}
	for i, p := range c.Projects {
		if strings.TrimSpace(p.Repo) == "" {
			return cerrors.ValidationError(fmt.Sprintf("project %d: repo is required", i)).Build()
		}
		if p.Depth < 0 {
			return cerrors.ValidationError(fmt.Sprintf("project %d: depth must not be negative", i)).
				WithURL(p.Repo).Build()
		}
		if filepath.IsAbs(p.Root) {
			return cerrors.ValidationError(fmt.Sprintf("project %d: root must be relative to the checkout", i)).
				WithURL(p.Repo).Build()
		}
		for _, sub := range p.Subprojects {
			if sub == "" || filepath.IsAbs(sub) {
				return cerrors.ValidationError(fmt.Sprintf("project %d: invalid subproject %q", i, sub)).
					WithURL(p.Repo).Build()
			}
		}
		if err := p.Auth.Validate(); err != nil {
			return cerrors.WrapError(err, cerrors.CategoryValidation, fmt.Sprintf("project %d", i)).
				WithURL(p.Repo).Fatal().Build()
		}
	}
	return nil
}

// Init writes an example configuration to configPath. An existing file is
// only replaced when force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return cerrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithPath(configPath).Build()
	}

	example := Config{
		Crate: DefaultCrate,
		Projects: []Project{
			{
				Repo: "https://github.com/example/service.git",
				Root: DefaultRoot,
			},
			{
				Repo:        "https://github.com/example/workspace.git",
				Root:        DefaultRoot,
				Subprojects: []string{"core", "cli"},
				Branch:      "main",
				Depth:       1,
				Auth: &AuthConfig{
					Type:  AuthTypeToken,
					Token: "${GITHUB_TOKEN}",
				},
			},
		},
	}

	var data []byte
	var err error
	if isTOML(configPath) {
		data, err = toml.Marshal(&example)
	} else {
		data, err = yaml.Marshal(&example)
	}
	if err != nil {
		return cerrors.WrapError(err, cerrors.CategoryInternal, "failed to marshal example config").Fatal().Build()
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return cerrors.WrapError(err, cerrors.CategoryConfig, "failed to write config file").
			WithPath(configPath).Fatal().Build()
	}
	return nil
}
