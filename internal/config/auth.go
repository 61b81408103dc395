package config

import "fmt"

// AuthType enumerates supported authentication methods (stringly for YAML compatibility)
type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeSSH   AuthType = "ssh"
	AuthTypeToken AuthType = "token"
	AuthTypeBasic AuthType = "basic"
)

// AuthConfig represents authentication configuration for cloning a project.
type AuthConfig struct {
	Type     AuthType `yaml:"type" toml:"type"` // ssh|token|basic|none
	Username string   `yaml:"username,omitempty" toml:"username,omitempty"`
	Password string   `yaml:"password,omitempty" toml:"password,omitempty"`
	Token    string   `yaml:"token,omitempty" toml:"token,omitempty"`
	KeyPath  string   `yaml:"key_path,omitempty" toml:"key_path,omitempty"`
}

// IsZero reports whether no auth method specified.
func (a *AuthConfig) IsZero() bool { return a == nil || a.Type == "" || a.Type == AuthTypeNone }

// Validate checks that the fields required by the auth type are present.
func (a *AuthConfig) Validate() error {
	if a.IsZero() {
		return nil
	}
	switch a.Type {
	case AuthTypeToken:
		if a.Token == "" {
			return fmt.Errorf("token auth requires a token")
		}
	case AuthTypeBasic:
		if a.Username == "" || a.Password == "" {
			return fmt.Errorf("basic auth requires username and password")
		}
	case AuthTypeSSH:
		// key_path falls back to ~/.ssh/id_rsa
	default:
		return fmt.Errorf("unsupported auth type %q", a.Type)
	}
	return nil
}
