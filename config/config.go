// Package config builds the process-wide settings of the roster
// functions once at startup. Handlers receive a Config value and never
// read the environment themselves.
package config

import (
	"fmt"
	"os"

	"github.com/opolis/roster/types"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBranch        = "main"
	DefaultPath          = "roster.txt"
	DefaultAPIBase       = "https://api.github.com"
	DefaultCommitMessage = "Web roster update"
	DefaultBackupPrefix  = "Backup/"
)

// Config identifies the roster file and the credentials used to reach it.
// Values are not validated locally; a wrong owner, repo or token surfaces
// as a 401 or 404 from GitHub.
type Config struct {
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
	Path   string `yaml:"path"`

	// Token is used as-is when set, otherwise TokenKey names an SSM
	// SecureString holding it.
	Token    string `yaml:"token"`
	TokenKey string `yaml:"token_key"`

	APIBase       string `yaml:"api_base"`
	CommitMessage string `yaml:"commit_message"`

	// Snapshot archive, disabled when BackupBucket is empty.
	BackupBucket string `yaml:"backup_bucket"`
	BackupPrefix string `yaml:"backup_prefix"`

	// Slack notifier, disabled when SlackChannel is empty.
	SlackChannel  string `yaml:"slack_channel"`
	SlackTokenKey string `yaml:"slack_token_key"`
}

// Defaults returns a Config with every optional field filled in.
func Defaults() Config {
	return Config{
		Branch:        DefaultBranch,
		Path:          DefaultPath,
		TokenKey:      types.KeyToken,
		APIBase:       DefaultAPIBase,
		CommitMessage: DefaultCommitMessage,
		BackupPrefix:  DefaultBackupPrefix,
		SlackTokenKey: types.KeySlackToken,
	}
}

// FromEnv reads the configuration from the process environment.
func FromEnv() Config {
	return FromLookup(os.Getenv)
}

// FromLookup overlays the values returned by getenv on Defaults.
// Empty values leave the default in place.
func FromLookup(getenv func(string) string) Config {
	c := Defaults()

	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.Owner, "OWNER")
	set(&c.Repo, "REPO")
	set(&c.Branch, "BRANCH")
	set(&c.Path, "ROSTER_PATH")
	set(&c.Token, "GITHUB_TOKEN")
	set(&c.TokenKey, "GITHUB_TOKEN_KEY")
	set(&c.APIBase, "GITHUB_API")
	set(&c.CommitMessage, "COMMIT_MESSAGE")
	set(&c.BackupBucket, "BACKUP_BUCKET")
	set(&c.BackupPrefix, "BACKUP_PREFIX")
	set(&c.SlackChannel, "SLACK_CHANNEL")
	set(&c.SlackTokenKey, "SLACK_TOKEN_KEY")

	return c
}

// Load reads a YAML config file on top of Defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config data on top of Defaults.
func Parse(data []byte) (Config, error) {
	c := Defaults()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	return c, nil
}

// ResolveToken returns the GitHub token, fetching it from store when it
// was not given directly.
func (c Config) ResolveToken(store types.SecureStore) (string, error) {
	if c.Token != "" {
		return c.Token, nil
	}

	if store == nil || c.TokenKey == "" {
		return "", nil
	}

	token, err := store.Get(c.TokenKey)
	if err != nil {
		return "", fmt.Errorf("fetching github token: %w", err)
	}

	return token, nil
}
