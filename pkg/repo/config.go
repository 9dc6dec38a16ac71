package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/odvcencio/lit/pkg/object"
)

const (
	configFileName       = "config.toml"
	DefaultBranchName    = "main"
	unknownAuthor        = "unknown"
	authorEnv            = "LIT_AUTHOR"
	defaultLogFile       = "logs/lit.log"
	defaultLogMaxSizeMB  = 1
	defaultLogMaxBackups = 2
	defaultLogMaxAgeDays = 30
)

// Config is the repository-local configuration stored in .lit/config.toml.
type Config struct {
	Core    CoreConfig    `toml:"core"`
	Log     LogConfig     `toml:"log"`
	Signing SigningConfig `toml:"signing"`
}

type CoreConfig struct {
	DefaultBranch string `toml:"default_branch"`
	Hash          string `toml:"hash"`
	Author        string `toml:"author,omitempty"`
}

type LogConfig struct {
	// BranchPriority orders branches for history attribution. Branches not
	// listed follow the default branch, alphabetically.
	BranchPriority []string `toml:"branch_priority,omitempty"`
	File           string   `toml:"file,omitempty"`
	Level          string   `toml:"level,omitempty"`
	MaxSizeMB      int      `toml:"max_size_mb,omitempty"`
	MaxBackups     int      `toml:"max_backups,omitempty"`
	MaxAgeDays     int      `toml:"max_age_days,omitempty"`
}

type SigningConfig struct {
	Key string `toml:"key,omitempty"`
}

// DefaultConfig returns the configuration a fresh repository starts with.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			DefaultBranch: DefaultBranchName,
			Hash:          string(object.DefaultAlgorithm),
		},
		Log: LogConfig{
			File:       defaultLogFile,
			Level:      "info",
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if strings.TrimSpace(c.Core.DefaultBranch) == "" {
		c.Core.DefaultBranch = d.Core.DefaultBranch
	}
	if strings.TrimSpace(c.Core.Hash) == "" {
		c.Core.Hash = d.Core.Hash
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = d.Log.MaxSizeMB
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = d.Log.MaxBackups
	}
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = d.Log.MaxAgeDays
	}
}

// LogFilePath returns the absolute path of the rotating log file, or "" when
// file logging is disabled. Relative paths are resolved against litDir.
func (c *Config) LogFilePath(litDir string) string {
	f := strings.TrimSpace(c.Log.File)
	if f == "" || f == "-" {
		return ""
	}
	if filepath.IsAbs(f) {
		return f
	}
	return filepath.Join(litDir, filepath.FromSlash(f))
}

// LoadConfig reads config.toml from litDir. A missing file yields defaults.
func LoadConfig(litDir string) (*Config, error) {
	cfg := &Config{}
	_, err := toml.DecodeFile(filepath.Join(litDir, configFileName), cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// SaveConfig atomically writes cfg to litDir/config.toml.
func SaveConfig(litDir string, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(litDir, configFileName), buf.Bytes()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// WriteConfig persists cfg and makes it the repository's active config.
// The digest algorithm of an existing repository cannot be changed.
func (r *Repo) WriteConfig(cfg *Config) error {
	cfg.applyDefaults()
	if algo, err := object.ParseAlgorithm(cfg.Core.Hash); err != nil {
		return fmt.Errorf("write config: %w", err)
	} else if algo != r.Store.Algorithm() {
		return fmt.Errorf("write config: hash algorithm is fixed at %s", r.Store.Algorithm())
	}
	if err := SaveConfig(r.LitDir, cfg); err != nil {
		return err
	}
	r.Config = cfg
	return nil
}

// DefaultBranch returns the configured default branch name.
func (r *Repo) DefaultBranch() string {
	if r.Config == nil || r.Config.Core.DefaultBranch == "" {
		return DefaultBranchName
	}
	return r.Config.Core.DefaultBranch
}

// ResolveAuthor picks the commit author: the explicit value, then
// core.author, then $LIT_AUTHOR, then $USER, then "unknown".
func (r *Repo) ResolveAuthor(explicit string) string {
	candidates := []string{explicit}
	if r.Config != nil {
		candidates = append(candidates, r.Config.Core.Author)
	}
	candidates = append(candidates, os.Getenv(authorEnv), os.Getenv("USER"))
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return unknownAuthor
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-tmp-*")
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
