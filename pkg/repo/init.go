package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/lit/pkg/object"
)

// litDirName is the repository metadata directory under the working root.
const litDirName = ".lit"

// InitOptions configures a new repository.
type InitOptions struct {
	Hash          object.Algorithm // digest algorithm; DefaultAlgorithm when empty
	DefaultBranch string           // DefaultBranchName when empty
}

// Init creates a new lit repository at path. It creates the .lit/ directory
// structure: HEAD, config.toml, objects/, refs/heads/ and an empty ref file
// for the default branch. Returns ErrAlreadyExists if .lit/ already exists.
func Init(path string, opts InitOptions) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	litDir := filepath.Join(abs, litDirName)

	if _, err := os.Stat(litDir); err == nil {
		return nil, fmt.Errorf("init: repository at %s: %w", litDir, ErrAlreadyExists)
	}

	algo, err := object.ParseAlgorithm(string(opts.Hash))
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	branch := strings.TrimSpace(opts.DefaultBranch)
	if branch == "" {
		branch = DefaultBranchName
	}
	if err := ValidateBranchName(branch); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	dirs := []string{
		filepath.Join(litDir, "objects"),
		filepath.Join(litDir, "refs", "heads"),
		filepath.Join(litDir, "logs", "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	cfg := DefaultConfig()
	cfg.Core.Hash = string(algo)
	cfg.Core.DefaultBranch = branch
	if err := SaveConfig(litDir, cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	if err := os.WriteFile(filepath.Join(litDir, "refs", "heads", branch), nil, 0o644); err != nil {
		return nil, fmt.Errorf("init: write default branch: %w", err)
	}
	if err := os.WriteFile(filepath.Join(litDir, "HEAD"), []byte(symbolicPrefix+branchRef(branch)+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	return newRepo(abs, litDir, cfg)
}

// Open searches upward from path for a .lit/ directory and opens the
// repository. Returns ErrNotInitialized if no .lit/ directory is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		litDir := filepath.Join(cur, litDirName)
		info, err := os.Stat(litDir)
		if err == nil && info.IsDir() {
			cfg, err := LoadConfig(litDir)
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			r, err := newRepo(cur, litDir, cfg)
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			return r, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s: %w", abs, ErrNotInitialized)
		}
		cur = parent
	}
}
