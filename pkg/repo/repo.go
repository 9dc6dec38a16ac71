package repo

import (
	"log/slog"
	"sync"

	"github.com/odvcencio/lit/pkg/logging"
	"github.com/odvcencio/lit/pkg/object"
)

// Repo represents an opened lit repository. A Repo is not safe for
// concurrent use; cross-process safety comes from the repository lock.
type Repo struct {
	RootDir string        // working directory root
	LitDir  string        // .lit/ directory
	Store   *object.Store // content-addressed object store
	Config  *Config

	logger *slog.Logger

	graphOnce sync.Once
	graph     *commitCache
}

func newRepo(root, litDir string, cfg *Config) (*Repo, error) {
	algo, err := object.ParseAlgorithm(cfg.Core.Hash)
	if err != nil {
		return nil, err
	}
	return &Repo{
		RootDir: root,
		LitDir:  litDir,
		Store:   object.NewStoreWithAlgorithm(litDir, algo),
		Config:  cfg,
		logger:  logging.Discard(),
	}, nil
}

// SetLogger routes repository diagnostics to l. A nil logger discards them.
func (r *Repo) SetLogger(l *slog.Logger) {
	if l == nil {
		l = logging.Discard()
	}
	r.logger = l
}

// Logger returns the repository's logger.
func (r *Repo) Logger() *slog.Logger {
	return r.logger
}

func (r *Repo) commits() *commitCache {
	r.graphOnce.Do(func() {
		r.graph = newCommitCache()
	})
	return r.graph
}
