package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const lockRetryDelay = 5 * time.Millisecond

// lockWaitLimit is a var so tests can shorten the wait.
var lockWaitLimit = 2 * time.Second

// acquireLockFile creates path exclusively, retrying until lockWaitLimit.
func acquireLockFile(path string) (*os.File, error) {
	deadline := time.Now().Add(lockWaitLimit)
	for {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w %q (held by %s); remove it if no lit process is running",
				ErrLockTimeout, path, lockHolder(path))
		}
		time.Sleep(lockRetryDelay)
	}
}

// lockHolder returns the "pid op" line recorded in a lock file.
func lockHolder(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	holder := strings.TrimSpace(string(data))
	if holder == "" {
		return "unknown"
	}
	return "pid " + holder
}

// lock takes the repository-wide lock guarding HEAD, branch refs and the
// index. The returned func releases it and must be deferred.
func (r *Repo) lock(op string) (func(), error) {
	path := filepath.Join(r.LitDir, "lock")
	start := time.Now()
	f, err := acquireLockFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if waited := time.Since(start); waited > lockRetryDelay {
		r.logger.Debug("acquired repository lock", "op", op, "waited", waited)
	}
	fmt.Fprintf(f, "%d %s\n", os.Getpid(), op)
	_ = f.Close()
	return func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("release repository lock", "op", op, "err", err)
		}
	}, nil
}
