package repo

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/odvcencio/lit/pkg/object"
)

func TestConfig_RoundTrip(t *testing.T) {
	r := initRepo(t)

	cfg := DefaultConfig()
	cfg.Core.Author = "Ada"
	cfg.Log.BranchPriority = []string{"release", "main"}
	cfg.Log.Level = "debug"
	cfg.Log.MaxBackups = 5
	cfg.Signing.Key = "~/.ssh/id_ed25519"
	if err := r.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	loaded, err := LoadConfig(r.LitDir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestConfig_MissingFileDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestConfig_PartialFileFilled(t *testing.T) {
	dir := t.TempDir()
	data := "[core]\nauthor = \"Grace\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Core.Author != "Grace" || cfg.Core.DefaultBranch != "main" || cfg.Core.Hash != string(object.SHA256) {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[core\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfig_HashIsFixed(t *testing.T) {
	r := initRepo(t)
	cfg := DefaultConfig()
	cfg.Core.Hash = string(object.SHA1)
	if err := r.WriteConfig(cfg); err == nil {
		t.Fatal("changing the hash algorithm should fail")
	}
}

func TestConfig_LogFilePath(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.LogFilePath("/repo/.lit"); got != filepath.Join("/repo/.lit", "logs", "lit.log") {
		t.Fatalf("LogFilePath = %q", got)
	}
	cfg.Log.File = "-"
	if got := cfg.LogFilePath("/repo/.lit"); got != "" {
		t.Fatalf("LogFilePath(-) = %q, want empty", got)
	}
}

func TestResolveAuthor(t *testing.T) {
	r := initRepo(t)
	t.Setenv("LIT_AUTHOR", "")
	t.Setenv("USER", "")

	if got := r.ResolveAuthor(""); got != "unknown" {
		t.Fatalf("ResolveAuthor = %q, want unknown", got)
	}
	t.Setenv("USER", "shell-user")
	if got := r.ResolveAuthor(""); got != "shell-user" {
		t.Fatalf("ResolveAuthor = %q, want shell-user", got)
	}
	t.Setenv("LIT_AUTHOR", "env-author")
	if got := r.ResolveAuthor(""); got != "env-author" {
		t.Fatalf("ResolveAuthor = %q, want env-author", got)
	}
	r.Config.Core.Author = "config-author"
	if got := r.ResolveAuthor(""); got != "config-author" {
		t.Fatalf("ResolveAuthor = %q, want config-author", got)
	}
	if got := r.ResolveAuthor(" flag-author "); got != "flag-author" {
		t.Fatalf("ResolveAuthor = %q, want flag-author", got)
	}
}
