package repo

import (
	"errors"
	"testing"
)

func TestBranch_CreateListDelete(t *testing.T) {
	r := initRepo(t)
	head := commitFile(t, r, "a.txt", "hello", "initial commit")

	at, err := r.CreateBranch("feature")
	if err != nil {
		t.Fatalf("CreateBranch(feature): %v", err)
	}
	if at != head {
		t.Fatalf("CreateBranch at = %s, want %s", at, head)
	}

	branches, err := r.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if len(branches) != 2 || branches[0] != "feature" || branches[1] != "main" {
		t.Fatalf("ListBranches = %v, want [feature main]", branches)
	}

	if err := r.DeleteBranch("feature"); err != nil {
		t.Fatalf("DeleteBranch(feature): %v", err)
	}
	branches, err = r.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches after delete: %v", err)
	}
	if len(branches) != 1 || branches[0] != "main" {
		t.Fatalf("ListBranches after delete = %v, want [main]", branches)
	}
	if err := r.DeleteBranch("feature"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteBranch = %v, want ErrNotFound", err)
	}
}

func TestBranch_CreateExisting(t *testing.T) {
	r := initRepo(t)
	commitFile(t, r, "a.txt", "hello", "initial commit")

	if _, err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if _, err := r.CreateBranch("feature"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate CreateBranch = %v, want ErrAlreadyExists", err)
	}
	// The default branch exists as an empty ref file before any commit, and
	// still counts as taken.
	fresh := initRepo(t)
	if _, err := fresh.CreateBranch("main"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("CreateBranch(main) on fresh repo = %v, want ErrAlreadyExists", err)
	}
}

func TestBranch_CreateBeforeFirstCommit(t *testing.T) {
	r := initRepo(t)
	at, err := r.CreateBranch("feature")
	if err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if at != "" {
		t.Fatalf("CreateBranch at = %q, want empty", at)
	}
	tip, exists, err := r.ReadBranch("feature")
	if err != nil {
		t.Fatalf("ReadBranch: %v", err)
	}
	if !exists || tip != "" {
		t.Fatalf("ReadBranch = %q, %v; want empty existing", tip, exists)
	}
}

func TestBranch_CreateAt(t *testing.T) {
	r := initRepo(t)
	first := commitFile(t, r, "a.txt", "one", "first")
	commitFile(t, r, "a.txt", "two", "second")

	if err := r.CreateBranchAt("old", first); err != nil {
		t.Fatalf("CreateBranchAt: %v", err)
	}
	tip, _, err := r.ReadBranch("old")
	if err != nil {
		t.Fatalf("ReadBranch: %v", err)
	}
	if tip != first {
		t.Fatalf("tip = %s, want %s", tip, first)
	}
	blob := mustBlobDigest(t, r, "one")
	if err := r.CreateBranchAt("blob", blob); !errors.Is(err, ErrMalformedObject) {
		t.Fatalf("CreateBranchAt(blob) = %v, want ErrMalformedObject", err)
	}
}

func TestBranch_DeleteCurrentRefused(t *testing.T) {
	r := initRepo(t)
	if err := r.DeleteBranch("main"); err == nil {
		t.Fatal("expected error deleting the current branch")
	}
}

func TestBranch_Switch(t *testing.T) {
	r := initRepo(t)
	commitFile(t, r, "a.txt", "hello", "first")

	if err := r.SwitchBranch("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SwitchBranch(missing) = %v, want ErrNotFound", err)
	}
	if err := r.CreateAndSwitchBranch("feature"); err != nil {
		t.Fatalf("CreateAndSwitchBranch: %v", err)
	}
	cur, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if cur != "feature" {
		t.Fatalf("CurrentBranch = %q, want feature", cur)
	}
	if err := r.SwitchBranch("main"); err != nil {
		t.Fatalf("SwitchBranch(main): %v", err)
	}
	if cur, _ = r.CurrentBranch(); cur != "main" {
		t.Fatalf("CurrentBranch = %q, want main", cur)
	}
}

func TestValidateBranchName(t *testing.T) {
	valid := []string{"main", "feature-1", "release_2.0", "v1"}
	for _, name := range valid {
		if err := ValidateBranchName(name); err != nil {
			t.Errorf("ValidateBranchName(%q) = %v", name, err)
		}
	}
	invalid := []string{"", "-x", ".hidden", "a..b", "x.lock", "has space", "a/b", "HEAD", "tab\tname"}
	for _, name := range invalid {
		if err := ValidateBranchName(name); !errors.Is(err, ErrInvalidBranchName) {
			t.Errorf("ValidateBranchName(%q) = %v, want ErrInvalidBranchName", name, err)
		}
	}
}
