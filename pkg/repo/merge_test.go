package repo

import (
	"errors"
	"testing"

	"github.com/odvcencio/lit/pkg/merge"
	"github.com/odvcencio/lit/pkg/object"
)

func TestMerge_EndToEndFastForward(t *testing.T) {
	r := initRepo(t)
	commitFile(t, r, "a.txt", "hello", "first")
	if _, err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.SwitchBranch("feature"); err != nil {
		t.Fatalf("SwitchBranch(feature): %v", err)
	}
	second := commitFile(t, r, "a.txt", "world", "second")
	if err := r.SwitchBranch("main"); err != nil {
		t.Fatalf("SwitchBranch(main): %v", err)
	}
	before := countObjects(t, r)

	report, err := r.Merge("feature", "tester")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if report.Err() != nil || report.HasConflicts() {
		t.Fatalf("unexpected conflicts: %v", report.Conflicts)
	}
	if !report.FastForward || report.MergeCommit != "" {
		t.Fatalf("report = %+v, want fast-forward", report)
	}
	if after := countObjects(t, r); after != before {
		t.Fatalf("fast-forward wrote objects: %d -> %d", before, after)
	}

	tip, _, err := r.ReadBranch("main")
	if err != nil {
		t.Fatalf("ReadBranch: %v", err)
	}
	if tip != second {
		t.Fatalf("main = %s, want %s", tip, second)
	}
	tree, err := r.CommitTree(tip)
	if err != nil {
		t.Fatalf("CommitTree: %v", err)
	}
	if tree["a.txt"] != mustBlobDigest(t, r, "world") {
		t.Fatalf("a.txt = %s, want digest of world", tree["a.txt"])
	}
	entries, err := r.Log(tip, 0)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("history has %d commits, want 2", len(entries))
	}
}

// divergedRepo returns a repo where main and feature each committed once on
// top of a shared base commit holding base.txt.
func divergedRepo(t *testing.T, mainFile, mainContent, featureFile, featureContent string) (*Repo, object.Hash, object.Hash) {
	t.Helper()
	r := initRepo(t)
	commitFile(t, r, "base.txt", "base", "base")
	if _, err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	mainTip := commitFile(t, r, mainFile, mainContent, "main work")
	if err := r.SwitchBranch("feature"); err != nil {
		t.Fatalf("SwitchBranch: %v", err)
	}
	featureTip := commitFile(t, r, featureFile, featureContent, "feature work")
	if err := r.SwitchBranch("main"); err != nil {
		t.Fatalf("SwitchBranch: %v", err)
	}
	return r, mainTip, featureTip
}

func TestMerge_ThreeWayNonOverlapping(t *testing.T) {
	r, mainTip, featureTip := divergedRepo(t, "x.txt", "main-x", "y.txt", "feature-y")

	report, err := r.Merge("feature", "merger")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if report.FastForward || report.MergeCommit == "" {
		t.Fatalf("report = %+v, want a merge commit", report)
	}
	if len(report.Conflicts) != 0 {
		t.Fatalf("conflicts = %v", report.Conflicts)
	}

	c, err := r.Store.ReadCommit(report.MergeCommit)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Parents) != 2 || c.Parents[0] != mainTip || c.Parents[1] != featureTip {
		t.Fatalf("parents = %v, want [main feature]", c.Parents)
	}
	if c.Message != "Merge branch 'feature' into main" || c.Author != "merger" {
		t.Fatalf("commit = %+v", c)
	}

	tree, err := r.TreeMap(c.TreeHash)
	if err != nil {
		t.Fatalf("TreeMap: %v", err)
	}
	if tree["x.txt"] != mustBlobDigest(t, r, "main-x") || tree["y.txt"] != mustBlobDigest(t, r, "feature-y") {
		t.Fatalf("merged tree = %v", tree)
	}

	tip, _, _ := r.ReadBranch("main")
	if tip != report.MergeCommit {
		t.Fatalf("main = %s, want merge commit", tip)
	}
	ftip, _, _ := r.ReadBranch("feature")
	if ftip != featureTip {
		t.Fatalf("source branch moved to %s", ftip)
	}
}

func TestMerge_ConflictStillCommits(t *testing.T) {
	r, mainTip, _ := divergedRepo(t, "same.txt", "ours", "same.txt", "theirs")

	report, err := r.Merge("feature", "merger")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if report.CurrentTip != mainTip {
		t.Fatalf("CurrentTip = %s, want %s", report.CurrentTip, mainTip)
	}
	// base.txt was only in the base tree; same.txt is absent from the base,
	// so the source side wins without a conflict.
	if report.HasConflicts() {
		t.Fatalf("conflicts = %v", report.Conflicts)
	}
	tree, err := r.CommitTree(report.MergeCommit)
	if err != nil {
		t.Fatalf("CommitTree: %v", err)
	}
	if tree["same.txt"] != mustBlobDigest(t, r, "theirs") {
		t.Fatalf("same.txt = %s, want theirs", tree["same.txt"])
	}

	// Diverge again from the merge commit: both sides now edit a path that
	// exists in the base.
	if _, err := r.CreateBranch("second"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	oursTip := commitFile(t, r, "same.txt", "ours again", "main edit")
	if err := r.SwitchBranch("second"); err != nil {
		t.Fatalf("SwitchBranch: %v", err)
	}
	commitFile(t, r, "same.txt", "theirs again", "second edit")
	if err := r.SwitchBranch("main"); err != nil {
		t.Fatalf("SwitchBranch: %v", err)
	}

	report, err = r.Merge("second", "merger")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(report.Conflicts) != 1 || report.Conflicts[0] != "same.txt" {
		t.Fatalf("conflicts = %v, want [same.txt]", report.Conflicts)
	}
	var cerr *ConflictError
	if err := report.Err(); !errors.Is(err, ErrConflictDetected) || !errors.As(err, &cerr) {
		t.Fatalf("report.Err() = %v, want *ConflictError", err)
	}
	if cerr.Commit != report.MergeCommit {
		t.Fatalf("ConflictError.Commit = %s, want %s", cerr.Commit, report.MergeCommit)
	}

	c, err := r.Store.ReadCommit(report.MergeCommit)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Parents) != 2 || c.Parents[0] != oursTip {
		t.Fatalf("parents = %v", c.Parents)
	}
	tree, err = r.TreeMap(c.TreeHash)
	if err != nil {
		t.Fatalf("TreeMap: %v", err)
	}
	if tree["same.txt"] != mustBlobDigest(t, r, "ours again") {
		t.Fatalf("conflicting path should keep the current side")
	}

	var conflictChange *merge.Change
	for i := range report.Changes {
		if report.Changes[i].Path == "same.txt" {
			conflictChange = &report.Changes[i]
		}
	}
	if conflictChange == nil || conflictChange.Disposition != merge.Conflict {
		t.Fatalf("changes = %+v", report.Changes)
	}
	if _, err := r.Store.Verify(); err != nil {
		t.Fatalf("Verify after merge: %v", err)
	}
}

func TestMerge_SelfMerge(t *testing.T) {
	r := initRepo(t)
	commitFile(t, r, "a.txt", "hello", "first")
	if _, err := r.Merge("main", "tester"); !errors.Is(err, ErrSelfMerge) {
		t.Fatalf("Merge(main) = %v, want ErrSelfMerge", err)
	}
}

func TestMerge_MissingAndEmptyBranches(t *testing.T) {
	r := initRepo(t)
	if _, err := r.CreateBranch("empty"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if _, err := r.Merge("nope", "tester"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Merge(nope) = %v, want ErrNotFound", err)
	}
	if _, err := r.Merge("empty", "tester"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Merge(empty) = %v, want ErrNotFound", err)
	}

	commitFile(t, r, "a.txt", "hello", "first")
	if _, err := r.Merge("empty", "tester"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Merge(empty) with commits on main = %v, want ErrNotFound", err)
	}
}

func TestMerge_UnrelatedHistories(t *testing.T) {
	r := initRepo(t)
	commitFile(t, r, "a.txt", "hello", "first")
	orphan := writeCommit(t, r, "other", "orphan root")
	if err := r.CreateBranchAt("orphan", orphan); err != nil {
		t.Fatalf("CreateBranchAt: %v", err)
	}
	if _, err := r.Merge("orphan", "tester"); !errors.Is(err, ErrUnrelatedHistories) {
		t.Fatalf("Merge(orphan) = %v, want ErrUnrelatedHistories", err)
	}
}

func TestMerge_DetachedHead(t *testing.T) {
	r := initRepo(t)
	c := commitFile(t, r, "a.txt", "hello", "first")
	if _, err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.SetHead(HeadValue{Kind: HeadDirect, Hash: c}); err != nil {
		t.Fatalf("SetHead: %v", err)
	}
	if _, err := r.Merge("feature", "tester"); !errors.Is(err, ErrDetachedHead) {
		t.Fatalf("Merge while detached = %v, want ErrDetachedHead", err)
	}
}

func TestMerge_SourceBehindStillCommits(t *testing.T) {
	r := initRepo(t)
	commitFile(t, r, "a.txt", "one", "first")
	if _, err := r.CreateBranch("old"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	mainTip := commitFile(t, r, "a.txt", "two", "second")

	report, err := r.Merge("old", "tester")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if report.FastForward || report.MergeCommit == "" {
		t.Fatalf("report = %+v, want a merge commit", report)
	}
	tree, err := r.CommitTree(report.MergeCommit)
	if err != nil {
		t.Fatalf("CommitTree: %v", err)
	}
	cur, err := r.CommitTree(mainTip)
	if err != nil {
		t.Fatalf("CommitTree: %v", err)
	}
	if len(tree) != len(cur) || tree["a.txt"] != cur["a.txt"] {
		t.Fatalf("merge of an ancestor changed the tree: %v vs %v", tree, cur)
	}
}

func TestMerge_IdenticalChangeOnBothSidesConflicts(t *testing.T) {
	r := initRepo(t)
	base := writeCommit(t, r, "base", "base")
	ours := writeCommit(t, r, "same", "main edit", base)
	theirs := writeCommit(t, r, "same", "feature edit", base)
	if err := r.WriteBranch("main", ours, "test setup"); err != nil {
		t.Fatalf("WriteBranch: %v", err)
	}
	if err := r.CreateBranchAt("feature", theirs); err != nil {
		t.Fatalf("CreateBranchAt: %v", err)
	}

	report, err := r.Merge("feature", "merger")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(report.Conflicts) != 1 || report.Conflicts[0] != "f.txt" {
		t.Fatalf("conflicts = %v, want [f.txt]", report.Conflicts)
	}
	tree, err := r.CommitTree(report.MergeCommit)
	if err != nil {
		t.Fatalf("CommitTree: %v", err)
	}
	if tree["f.txt"] != mustBlobDigest(t, r, "same") {
		t.Fatalf("f.txt = %s, want the shared object", tree["f.txt"])
	}
}
