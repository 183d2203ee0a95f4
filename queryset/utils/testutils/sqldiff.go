package testutils

import (
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// RequireSQLEqual fails the test with a character-level diff when two SQL
// strings differ. Plain equality output is unreadable for long statements.
func RequireSQLEqual(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, false)
	t.Fatalf("sql mismatch:\nwant: %s\ngot:  %s\ndiff: %s", want, got, dmp.DiffPrettyText(diffs))
}
