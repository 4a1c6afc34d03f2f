package load

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestDropBlank tests removal of unused spreadsheet rows.
func TestDropBlank(t *testing.T) {
	t.Parallel()

	records := [][]string{
		{},
		{"", ""},
		{"user", "count"},
		{"", ""},
		{"alice", "3"},
		{"", "0"},
	}
	want := [][]string{
		{"user", "count"},
		{"alice", "3"},
		{"", "0"},
	}
	if diff := cmp.Diff(want, dropBlank(records)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}
