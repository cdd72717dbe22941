package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdesigner/pkg/render"
)

func TestSortedHiddenFields(t *testing.T) {
	got := render.SortedHiddenFields(map[string]string{
		"selected": "name",
		" _mode ":  "designer",
		"":         "ignored",
		"  ":       "ignored",
	})
	want := []render.HiddenField{
		{Name: "_mode", Value: "designer"},
		{Name: "selected", Value: "name"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}

	if render.SortedHiddenFields(map[string]string{" ": "x"}) != nil {
		t.Fatalf("blank names only should yield nil")
	}
	if render.SortedHiddenFields(nil) != nil {
		t.Fatalf("nil input should yield nil")
	}
}
