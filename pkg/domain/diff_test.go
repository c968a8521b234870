package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func el(id string) Element {
	return Element{ID: id, Position: Position{Type: PositionTypeElement}}
}

func TestDiff(t *testing.T) {
	base := &Workpad{
		ID: "wp-1",
		Pages: []Page{
			{ID: "page-1", Elements: []Element{el("a"), el("b"), el("c")}},
		},
	}

	changedB := el("b")
	changedB.Expression = "demodata | render"

	tests := []struct {
		name     string
		old      *Workpad
		new      *Workpad
		wantDiff *WorkpadDiff // nil means we expect no diff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  base,
			wantDiff: &WorkpadDiff{
				WorkpadID:  "wp-1",
				PagesAdded: []string{"page-1"},
			},
		},
		{
			name:     "Same Snapshot",
			old:      base,
			new:      base,
			wantDiff: nil,
		},
		{
			name:     "Equal Copy",
			old:      base,
			new:      base.Clone(),
			wantDiff: nil,
		},
		{
			name: "Node Changed",
			old:  base,
			new: &Workpad{ID: "wp-1", Pages: []Page{
				{ID: "page-1", Elements: []Element{el("a"), changedB, el("c")}},
			}},
			wantDiff: &WorkpadDiff{
				WorkpadID: "wp-1",
				Pages:     []PageDiff{{PageID: "page-1", Changed: []string{"b"}}},
			},
		},
		{
			name: "Reordered",
			old:  base,
			new: &Workpad{ID: "wp-1", Pages: []Page{
				{ID: "page-1", Elements: []Element{el("b"), el("a"), el("c")}},
			}},
			wantDiff: &WorkpadDiff{
				WorkpadID: "wp-1",
				Pages:     []PageDiff{{PageID: "page-1", Reordered: []Location{LocationElements}}},
			},
		},
		{
			name: "Added and Removed",
			old:  base,
			new: &Workpad{ID: "wp-1", Pages: []Page{
				{ID: "page-1", Elements: []Element{el("a"), el("c")}, Groups: []Element{{ID: "g", Position: Position{Type: PositionTypeGroup}}}},
			}},
			wantDiff: &WorkpadDiff{
				WorkpadID: "wp-1",
				Pages:     []PageDiff{{PageID: "page-1", Added: []string{"g"}, Removed: []string{"b"}}},
			},
		},
		{
			name: "Page Removed",
			old:  base,
			new:  &Workpad{ID: "wp-1", Pages: []Page{}},
			wantDiff: &WorkpadDiff{
				WorkpadID:    "wp-1",
				PagesRemoved: []string{"page-1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantDiff == nil {
				if got != nil {
					t.Errorf("Diff() = %+v, want nil", got)
				}
				return
			}

			if got == nil {
				t.Fatalf("Diff() = nil, want %+v", tt.wantDiff)
			}
			if !reflect.DeepEqual(got, tt.wantDiff) {
				t.Errorf("Diff() = %+v, want %+v", got, tt.wantDiff)
			}
		})
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Empty Fields Omitted", func(t *testing.T) {
		old := &Workpad{ID: "wp", Pages: []Page{{ID: "p", Elements: []Element{el("a"), el("b")}}}}
		next := &Workpad{ID: "wp", Pages: []Page{{ID: "p", Elements: []Element{el("b"), el("a")}}}}

		diff := Diff(old, next)
		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}

		bytes, _ := json.Marshal(diff)
		for _, key := range []string{`"added"`, `"removed"`, `"changed"`, `"pages_added"`} {
			if strings.Contains(string(bytes), key) {
				t.Errorf("JSON should not contain %s when empty, got: %s", key, string(bytes))
			}
		}
		if !strings.Contains(string(bytes), `"reordered":["elements"]`) {
			t.Errorf("JSON should report reordered elements, got: %s", string(bytes))
		}
	})
}
