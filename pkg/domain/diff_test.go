package domain

import (
	"encoding/json"
	"testing"
)

func TestDiff(t *testing.T) {
	base := []Node{
		{ID: "a", Type: "div"},
		{ID: "b", Type: "p", ParentID: "a", Props: Props{"children": String("hi")}},
	}

	tests := []struct {
		name        string
		old         []Node
		new         []Node
		wantNil     bool
		wantAdded   int
		wantUpdated int
		wantRemoved []string
		wantOrder   bool
	}{
		{
			name:    "No Changes",
			old:     base,
			new:     []Node{base[0].Clone(), base[1].Clone()},
			wantNil: true,
		},
		{
			name:      "Initial Load",
			old:       nil,
			new:       base,
			wantAdded: 2,
		},
		{
			name: "Prop Change",
			old:  base,
			new: []Node{
				base[0],
				{ID: "b", Type: "p", ParentID: "a", Props: Props{"children": String("bye")}},
			},
			wantUpdated: 1,
		},
		{
			name:        "Removal Keeps Order",
			old:         base,
			new:         base[:1],
			wantRemoved: []string{"b"},
		},
		{
			name:      "Reordered Roots",
			old:       []Node{{ID: "x", Type: "div"}, {ID: "y", Type: "div"}},
			new:       []Node{{ID: "y", Type: "div"}, {ID: "x", Type: "div"}},
			wantOrder: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff("doc-1", tt.old, tt.new)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("Diff() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Diff() = nil, want a diff")
			}
			if got.DocumentID != "doc-1" {
				t.Errorf("DocumentID = %q", got.DocumentID)
			}
			if len(got.Added) != tt.wantAdded {
				t.Errorf("Added = %d, want %d", len(got.Added), tt.wantAdded)
			}
			if len(got.Updated) != tt.wantUpdated {
				t.Errorf("Updated = %d, want %d", len(got.Updated), tt.wantUpdated)
			}
			if len(got.Removed) != len(tt.wantRemoved) {
				t.Errorf("Removed = %v, want %v", got.Removed, tt.wantRemoved)
			}
			if (got.Order != nil) != tt.wantOrder {
				t.Errorf("Order = %v, wantOrder %v", got.Order, tt.wantOrder)
			}
		})
	}
}

func TestDiff_JSONOmitsEmpty(t *testing.T) {
	diff := Diff("doc-1", nil, []Node{{ID: "a", Type: "div"}})
	data, err := json.Marshal(diff)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"document_id":"doc-1","added":[{"id":"a","type":"div","props":{}}]}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}
