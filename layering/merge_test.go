package layering

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func isDeleteString(value any) bool {
	s, ok := value.(string)
	return ok && s == "<delete>"
}

func TestMergeLayersFromFixture(t *testing.T) {
	fx := loadLayeringFixture(t, "layering_merge.json")

	for _, tc := range fx.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			got := MergeLayers(isDeleteString, tc.Layers...)
			if !reflect.DeepEqual(tc.Expect, got) {
				t.Errorf("merged snapshot mismatch:\nwant: %#v\n got: %#v", tc.Expect, got)
			}
		})
	}
}

func TestMergeLayersZeroInput(t *testing.T) {
	got := MergeLayers(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil map, got %#v", got)
	}
}

func TestMergeLayersDoesNotAliasInputs(t *testing.T) {
	list := []any{"a", "b"}
	weak := map[string]any{"list": list}
	strong := map[string]any{"nested": map[string]any{"k": "v"}}

	merged := MergeLayers(nil, strong, weak)
	merged["list"].([]any)[0] = "changed"
	merged["nested"].(map[string]any)["k"] = "changed"

	if list[0] != "a" {
		t.Fatalf("expected weak layer slice untouched, got %v", list)
	}
	if strong["nested"].(map[string]any)["k"] != "v" {
		t.Fatalf("expected strong layer map untouched, got %v", strong["nested"])
	}
}

func TestOrigin(t *testing.T) {
	layers := []map[string]any{
		{"a": 1},
		{"a": 2, "b": 2},
		{"c": 3},
	}
	cases := map[string]int{"a": 0, "b": 1, "c": 2, "missing": -1}
	for key, want := range cases {
		if got := Origin(key, layers...); got != want {
			t.Fatalf("Origin(%q) = %d, want %d", key, got, want)
		}
	}
}

func TestCloneDetachesNestedContainers(t *testing.T) {
	original := map[string]any{
		"list": []any{"x", map[string]any{"deep": true}},
		"num":  1,
	}
	clone := Clone(original)
	clone["list"].([]any)[1].(map[string]any)["deep"] = false
	clone["num"] = 2

	if original["list"].([]any)[1].(map[string]any)["deep"] != true {
		t.Fatalf("expected nested map untouched, got %#v", original["list"])
	}
	if original["num"] != 1 {
		t.Fatalf("expected scalar untouched, got %v", original["num"])
	}
}

func TestCloneNil(t *testing.T) {
	var m map[string]any
	if got := Clone(m); got != nil {
		t.Fatalf("expected nil map clone, got %#v", got)
	}
	if got := Clone[any](nil); got != nil {
		t.Fatalf("expected nil interface clone, got %#v", got)
	}
}

type layeringFixture struct {
	Description string                `json:"description"`
	Cases       []layeringFixtureCase `json:"cases"`
}

type layeringFixtureCase struct {
	Name   string           `json:"name"`
	Layers []map[string]any `json:"layers"`
	Expect map[string]any   `json:"expect"`
}

func loadLayeringFixture(t *testing.T, name string) layeringFixture {
	t.Helper()
	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read layering fixture %q: %v", name, err)
	}
	var fx layeringFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal layering fixture %q: %v", name, err)
	}
	return fx
}
