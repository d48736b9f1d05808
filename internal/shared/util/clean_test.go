package util

import (
	"reflect"
	"testing"
)

func TestCleanMapStripsNilsAtEveryLevel(t *testing.T) {
	in := map[string]any{
		"a": 1,
		"b": nil,
		"c": map[string]any{"d": nil, "e": 2},
		"f": []any{nil, 3},
	}
	want := map[string]any{
		"a": 1,
		"c": map[string]any{"e": 2},
		"f": []any{3},
	}
	got := CleanMap(in)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CleanMap = %#v, want %#v", got, want)
	}
}

func TestCleanMapPreservesSliceOrder(t *testing.T) {
	in := map[string]any{"tags": []any{"x", nil, "y", nil, "z"}}
	got := CleanMap(in)
	want := []any{"x", "y", "z"}
	if !reflect.DeepEqual(got["tags"], want) {
		t.Fatalf("tags = %#v, want %#v", got["tags"], want)
	}
}

func TestCleanMapHandlesNestedSlicesOfMaps(t *testing.T) {
	in := map[string]any{
		"docs": []any{
			map[string]any{"title": "one", "note": nil},
			nil,
			map[string]any{"title": "two"},
		},
	}
	got := CleanMap(in)
	docs, ok := got["docs"].([]any)
	if !ok || len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %#v", got["docs"])
	}
	first, ok := docs[0].(map[string]any)
	if !ok {
		t.Fatalf("expected map element, got %#v", docs[0])
	}
	if _, present := first["note"]; present {
		t.Fatalf("expected nil note to be stripped, got %#v", first)
	}
}

func TestCleanMapNilInput(t *testing.T) {
	if got := CleanMap(nil); got != nil {
		t.Fatalf("expected nil for nil input, got %#v", got)
	}
}
