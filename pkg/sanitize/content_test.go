package sanitize

import "testing"

func TestContentStripsNullBytesFromNestedStrings(t *testing.T) {
	in := map[string]any{
		"text": "hello\x00world",
		"meta": map[string]any{
			"title": "clean\x00title",
		},
		"tags":  []any{"a\x00", "b"},
		"count": 3,
		"ok":    true,
	}

	out := Content(in).(map[string]any)

	if out["text"] != "helloworld" {
		t.Fatalf("text: got %q", out["text"])
	}
	meta := out["meta"].(map[string]any)
	if meta["title"] != "cleantitle" {
		t.Fatalf("meta.title: got %q", meta["title"])
	}
	tags := out["tags"].([]any)
	if tags[0] != "a" || tags[1] != "b" {
		t.Fatalf("tags: got %v", tags)
	}
	if out["count"] != 3 || out["ok"] != true {
		t.Fatalf("non-string leaves mutated: %v", out)
	}
}

func TestContentStripsNullBytesFromStringSlices(t *testing.T) {
	in := map[string]any{"authors": []string{"Vas\x00wani", "Shazeer"}}
	out := Content(in).(map[string]any)
	authors := out["authors"].([]string)
	if authors[0] != "Vaswani" || authors[1] != "Shazeer" {
		t.Fatalf("got %v", authors)
	}
}

func TestContentLeavesCleanStringsUntouched(t *testing.T) {
	in := map[string]any{"a": "no nulls here"}
	out := Content(in).(map[string]any)
	if out["a"] != "no nulls here" {
		t.Fatalf("got %q", out["a"])
	}
}
