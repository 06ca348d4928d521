package jsonfile

import (
	"strings"
	"testing"
)

func TestParsePreservesKeyOrderAndNesting(t *testing.T) {
	data := []byte(`{
  "zebra": "stripes",
  "apple": {
    "color": "red",
    "taste": "sweet"
  },
  "banana": "yellow"
}`)

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	keys := doc.Keys()
	if len(keys) != 3 || keys[0] != "zebra" || keys[1] != "apple" || keys[2] != "banana" {
		t.Fatalf("unexpected key order: %v", keys)
	}

	apple := doc.Value("apple")
	if apple == nil || apple.Obj == nil {
		t.Fatal("apple should be a nested object")
	}
	inner := apple.Obj.Keys()
	if len(inner) != 2 || inner[0] != "color" || inner[1] != "taste" {
		t.Fatalf("unexpected nested key order: %v", inner)
	}
}

func TestStringLeavesDocumentOrder(t *testing.T) {
	data := []byte(`{
  "a": "one",
  "b": {"c": "two", "d": {"e": "three"}},
  "f": "four",
  "count": 5
}`)

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	leaves := doc.StringLeaves()
	if len(leaves) != 4 {
		t.Fatalf("leaf count = %d, want 4 (numbers are not units)", len(leaves))
	}
	got := make([]string, len(leaves))
	for i, l := range leaves {
		got[i] = l.Str
	}
	want := []string{"one", "two", "three", "four"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("leaves = %v, want %v", got, want)
		}
	}

	// Writing through the returned pointers mutates the tree.
	leaves[1].Str = "due"
	if doc.Value("b").Obj.Value("c").Str != "due" {
		t.Fatal("leaf mutation did not reach the tree")
	}
}

func TestMarshalTwoSpaceIndent(t *testing.T) {
	data := []byte(`{"greeting":"hello","nested":{"inner":"value"}}`)

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	doc.Value("greeting").Str = "ciao"

	out, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	want := `{
  "greeting": "ciao",
  "nested": {
    "inner": "value"
  }
}`
	if string(out) != want {
		t.Fatalf("Marshal output:\n%s\nwant:\n%s", out, want)
	}
}

func TestNonStringLeavesPreservedVerbatim(t *testing.T) {
	data := []byte(`{"n": 42, "ok": true, "nothing": null, "list": ["a", "b"], "s": "text"}`)

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	out, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	outStr := string(out)

	for _, want := range []string{`"n": 42`, `"ok": true`, `"nothing": null`} {
		if !strings.Contains(outStr, want) {
			t.Fatalf("output missing %q:\n%s", want, outStr)
		}
	}
	if !strings.Contains(outStr, `"a"`) || !strings.Contains(outStr, `"b"`) {
		t.Fatalf("array contents lost:\n%s", outStr)
	}

	round, err := Parse(out)
	if err != nil {
		t.Fatalf("roundtrip Parse error: %v", err)
	}
	if round.Value("s") == nil || round.Value("s").Str != "text" {
		t.Fatal("string leaf lost in roundtrip")
	}
}

func TestParseRejectsNonObjectTopLevel(t *testing.T) {
	for _, input := range []string{`[1, 2]`, `"just a string"`, `42`} {
		if _, err := Parse([]byte(input)); err == nil {
			t.Fatalf("Parse(%s) should fail", input)
		}
	}
}

func TestParseInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"broken":`)); err == nil {
		t.Fatal("expected parse error for truncated JSON")
	}
}
