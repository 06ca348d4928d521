package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeTranslator maps source text to translations and fails on anything
// listed in failOn.
type fakeTranslator struct {
	mapping map[string]string
	failOn  map[string]bool
	calls   []string
}

func (f *fakeTranslator) Translate(_ context.Context, text string) (string, error) {
	f.calls = append(f.calls, text)
	if f.failOn[text] {
		return "", fmt.Errorf("simulated API failure")
	}
	if out, ok := f.mapping[text]; ok {
		return out, nil
	}
	return "", nil
}

func TestOutputDirResolution(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	t.Run("explicit existing directory", func(t *testing.T) {
		dir := t.TempDir()
		c := Config{OutputDirectory: dir}
		if got := c.OutputDir(); got != dir {
			t.Fatalf("OutputDir() = %q, want %q", got, dir)
		}
	})

	t.Run("unset falls back to working directory", func(t *testing.T) {
		c := Config{}
		if got := c.OutputDir(); got != wd {
			t.Fatalf("OutputDir() = %q, want %q", got, wd)
		}
	})

	t.Run("invalid falls back to working directory", func(t *testing.T) {
		c := Config{OutputDirectory: "/does/not/exist"}
		if got := c.OutputDir(); got != wd {
			t.Fatalf("OutputDir() = %q, want %q", got, wd)
		}
	})
}

func TestTargetPath(t *testing.T) {
	dir := t.TempDir()
	c := Config{
		SourceFile:      "messages.json",
		TargetLang:      "IT",
		OutputDirectory: dir,
	}

	if got, want := c.TargetPath(""), filepath.Join(dir, "it.json"); got != want {
		t.Fatalf("TargetPath(\"\") = %q, want %q", got, want)
	}
	if got, want := c.TargetPath(".mo"), filepath.Join(dir, "it.mo"); got != want {
		t.Fatalf("TargetPath(.mo) = %q, want %q", got, want)
	}
}

// recordingCatalog counts Unit/SetUnit traffic for lockstep checks.
type recordingCatalog struct {
	units    []string
	setCalls int
}

func (c *recordingCatalog) Len() int          { return len(c.units) }
func (c *recordingCatalog) Unit(i int) string { return c.units[i] }
func (c *recordingCatalog) SetUnit(i int, translated string) {
	c.units[i] = translated
	c.setCalls++
}

func TestTranslateCatalogCounters(t *testing.T) {
	tr := &fakeTranslator{
		mapping: map[string]string{"a": "A", "b": "B", "c": "C"},
		failOn:  map[string]bool{"b": true},
	}
	cat := &recordingCatalog{units: []string{"a", "b", "c"}}

	st := translateCatalog(context.Background(), tr, cat)

	if st.Completed != 3 {
		t.Fatalf("Completed = %d, want 3 (one update per unit, failures included)", st.Completed)
	}
	if st.NotTranslated != 1 {
		t.Fatalf("NotTranslated = %d, want 1", st.NotTranslated)
	}
	if cat.setCalls != 2 {
		t.Fatalf("SetUnit calls = %d, want 2", cat.setCalls)
	}
	if cat.units[1] != "b" {
		t.Fatalf("failed unit = %q, want original \"b\"", cat.units[1])
	}
	if cat.units[0] != "A" || cat.units[2] != "C" {
		t.Fatalf("translated units = %v", cat.units)
	}
}

func TestTranslateCatalogEmptyResultIsFailure(t *testing.T) {
	tr := &fakeTranslator{} // returns "" for everything
	cat := &recordingCatalog{units: []string{"x"}}

	st := translateCatalog(context.Background(), tr, cat)

	if st.NotTranslated != 1 || cat.units[0] != "x" {
		t.Fatalf("empty translation should keep original: stats=%+v units=%v", st, cat.units)
	}
}

func TestJSONManagerScenario(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "en.json")
	if err := os.WriteFile(src, []byte(`{"greeting": "hello"}`), 0644); err != nil {
		t.Fatal(err)
	}

	m := &JSON{Config: Config{
		SourceFile:      src,
		TargetLang:      "it",
		OutputDirectory: dir,
	}}
	tr := &fakeTranslator{mapping: map[string]string{"hello": "ciao"}}

	if err := m.Run(context.Background(), tr); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "it.json"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	want := "{\n  \"greeting\": \"ciao\"\n}"
	if string(out) != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestJSONManagerFailureKeepsOriginalAndStructure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "en.json")
	input := `{"a": "one", "nested": {"b": "two"}, "c": "three"}`
	if err := os.WriteFile(src, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}

	m := &JSON{Config: Config{
		SourceFile:      src,
		TargetLang:      "de",
		OutputDirectory: dir,
	}}
	tr := &fakeTranslator{
		mapping: map[string]string{"one": "eins", "three": "drei"},
		failOn:  map[string]bool{"two": true},
	}

	if err := m.Run(context.Background(), tr); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(tr.calls) != 3 {
		t.Fatalf("translation calls = %d, want 3 (one per leaf)", len(tr.calls))
	}

	out, err := os.ReadFile(filepath.Join(dir, "de.json"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	outStr := string(out)
	for _, want := range []string{`"a": "eins"`, `"b": "two"`, `"c": "drei"`, `"nested": {`} {
		if !strings.Contains(outStr, want) {
			t.Fatalf("output missing %q:\n%s", want, outStr)
		}
	}
}

func TestTextManager(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(src, []byte("hello world"), 0644); err != nil {
		t.Fatal(err)
	}

	m := &Text{Config: Config{
		SourceFile:      src,
		TargetLang:      "IT",
		OutputDirectory: dir,
	}}
	tr := &fakeTranslator{mapping: map[string]string{"hello world": "ciao mondo"}}

	if err := m.Run(context.Background(), tr); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "it.txt"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(out) != "ciao mondo" {
		t.Fatalf("output = %q", out)
	}
}

func TestTextManagerSkipsWriteOnFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(src, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	m := &Text{Config: Config{
		SourceFile:      src,
		TargetLang:      "it",
		OutputDirectory: dir,
	}}
	tr := &fakeTranslator{failOn: map[string]bool{"hello": true}}

	if err := m.Run(context.Background(), tr); err != nil {
		t.Fatalf("Run should not fail on a failed translation: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "it.txt")); !os.IsNotExist(err) {
		t.Fatal("no output file should be written when translation fails")
	}
}

func TestTextManagerUnreadableSource(t *testing.T) {
	m := &Text{Config: Config{
		SourceFile: filepath.Join(t.TempDir(), "missing.txt"),
		TargetLang: "it",
	}}

	if err := m.Run(context.Background(), &fakeTranslator{}); err == nil {
		t.Fatal("expected error for missing source file")
	}
}
