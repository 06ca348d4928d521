package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	f, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if f.TargetLang != "" || f.SourceLang != "" || f.OutputDirectory != "" {
		t.Fatalf("missing file should yield empty config, got %+v", f)
	}
}

func TestLoadValues(t *testing.T) {
	dir := t.TempDir()
	content := "target_lang: it\nsource_lang: en\noutput_directory: ./locales\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if f.TargetLang != "it" || f.SourceLang != "en" || f.OutputDirectory != "./locales" {
		t.Fatalf("config = %+v", f)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("target_lang: [broken"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}
