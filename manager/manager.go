// Package manager implements the per-format translation managers: text,
// JSON, PO, and document. Each manager owns its typed in-memory
// representation; the structured formats (JSON, PO) share one sequential
// runner through the Catalog abstraction, which also drives the progress
// bar and the failure counters.
package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"

	"github.com/polyglot-translator/polyglot/i18n"
)

// Translator produces the translated form of one unit of text.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(ctx context.Context, text string) (string, error)

// Translate calls f.
func (f TranslatorFunc) Translate(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Config holds the per-invocation settings shared by every manager.
type Config struct {
	// SourceFile is the path of the file to translate.
	SourceFile string
	// TargetLang is the target language code, used for the API and for
	// naming the output file.
	TargetLang string
	// SourceLang is the source language code; empty means auto-detect.
	SourceLang string
	// OutputDirectory is where output files go. Unset or not a directory
	// falls back to the working directory.
	OutputDirectory string
}

// OutputDir resolves the directory output files are written to.
func (c Config) OutputDir() string {
	if c.OutputDirectory != "" {
		if info, err := os.Stat(c.OutputDirectory); err == nil && info.IsDir() {
			return c.OutputDirectory
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// TargetPath derives the output file path: the lowercased target language
// code plus ext, inside OutputDir. An empty ext reuses the source file's
// extension.
func (c Config) TargetPath(ext string) string {
	if ext == "" {
		ext = filepath.Ext(c.SourceFile)
	}
	return filepath.Join(c.OutputDir(), strings.ToLower(c.TargetLang)+ext)
}

// Catalog is the unit-level view of a structured format: a fixed total
// plus positional access to each translatable unit.
type Catalog interface {
	Len() int
	Unit(i int) string
	SetUnit(i int, translated string)
}

// Stats are the counters of one translation run.
type Stats struct {
	// Completed counts translation attempts, successful or not.
	Completed int
	// NotTranslated counts units that kept their original text because
	// the API call failed or came back empty.
	NotTranslated int
}

// translateCatalog translates every unit in order, sequentially. Failed
// units keep their original text. The progress bar advances once per
// attempt regardless of outcome, so it always ends at Len().
func translateCatalog(ctx context.Context, tr Translator, cat Catalog) Stats {
	bar := pb.Full.Start(cat.Len())
	bar.SetWriter(os.Stderr)
	defer bar.Finish()

	var st Stats
	for i := 0; i < cat.Len(); i++ {
		translated, err := tr.Translate(ctx, cat.Unit(i))
		if err != nil || translated == "" {
			st.NotTranslated++
		} else {
			cat.SetUnit(i, translated)
		}
		st.Completed++
		bar.Increment()
	}
	return st
}

// reportStats prints the end-of-run summary: a completion message, plus a
// yellow warning when some units kept their original text.
func reportStats(st Stats) {
	fmt.Println(i18n.T("Translation completed."))
	if st.NotTranslated > 0 {
		color.Yellow(i18n.N(
			"%d entry has not been translated.",
			"%d entries have not been translated.",
			st.NotTranslated), st.NotTranslated)
	}
}
