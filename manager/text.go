package manager

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/polyglot-translator/polyglot/i18n"
)

// Text treats the whole file content as a single translation unit.
type Text struct {
	Config
}

// Run reads the source file, translates it in one call, and writes the
// result. When the translation fails or comes back empty, nothing is
// written and the run still succeeds.
func (m *Text) Run(ctx context.Context, tr Translator) error {
	data, err := os.ReadFile(m.SourceFile)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", m.SourceFile, err)
	}

	translated, err := tr.Translate(ctx, string(data))
	if err != nil {
		color.Yellow("%s (%v)", i18n.T("Nothing was translated; no output written."), err)
		return nil
	}
	if translated == "" {
		color.Yellow(i18n.T("Nothing was translated; no output written."))
		return nil
	}

	target := m.TargetPath("")
	if err := os.WriteFile(target, []byte(translated), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	color.Green(i18n.T("Generated %s."), target)
	return nil
}
