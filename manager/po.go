package manager

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"github.com/polyglot-translator/polyglot/i18n"
	"github.com/polyglot-translator/polyglot/pofile"
)

// PO translates a gettext catalog entry by entry, preserving message ids,
// occurrences, and the original metadata block. It writes both the textual
// catalog and its compiled binary form.
type PO struct {
	Config
}

// poUnits exposes the catalog's translatable entries as a Catalog.
type poUnits struct {
	entries []*pofile.Entry
}

func (u poUnits) Len() int { return len(u.entries) }

func (u poUnits) Unit(i int) string { return u.entries[i].MsgStr }

func (u poUnits) SetUnit(i int, translated string) { u.entries[i].MsgStr = translated }

// Run loads the catalog, translates every entry sequentially, and writes
// {lang}.po plus the compiled {lang}.mo side by side.
func (m *PO) Run(ctx context.Context, tr Translator) error {
	src, err := pofile.ParseFile(m.SourceFile)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", m.SourceFile, err)
	}

	// Untranslated source entries are treated as source text: an empty
	// msgstr defaults to the msgid before translation, so a failed call
	// still leaves usable content in the output.
	var units []*pofile.Entry
	for _, e := range src.Entries {
		if e.Obsolete || e.MsgID == "" {
			continue
		}
		if e.MsgStr == "" {
			e.MsgStr = e.MsgID
		}
		units = append(units, e)
	}

	st := translateCatalog(ctx, tr, poUnits{entries: units})
	reportStats(st)

	// Fresh catalog carrying the original header and the (now translated)
	// entries in their original order.
	out := pofile.NewCatalog()
	out.Header = src.Header
	out.Entries = src.Entries

	poPath := m.TargetPath(".po")
	moPath := m.TargetPath(".mo")

	if err := out.WriteFile(poPath); err != nil {
		return fmt.Errorf("writing %s: %w", poPath, err)
	}
	if err := out.CompileMOFile(moPath); err != nil {
		return fmt.Errorf("writing %s: %w", moPath, err)
	}

	color.Green(i18n.T("Generated %s and %s."), poPath, moPath)
	return nil
}
