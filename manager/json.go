package manager

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"github.com/polyglot-translator/polyglot/i18n"
	"github.com/polyglot-translator/polyglot/jsonfile"
)

// JSON translates every string leaf of a JSON document in place,
// preserving key order and nesting.
type JSON struct {
	Config
}

// jsonUnits exposes the document's string leaves as a Catalog. The slice
// is collected once, so the progress total and the translation order come
// from the same traversal.
type jsonUnits struct {
	leaves []*jsonfile.Value
}

func (u jsonUnits) Len() int { return len(u.leaves) }

func (u jsonUnits) Unit(i int) string { return u.leaves[i].Str }

func (u jsonUnits) SetUnit(i int, translated string) { u.leaves[i].Str = translated }

// Run loads the document, translates its string leaves sequentially, and
// re-serializes the tree with 2-space indentation to the target path.
func (m *JSON) Run(ctx context.Context, tr Translator) error {
	doc, err := jsonfile.ParseFile(m.SourceFile)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", m.SourceFile, err)
	}

	st := translateCatalog(ctx, tr, jsonUnits{leaves: doc.StringLeaves()})
	reportStats(st)

	target := m.TargetPath("")
	if err := doc.WriteFile(target); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	color.Green(i18n.T("Generated %s."), target)
	return nil
}
