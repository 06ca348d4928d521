// Package pofile reads and writes gettext PO catalogs and compiles them
// to the binary MO format.
package pofile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Entry is a single message in a PO catalog.
type Entry struct {
	// TranslatorComments are lines starting with "# ".
	TranslatorComments []string
	// ExtractedComments are lines starting with "#.".
	ExtractedComments []string
	// Occurrences are source-code locations, one per "#:" line.
	Occurrences []string
	// Flags are the "#," flags (fuzzy, c-format, ...).
	Flags []string

	// MsgCtxt is the message context (msgctxt).
	MsgCtxt string
	// MsgID is the untranslated string.
	MsgID string
	// MsgIDPlural is the untranslated plural string, if any.
	MsgIDPlural string
	// MsgStr is the translated string.
	MsgStr string
	// MsgStrPlural maps plural form index to translated string.
	MsgStrPlural map[int]string

	// Obsolete marks entries prefixed with "#~". They are carried through
	// untouched and never translated.
	Obsolete bool
}

// Catalog is a parsed PO file: a header plus an ordered list of entries.
type Catalog struct {
	// Header is the metadata entry (msgid "").
	Header *Entry
	// Entries are the message entries in file order.
	Entries []*Entry
}

// NewCatalog returns an empty catalog with a blank header.
func NewCatalog() *Catalog {
	return &Catalog{Header: &Entry{}}
}

// EntryByMsgID finds a non-obsolete entry by its msgid.
func (c *Catalog) EntryByMsgID(msgid string) *Entry {
	for _, e := range c.Entries {
		if e.MsgID == msgid && !e.Obsolete {
			return e
		}
	}
	return nil
}

// HeaderField returns a header field value by name (case-insensitive).
func (c *Catalog) HeaderField(name string) string {
	if c.Header == nil {
		return ""
	}
	for _, line := range strings.Split(c.Header.MsgStr, "\n") {
		if idx := strings.Index(line, ":"); idx > 0 {
			if strings.EqualFold(strings.TrimSpace(line[:idx]), name) {
				return strings.TrimSpace(line[idx+1:])
			}
		}
	}
	return ""
}

// Parse reads a PO catalog from a reader.
func Parse(r io.Reader) (*Catalog, error) {
	cat := &Catalog{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	var current *Entry
	var lastField string // last msgid/msgstr/... seen, for continuation lines
	lineNum := 0

	flush := func() {
		if current == nil {
			return
		}
		if current.MsgID == "" && !current.Obsolete && cat.Header == nil {
			cat.Header = current
		} else {
			cat.Entries = append(cat.Entries, current)
		}
		current = nil
		lastField = ""
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			current = &Entry{MsgStrPlural: make(map[int]string)}
		}

		if strings.HasPrefix(line, "#~ ") {
			current.Obsolete = true
			line = line[3:]
		}

		if strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "#~") {
			parseComment(current, line)
			continue
		}

		switch {
		case strings.HasPrefix(line, "msgctxt "):
			current.MsgCtxt = unquote(strings.TrimPrefix(line, "msgctxt "))
			lastField = "msgctxt"

		case strings.HasPrefix(line, "msgid_plural "):
			current.MsgIDPlural = unquote(strings.TrimPrefix(line, "msgid_plural "))
			lastField = "msgid_plural"

		case strings.HasPrefix(line, "msgid "):
			current.MsgID = unquote(strings.TrimPrefix(line, "msgid "))
			lastField = "msgid"

		case strings.HasPrefix(line, "msgstr["):
			var idx int
			if n, err := fmt.Sscanf(line, "msgstr[%d]", &idx); err != nil || n != 1 {
				return nil, fmt.Errorf("line %d: invalid msgstr index: %s", lineNum, line)
			}
			bracketEnd := strings.Index(line, "] ")
			if bracketEnd < 0 {
				return nil, fmt.Errorf("line %d: invalid msgstr format: %s", lineNum, line)
			}
			current.MsgStrPlural[idx] = unquote(line[bracketEnd+2:])
			lastField = fmt.Sprintf("msgstr[%d]", idx)

		case strings.HasPrefix(line, "msgstr "):
			current.MsgStr = unquote(strings.TrimPrefix(line, "msgstr "))
			lastField = "msgstr"

		case strings.HasPrefix(line, "\""):
			appendContinuation(current, lastField, unquote(line))
		}
	}

	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading PO catalog: %w", err)
	}
	if cat.Header == nil {
		cat.Header = &Entry{}
	}

	return cat, nil
}

func parseComment(e *Entry, line string) {
	switch {
	case strings.HasPrefix(line, "#:"):
		e.Occurrences = append(e.Occurrences, strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "#,"):
		for _, flag := range strings.Split(line[2:], ",") {
			if flag = strings.TrimSpace(flag); flag != "" {
				e.Flags = append(e.Flags, flag)
			}
		}
	case strings.HasPrefix(line, "#."):
		e.ExtractedComments = append(e.ExtractedComments, strings.TrimSpace(line[2:]))
	default:
		comment := strings.TrimPrefix(line[1:], " ")
		e.TranslatorComments = append(e.TranslatorComments, comment)
	}
}

func appendContinuation(e *Entry, lastField, val string) {
	switch {
	case lastField == "msgctxt":
		e.MsgCtxt += val
	case lastField == "msgid":
		e.MsgID += val
	case lastField == "msgid_plural":
		e.MsgIDPlural += val
	case lastField == "msgstr":
		e.MsgStr += val
	case strings.HasPrefix(lastField, "msgstr["):
		var idx int
		fmt.Sscanf(lastField, "msgstr[%d]", &idx)
		e.MsgStrPlural[idx] += val
	}
}

// ParseFile reads a PO catalog from disk.
func ParseFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Write writes the catalog to a writer in PO text format.
func (c *Catalog) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if c.Header != nil {
		writeEntry(bw, c.Header)
	}
	for _, e := range c.Entries {
		fmt.Fprintln(bw)
		writeEntry(bw, e)
	}

	return bw.Flush()
}

// WriteFile writes the catalog to disk in PO text format.
func (c *Catalog) WriteFile(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return c.Write(out)
}

func writeEntry(w *bufio.Writer, e *Entry) {
	prefix := ""
	if e.Obsolete {
		prefix = "#~ "
	}

	for _, c := range e.TranslatorComments {
		fmt.Fprintf(w, "# %s\n", c)
	}
	for _, c := range e.ExtractedComments {
		fmt.Fprintf(w, "#. %s\n", c)
	}
	for _, occ := range e.Occurrences {
		fmt.Fprintf(w, "#: %s\n", occ)
	}
	if len(e.Flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(e.Flags, ", "))
	}

	if e.MsgCtxt != "" {
		writeQuotedField(w, prefix+"msgctxt", e.MsgCtxt)
	}
	writeQuotedField(w, prefix+"msgid", e.MsgID)
	if e.MsgIDPlural != "" {
		writeQuotedField(w, prefix+"msgid_plural", e.MsgIDPlural)
	}

	if e.MsgIDPlural != "" && len(e.MsgStrPlural) > 0 {
		indices := make([]int, 0, len(e.MsgStrPlural))
		for idx := range e.MsgStrPlural {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		for _, idx := range indices {
			writeQuotedField(w, fmt.Sprintf("%smsgstr[%d]", prefix, idx), e.MsgStrPlural[idx])
		}
	} else {
		writeQuotedField(w, prefix+"msgstr", e.MsgStr)
	}
}

// writeQuotedField writes a PO field with multiline quoting.
func writeQuotedField(w *bufio.Writer, field, value string) {
	if !strings.Contains(value, "\n") {
		fmt.Fprintf(w, "%s %s\n", field, quote(value))
		return
	}

	// Multiline: empty string on the field line, one quoted line per part.
	fmt.Fprintf(w, "%s \"\"\n", field)
	parts := strings.Split(value, "\n")
	for i, part := range parts {
		if i < len(parts)-1 {
			fmt.Fprintf(w, "%s\n", quote(part+"\n"))
		} else if part != "" {
			fmt.Fprintf(w, "%s\n", quote(part))
		}
	}
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return `"` + s + `"`
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				result.WriteByte('\n')
				i++
			case 't':
				result.WriteByte('\t')
				i++
			case '\\':
				result.WriteByte('\\')
				i++
			case '"':
				result.WriteByte('"')
				i++
			default:
				result.WriteByte(s[i])
			}
		} else {
			result.WriteByte(s[i])
		}
	}
	return result.String()
}
