// Package i18n localizes polyglot's own user-facing messages.
//
// It wraps gotext around PO catalogs embedded in the binary. Unknown
// languages and missing translations fall through to the original English
// string, standard gettext behavior.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the translation catalogs, laid out as
// locales/{lang}/LC_MESSAGES/polyglot.po.
//
//go:embed all:locales
var locales embed.FS

const domain = "polyglot"

var locale *gotext.Locale

// Init loads the catalog for lang, auto-detecting from the environment
// (LANGUAGE, LC_ALL, LC_MESSAGES, LANG) when lang is empty. Call once at
// startup before T or N.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	locale = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	locale.AddDomain(domain)
	locale.SetDomain(domain)
}

// T translates a message, returning it unchanged when no translation
// exists.
func T(msgid string) string {
	if locale == nil {
		return msgid
	}
	return locale.Get(msgid)
}

// N translates a message with plural forms selected by n.
func N(singular, plural string, n int) string {
	if locale == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return locale.GetN(singular, plural, n)
}

// detectLanguage follows the GNU gettext environment variable priority.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE can be a colon-separated list; take the first entry.
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// Strip the encoding suffix ("it_IT.UTF-8" -> "it_IT").
		if idx := strings.IndexByte(val, '.'); idx >= 0 {
			val = val[:idx]
		}
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
