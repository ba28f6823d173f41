// Package i18n holds the supported locales and the strings the terminal
// front end shows in each of them.
package i18n

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Default is used when no stored or requested locale is supported.
const Default = "en"

// Supported lists the locale codes the app ships, in display order.
var Supported = []string{"en", "vi", "es", "fr", "ja", "zh", "fil", "my"}

// Names maps each supported code to its name in that language.
var Names = map[string]string{
	"en":  "English",
	"vi":  "Tiếng Việt",
	"es":  "Español",
	"fr":  "Français",
	"ja":  "日本語",
	"zh":  "中文",
	"fil": "Filipino",
	"my":  "မြန်မာ",
}

var (
	supportedTags = func() []language.Tag {
		tags := make([]language.Tag, len(Supported))
		for i, code := range Supported {
			tags[i] = language.MustParse(code)
		}
		return tags
	}()
	matcher = language.NewMatcher(supportedTags)
)

// IsValid reports whether code is exactly one of Supported.
func IsValid(code string) bool {
	return slices.Contains(Supported, code)
}

// Normalize maps a requested locale such as "vi-VN", "zh_Hant" or "FR" to a
// supported code. Anything that does not match falls back to Default.
func Normalize(requested string) string {
	if code, ok := Match(requested); ok {
		return code
	}
	return Default
}

// Match is Normalize without the fallback: ok is false when requested
// names no supported locale.
func Match(requested string) (code string, ok bool) {
	requested = strings.ReplaceAll(strings.TrimSpace(requested), "_", "-")
	if requested == "" {
		return "", false
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", false
	}
	return Supported[idx], true
}

// Printer formats numbers and messages for code.
func Printer(code string) *message.Printer {
	return message.NewPrinter(language.Make(Normalize(code)), message.Catalog(builder))
}
