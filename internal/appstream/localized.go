package appstream

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// DefaultLocale is the untranslated AppStream locale key.
const DefaultLocale = "C"

// LocalizedText is a YAML field that is either a bare string or a mapping
// keyed by locale.
type LocalizedText struct {
	plain     string
	localized map[string]string
	present   bool
}

// Plain builds a non-localized value.
func Plain(s string) LocalizedText {
	return LocalizedText{plain: s, present: true}
}

// Localized builds a value keyed by locale.
func Localized(m map[string]string) LocalizedText {
	return LocalizedText{localized: m, present: true}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *LocalizedText) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = Plain(node.Value)
		return nil
	case yaml.MappingNode:
		m := make(map[string]string, len(node.Content)/2)
		if err := node.Decode(&m); err != nil {
			return fmt.Errorf("localized text: %w", err)
		}
		*l = Localized(m)
		return nil
	default:
		return fmt.Errorf("localized text: unexpected YAML node kind %d at line %d", node.Kind, node.Line)
	}
}

// IsLocalized reports whether the value was a locale mapping.
func (l LocalizedText) IsLocalized() bool {
	return l.localized != nil
}

// Value returns the "C" locale entry, or the bare string when the field
// was not localized, or def when neither is available.
func (l LocalizedText) Value(def string) string {
	return l.ValueFor(DefaultLocale, def)
}

// ValueFor resolves locale with a language-only fallback (en_US -> en) and
// then the "C" locale.
func (l LocalizedText) ValueFor(locale, def string) string {
	if !l.present {
		return def
	}
	if l.localized == nil {
		if s := clean(l.plain); s != "" {
			return s
		}
		return def
	}
	candidates := []string{locale}
	if i := strings.IndexAny(locale, "_-@."); i > 0 {
		candidates = append(candidates, locale[:i])
	}
	candidates = append(candidates, DefaultLocale)
	for _, c := range candidates {
		if s := clean(l.localized[c]); s != "" {
			return s
		}
	}
	return def
}

// clean trims surrounding whitespace and NFC-normalizes s.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// orDefault returns clean(s) or def when s is blank.
func orDefault(s, def string) string {
	if c := clean(s); c != "" {
		return c
	}
	return def
}
