package i18n

import "strings"

// LabelMap holds per-language display text keyed by normalized locale code.
type LabelMap map[string]string

// NormalizeLocale collapses a locale tag to one of the supported prompt
// languages. Anything starting with "zh" maps to Chinese, everything else
// falls back to English.
func NormalizeLocale(locale string) string {
	code := strings.ToLower(strings.TrimSpace(locale))
	if code == "" {
		return "en"
	}
	if strings.HasPrefix(code, "zh") {
		return "zh"
	}
	return "en"
}

// Localize resolves the label for the given locale, preferring an exact
// match, then English, then the supplied fallback.
func Localize(labels LabelMap, locale, fallback string) string {
	if len(labels) == 0 {
		return fallback
	}
	lang := NormalizeLocale(locale)
	if text, ok := labels[lang]; ok && text != "" {
		return text
	}
	if text, ok := labels["en"]; ok && text != "" {
		return text
	}
	return fallback
}
