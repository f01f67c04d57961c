package i18n

import (
	"context"

	"golang.org/x/text/language"
)

// DefaultLanguage is the language code used when no locale is detected.
const DefaultLanguage = "en"

// MatchLocale picks the best supported language for the user's preferences.
// Preferences are BCP 47 tags in priority order, for example from a stored
// profile locale or the LANG environment variable. Matching tolerates
// region-qualified preferences against base supported languages (en-US
// matches en). Returns fallback when nothing matches.
func MatchLocale(preferred []string, supported []string, fallback string) string {
	if len(preferred) == 0 || len(supported) == 0 {
		return fallback
	}

	tags := make([]language.Tag, 0, len(supported))
	valid := make([]string, 0, len(supported))
	for _, lang := range supported {
		tag, err := language.Parse(lang)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		valid = append(valid, lang)
	}
	if len(tags) == 0 {
		return fallback
	}

	wanted := make([]language.Tag, 0, len(preferred))
	for _, lang := range preferred {
		if tag, err := language.Parse(lang); err == nil {
			wanted = append(wanted, tag)
		}
	}
	if len(wanted) == 0 {
		return fallback
	}

	matcher := language.NewMatcher(tags)
	_, index, confidence := matcher.Match(wanted...)
	if confidence == language.No {
		return fallback
	}
	return valid[index]
}

// localeContextKey is the key for storing locale in context
type localeContextKey struct{}

// SetLocale sets the locale in the context.
func SetLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeContextKey{}, locale)
}

// GetLocale returns the locale from the context.
// If no locale is set, will return default locale - "en".
func GetLocale(ctx context.Context) string {
	locale, _ := ctx.Value(localeContextKey{}).(string)
	if locale == "" {
		return DefaultLanguage
	}
	return locale
}

// Tc translates a key using the locale from context.
func (t *Translator) Tc(ctx context.Context, key string, args ...string) string {
	return t.T(GetLocale(ctx), key, args...)
}

// Nc translates a plural key using the locale from context.
func (t *Translator) Nc(ctx context.Context, key string, n int, args ...string) string {
	return t.N(GetLocale(ctx), key, n, args...)
}
