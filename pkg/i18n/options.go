package i18n

import "log/slog"

// Option configures a Translator instance.
type Option func(*Translator)

// WithDefaultLanguage sets the language used when a key is missing from the
// requested language, and the fallback for locale matching.
func WithDefaultLanguage(lang string) Option {
	return func(t *Translator) {
		if lang != "" {
			t.defaultLang = lang
		}
	}
}

// WithFallbackToKey determines whether a missing translation returns the key
// itself. Default is true.
func WithFallbackToKey(fallback bool) Option {
	return func(t *Translator) {
		t.fallbackToKey = fallback
	}
}

// WithLogger provides a logger for the translator. If not specified,
// a discard logger is used.
func WithLogger(log *slog.Logger) Option {
	return func(t *Translator) {
		if log != nil {
			t.log = log
		}
	}
}

// WithMissingTranslationsLogging controls whether missing translations are
// logged. Default is false to avoid excessive logging.
func WithMissingTranslationsLogging(enabled bool) Option {
	return func(t *Translator) {
		t.logMissing = enabled
	}
}
