package i18n

import (
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
)

// Translator resolves message keys against a loaded catalog.
// Methods are safe for concurrent use; the catalog is immutable after New.
type Translator struct {
	catalog        Catalog
	defaultLang    string
	fallbackToKey  bool
	logMissing     bool
	log            *slog.Logger
	supportedCache []string
}

// New creates a Translator over the given catalog.
func New(catalog Catalog, opts ...Option) *Translator {
	t := &Translator{
		catalog:       catalog,
		defaultLang:   DefaultLanguage,
		fallbackToKey: true,
		log:           slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}

	langs := make([]string, 0, len(catalog))
	for lang := range catalog {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	t.supportedCache = langs

	return t
}

// SupportedLanguages returns the catalog's language codes in sorted order.
func (t *Translator) SupportedLanguages() []string {
	out := make([]string, len(t.supportedCache))
	copy(out, t.supportedCache)
	return out
}

// HasTranslation reports whether the key resolves to a value for the language.
func (t *Translator) HasTranslation(lang, key string) bool {
	messages, ok := t.catalog[lang]
	if !ok {
		return false
	}
	_, ok = lookup(messages, key)
	return ok
}

// T translates a key for the given language. Additional arguments are
// key-value pairs substituted into "%{name}" placeholders:
//
//	t.T("en", "billing.greeting", "name", "Alice")
//
// Missing languages fall back to the default language; a missing key returns
// the key itself unless WithFallbackToKey(false) was set.
func (t *Translator) T(lang, key string, args ...string) string {
	val, ok := t.resolve(lang, key)
	if !ok {
		return t.miss(lang, key, args)
	}

	str, ok := val.(string)
	if !ok {
		return t.miss(lang, key, args)
	}
	return substitute(str, pairsToMap(args))
}

// Td translates a key, returning the provided default when no translation
// exists instead of falling back to the key.
func (t *Translator) Td(lang, key, defaultValue string, args ...string) string {
	val, ok := t.resolve(lang, key)
	if !ok {
		return substitute(defaultValue, pairsToMap(args))
	}
	str, ok := val.(string)
	if !ok {
		return substitute(defaultValue, pairsToMap(args))
	}
	return substitute(str, pairsToMap(args))
}

// N translates a key with pluralization. The plural form is selected by n:
// key+".zero" for n=0 (falling back to ".other"), key+".one" for n=1, and
// key+".other" otherwise. The count is always available as "%{count}".
func (t *Translator) N(lang, key string, n int, args ...string) string {
	forms := []string{key + ".other"}
	switch n {
	case 0:
		forms = []string{key + ".zero", key + ".other"}
	case 1:
		forms = []string{key + ".one", key + ".other"}
	}

	params := pairsToMap(args)
	if _, ok := params["count"]; !ok {
		params["count"] = strconv.Itoa(n)
	}

	for _, form := range forms {
		if val, ok := t.resolve(lang, form); ok {
			if str, ok := val.(string); ok {
				return substitute(str, params)
			}
		}
	}

	if t.logMissing {
		t.log.Warn("pluralization not found", "lang", lang, "key", key, "n", n)
	}
	if t.fallbackToKey {
		return substitute(key, params)
	}
	return ""
}

// ExportJSON returns all translations for a language as a JSON string,
// useful for handing a catalog slice to embedded web views.
func (t *Translator) ExportJSON(lang string) (string, error) {
	messages, ok := t.catalog[lang]
	if !ok {
		return "", errors.Join(ErrLanguageNotSupported, errors.New(lang))
	}

	raw, err := json.Marshal(messages)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// resolve looks up a key in the requested language, then the default language.
func (t *Translator) resolve(lang, key string) (any, bool) {
	if messages, ok := t.catalog[lang]; ok {
		if val, ok := lookup(messages, key); ok {
			return val, true
		}
	}
	if lang != t.defaultLang {
		if messages, ok := t.catalog[t.defaultLang]; ok {
			if val, ok := lookup(messages, key); ok {
				return val, true
			}
		}
	}
	return nil, false
}

func (t *Translator) miss(lang, key string, args []string) string {
	if t.logMissing {
		t.log.Warn("translation not found", "lang", lang, "key", key)
	}
	if t.fallbackToKey {
		return substitute(key, pairsToMap(args))
	}
	return ""
}

// paramRegex finds named parameters in the form %{name}
var paramRegex = regexp.MustCompile(`%\{([^}]+)\}`)

func substitute(tmpl string, params map[string]string) string {
	if len(params) == 0 {
		return tmpl
	}
	return paramRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := params[name]; ok {
			return val
		}
		return match
	})
}

// pairsToMap converts key-value argument pairs into a map.
// An odd trailing argument is ignored.
func pairsToMap(args []string) map[string]string {
	params := make(map[string]string, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		params[args[i]] = args[i+1]
	}
	return params
}
