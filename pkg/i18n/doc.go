// Package i18n provides message translation for user-facing text.
//
// Catalogs are JSON or YAML files mapping language codes to nested message
// maps, loaded from any fs.FS (an embed.FS in practice):
//
//	//go:embed locales/*.yaml
//	var locales embed.FS
//
//	catalog, err := i18n.LoadCatalog(ctx, locales)
//	translator := i18n.New(catalog, i18n.WithDefaultLanguage("en"))
//
// Messages are resolved with dot-separated keys and support named
// substitution with "%{name}" placeholders:
//
//	translator.T("en", "billing.cancel_confirm", "plan", "Annual")
//
// Pluralized messages use ".zero", ".one" and ".other" suffixes selected by
// Translator.N. Locale negotiation against the catalog's languages is done
// with MatchLocale, which delegates to golang.org/x/text/language. The
// current locale travels in context via SetLocale/GetLocale and the
// context-aware Tc/Nc helpers.
package i18n
