package i18n

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog holds translations keyed by language code, then by dot-separated
// message key path.
type Catalog map[string]map[string]any

// LoadCatalog walks the given filesystem and merges every .json, .yaml and
// .yml file into a single catalog. Each file maps language codes to nested
// translation maps:
//
//	{"en": {"billing": {"cancel": "Cancel subscription"}}}
//
// Files in nested directories are included. Later files merge over earlier
// ones at the language level.
func LoadCatalog(ctx context.Context, fsys fs.FS) (Catalog, error) {
	catalog := make(Catalog)

	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Join(ErrFailedToReadCatalog, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(path.Ext(name))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			return nil
		}

		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return errors.Join(ErrFailedToReadCatalog, err)
		}

		parsed, err := decodeCatalogFile(ext, raw)
		if err != nil {
			return errors.Join(err, errors.New(name))
		}

		for lang, messages := range parsed {
			if existing, ok := catalog[lang]; ok {
				mergeMessages(existing, messages)
			} else {
				catalog[lang] = messages
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return catalog, nil
}

func decodeCatalogFile(ext string, raw []byte) (Catalog, error) {
	var data map[string]any

	switch ext {
	case ".json":
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, errors.Join(ErrFailedToParseCatalog, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, errors.Join(ErrFailedToParseCatalog, err)
		}
	default:
		return nil, ErrUnsupportedCatalogFormat
	}

	catalog := make(Catalog, len(data))
	for lang, val := range data {
		messages, ok := val.(map[string]any)
		if !ok {
			return nil, errors.Join(ErrFailedToParseCatalog, errors.New("expected nested map for language "+lang))
		}
		catalog[lang] = messages
	}
	return catalog, nil
}

// mergeMessages merges src into dst recursively. Scalar values in src win.
func mergeMessages(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			mergeMessages(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}

// lookup traverses a nested message map using dot-separated key parts.
func lookup(m map[string]any, key string) (any, bool) {
	parts := strings.Split(key, ".")
	current := m

	for i, part := range parts {
		if i == len(parts)-1 {
			val, ok := current[part]
			return val, ok
		}

		next, ok := current[part].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}

	return nil, false
}
