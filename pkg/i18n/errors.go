package i18n

import "errors"

// Package-specific errors
var (
	// ErrFailedToParseCatalog is returned when a translation file cannot be decoded
	ErrFailedToParseCatalog = errors.New("failed to parse translation catalog")

	// ErrFailedToReadCatalog is returned when a translation file cannot be read
	ErrFailedToReadCatalog = errors.New("failed to read translation catalog")

	// ErrUnsupportedCatalogFormat is returned for file extensions no decoder handles
	ErrUnsupportedCatalogFormat = errors.New("unsupported translation catalog format")

	// ErrLanguageNotSupported is returned when exporting a language with no catalog
	ErrLanguageNotSupported = errors.New("language not supported")
)
