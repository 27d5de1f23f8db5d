package generator

import "errors"

var (
	// ErrItemNotFound is returned by a MediaLibrary when no item matches a path.
	ErrItemNotFound = errors.New("library item not found")

	// ErrInvalidImage indicates downloaded bytes are not a supported image.
	ErrInvalidImage = errors.New("not a supported image")

	// ErrNoVariant indicates an episode has no stream for any quality.
	ErrNoVariant = errors.New("no stream variant")
)
