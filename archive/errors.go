package archive

import "errors"

// Sentinel errors returned by Resolve. Callers match them with errors.Is;
// the returned error usually wraps one of these with the offending entry.
var (
	// ErrCorrupt is returned when the zip structure cannot be read:
	// a damaged central directory, a checksum mismatch or two entries
	// that normalize to the same path.
	ErrCorrupt = errors.New("archive: corrupt archive")

	// ErrUnsupported is returned for entries using an unknown compression
	// method or encryption.
	ErrUnsupported = errors.New("archive: unsupported archive feature")

	// ErrPathTraversal is returned when an entry path is absolute or
	// escapes the bundle root.
	ErrPathTraversal = errors.New("archive: entry escapes bundle root")

	// ErrMissingMainDocument is returned when no main document exists at
	// the bundle root.
	ErrMissingMainDocument = errors.New("archive: missing " + MainDocument)

	// ErrMalformedManifest is returned when the manifest is present but
	// cannot be decoded.
	ErrMalformedManifest = errors.New("archive: malformed " + ManifestFile)
)
