package archive

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// ManifestFile is the bundle path of the optional project manifest.
const ManifestFile = "package.toml"

// FileTypeHint describes what an asset request is expected to contain.
type FileTypeHint string

// Known hints. Other values are kept verbatim.
const (
	HintImage    FileTypeHint = "image"
	HintFont     FileTypeHint = "font"
	HintDocument FileTypeHint = "document"
)

// AssetRequests maps a requested asset path to its expected content.
//
// In package.toml it is written either as a list of paths,
//
//	asset_requests = ["images/logo.png"]
//
// in which case every hint is empty, or as a table of path = hint pairs.
type AssetRequests map[string]FileTypeHint

// UnmarshalTOML implements toml.Unmarshaler.
func (a *AssetRequests) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case []any:
		m := make(AssetRequests, len(v))
		for i, e := range v {
			p, ok := e.(string)
			if !ok {
				return fmt.Errorf("asset_requests[%d]: want string, got %T", i, e)
			}
			m[p] = ""
		}
		*a = m
	case map[string]any:
		m := make(AssetRequests, len(v))
		for p, e := range v {
			h, ok := e.(string)
			if !ok {
				return fmt.Errorf("asset_requests.%q: want string hint, got %T", p, e)
			}
			m[p] = FileTypeHint(h)
		}
		*a = m
	default:
		return fmt.Errorf("asset_requests: want list or table, got %T", v)
	}
	return nil
}

// Manifest is the decoded package.toml of a bundle.
//
// Asset and package requests are informational: they are decoded and kept
// for callers but the pipeline does not fetch or verify them.
type Manifest struct {
	Name            string        `toml:"name"`
	Authors         []string      `toml:"authors"`
	AssetRequests   AssetRequests `toml:"asset_requests"`
	PackageRequests []string      `toml:"package_requests"`
}

// ParseManifest decodes a manifest body. Unknown keys are ignored and
// missing keys keep their zero value; anything toml rejects, including a
// key of the wrong type, returns ErrMalformedManifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}
	return &m, nil
}
