package world

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/go-text/typesetting/font"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/cases"

	"github.com/gogpu/pagetex/internal/logging"
)

// FontOrigin records where a font came from.
type FontOrigin int

const (
	// OriginBundle fonts were shipped inside the project bundle.
	OriginBundle FontOrigin = iota
	// OriginEmbedded fonts are compiled into the binary.
	OriginEmbedded
	// OriginSystem fonts were found in the host's font directories.
	OriginSystem
)

// String returns the origin name.
func (o FontOrigin) String() string {
	switch o {
	case OriginBundle:
		return "bundle"
	case OriginEmbedded:
		return "embedded"
	case OriginSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Font is a font available to a document.
type Font struct {
	Source *text.FontSource
	Origin FontOrigin
	// Path is the bundle path or file system path; empty for embedded fonts.
	Path string
}

// Family returns the font family name.
func (f Font) Family() string {
	return f.Source.Name()
}

// FontOptions selects which font collections a world includes besides the
// fonts shipped in the bundle, which are always included.
type FontOptions struct {
	// Embedded includes the Go font family compiled into the binary.
	Embedded bool

	// System includes fonts found in the host's font directories.
	System bool

	// Dirs overrides the directories scanned for system fonts.
	// Empty means DefaultFontDirs.
	Dirs []string
}

// fontExts are the extensions loaded as fonts. Collections (.ttc) are not
// supported by the rasterizer.
var fontExts = map[string]struct{}{
	".ttf": {},
	".otf": {},
}

// IsFontPath reports whether p names a loadable font file.
func IsFontPath(p string) bool {
	_, ok := fontExts[strings.ToLower(path.Ext(p))]
	return ok
}

// loadFont validates data with go-text before handing it to the
// rasterizer's font loader.
func loadFont(data []byte) (*text.FontSource, error) {
	if _, err := font.ParseTTF(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return text.NewFontSource(data)
}

// embeddedFonts parses the Go font family once per process.
var embeddedFonts = sync.OnceValue(func() []Font {
	sets := []struct {
		name string
		data []byte
	}{
		{"Go Regular", goregular.TTF},
		{"Go Bold", gobold.TTF},
		{"Go Italic", goitalic.TTF},
		{"Go Bold Italic", gobolditalic.TTF},
		{"Go Mono", gomono.TTF},
	}
	fonts := make([]Font, 0, len(sets))
	for _, s := range sets {
		src, err := loadFont(s.data)
		if err != nil {
			logging.Logger().Warn("world: embedded font failed to load",
				"font", s.name, "error", err)
			continue
		}
		fonts = append(fonts, Font{Source: src, Origin: OriginEmbedded})
	}
	return fonts
})

// DefaultFontDirs returns the platform's usual font directories.
func DefaultFontDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		dirs := []string{filepath.Join(os.Getenv("WINDIR"), "Fonts")}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
		return dirs
	case "darwin":
		dirs := []string{"/System/Library/Fonts", "/Library/Fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
		return dirs
	default:
		dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home != "" {
			dirs = append(dirs,
				filepath.Join(home, ".local", "share", "fonts"),
				filepath.Join(home, ".fonts"))
		}
		return dirs
	}
}

// systemFonts caches scanned directories. Fonts are read-only once
// parsed, so one scan serves every job.
type systemFonts struct {
	mu    sync.Mutex
	byKey map[string][]Font
}

func (s *systemFonts) load(dirs []string) []Font {
	key := strings.Join(dirs, string(os.PathListSeparator))

	s.mu.Lock()
	defer s.mu.Unlock()
	if fonts, ok := s.byKey[key]; ok {
		return fonts
	}
	fonts := scanFontDirs(dirs)
	if s.byKey == nil {
		s.byKey = make(map[string][]Font)
	}
	s.byKey[key] = fonts
	return fonts
}

func scanFontDirs(dirs []string) []Font {
	var fonts []Font
	seen := make(map[string]struct{})
	for _, dir := range dirs {
		_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				// Missing or unreadable directories are common; skip them.
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !IsFontPath(p) {
				return nil
			}
			if _, dup := seen[p]; dup {
				return nil
			}
			seen[p] = struct{}{}

			data, err := os.ReadFile(p) //nolint:gosec // paths come from font directories
			if err != nil {
				return nil
			}
			src, err := loadFont(data)
			if err != nil {
				logging.Logger().Debug("world: skipping system font", "path", p, "error", err)
				return nil
			}
			fonts = append(fonts, Font{Source: src, Origin: OriginSystem, Path: p})
			return nil
		})
	}
	logging.Logger().Debug("world: scanned system fonts", "dirs", dirs, "fonts", len(fonts))
	return fonts
}

// matchFamily reports whether family names f, case-insensitively, either
// by family name or by full name ("Go Bold").
func matchFamily(f Font, family string) bool {
	want := cases.Fold().String(family)
	if cases.Fold().String(f.Source.Name()) == want {
		return true
	}
	if parsed := f.Source.Parsed(); parsed != nil {
		return cases.Fold().String(parsed.FullName()) == want
	}
	return false
}

func fontError(p string, err error) error {
	return fmt.Errorf("world: font %q: %w", p, err)
}
