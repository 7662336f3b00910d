package archive

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// metadataDirs are directories created by operating systems while zipping
// or browsing a folder. Nothing under them belongs to the project.
var metadataDirs = []string{
	"__MACOSX",
	".Trashes",
	".Spotlight-V100",
	".fseventsd",
	".TemporaryItems",
	"$RECYCLE.BIN",
}

// metadataFiles are bookkeeping files matched by base name.
var metadataFiles = map[string]struct{}{
	".DS_Store":   {},
	"Thumbs.db":   {},
	"desktop.ini": {},
	"Icon\r":      {},
}

// NormalizePath converts an archive entry name into a bundle path.
//
// Backslashes become forward slashes, the name is NFC-normalized (macOS
// archivers store decomposed names) and cleaned. Absolute names, drive
// letters and names that still climb above the root once cleaned return
// ErrPathTraversal; "fonts/../main.yaml" is simply "main.yaml".
// Directory entries keep no trailing slash.
func NormalizePath(name string) (string, error) {
	p := strings.ReplaceAll(name, "\\", "/")
	p = norm.NFC.String(p)

	if strings.HasPrefix(p, "/") || hasDriveLetter(p) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}
	p = path.Clean(p)
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}
	if p == "." {
		return "", nil
	}
	return p, nil
}

// IsMetadata reports whether a normalized path is OS bookkeeping rather
// than project content.
func IsMetadata(p string) bool {
	segs := strings.Split(p, "/")
	for _, seg := range segs {
		for _, dir := range metadataDirs {
			if seg == dir {
				return true
			}
		}
	}
	base := segs[len(segs)-1]
	if _, ok := metadataFiles[base]; ok {
		return true
	}
	// AppleDouble resource forks.
	return strings.HasPrefix(base, "._")
}

func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// commonRoot returns the single top-level directory shared by every path,
// or "" if the paths do not share one.
func commonRoot(paths []string) string {
	root := ""
	for _, p := range paths {
		dir, _, found := strings.Cut(p, "/")
		if !found {
			return ""
		}
		if root == "" {
			root = dir
		} else if dir != root {
			return ""
		}
	}
	return root
}
