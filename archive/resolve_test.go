package archive

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// methodCustom is a compression method no reader registers.
const methodCustom = 99

type zipFile struct {
	name   string
	body   string
	method uint16
	flags  uint16
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func makeZip(t *testing.T, files ...zipFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	w.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())
	w.RegisterCompressor(methodCustom, func(out io.Writer) (io.WriteCloser, error) {
		return nopWriteCloser{out}, nil
	})
	for _, f := range files {
		method := f.method
		if method == 0 {
			method = zip.Deflate
		}
		fw, err := w.CreateHeader(&zip.FileHeader{Name: f.name, Method: method, Flags: f.flags})
		if err != nil {
			t.Fatalf("CreateHeader(%q): %v", f.name, err)
		}
		if _, err := fw.Write([]byte(f.body)); err != nil {
			t.Fatalf("Write(%q): %v", f.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

const mainDoc = "page: {width: 10, height: 10}\n"

func TestResolve(t *testing.T) {
	data := makeZip(t,
		zipFile{name: "main.yaml", body: mainDoc},
		zipFile{name: "parts/header.yaml", body: "content: []"},
		zipFile{name: "fonts/", body: ""},
	)
	b, err := Resolve(data)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if b.Standalone {
		t.Error("Standalone = true, want false")
	}
	if got := string(b.Main()); got != mainDoc {
		t.Errorf("Main() = %q, want %q", got, mainDoc)
	}
	want := []string{"main.yaml", "parts/header.yaml"}
	got := b.Paths()
	if len(got) != len(want) {
		t.Fatalf("Paths() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Paths()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if b.Manifest == nil {
		t.Fatal("Manifest is nil, want empty manifest")
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name  string
		files []zipFile
		raw   []byte
		want  error
	}{
		{
			name: "not a zip",
			raw:  []byte("definitely not a zip archive"),
			want: ErrCorrupt,
		},
		{
			name:  "missing main",
			files: []zipFile{{name: "other.yaml", body: mainDoc}},
			want:  ErrMissingMainDocument,
		},
		{
			name: "parent traversal",
			files: []zipFile{
				{name: "main.yaml", body: mainDoc},
				{name: "../secret", body: "x"},
			},
			want: ErrPathTraversal,
		},
		{
			name: "nested traversal",
			files: []zipFile{
				{name: "main.yaml", body: mainDoc},
				{name: "a/../../secret", body: "x"},
			},
			want: ErrPathTraversal,
		},
		{
			name: "absolute path",
			files: []zipFile{
				{name: "main.yaml", body: mainDoc},
				{name: "/etc/passwd", body: "x"},
			},
			want: ErrPathTraversal,
		},
		{
			name: "drive letter",
			files: []zipFile{
				{name: "main.yaml", body: mainDoc},
				{name: `C:\Windows\win.ini`, body: "x"},
			},
			want: ErrPathTraversal,
		},
		{
			name: "malformed manifest",
			files: []zipFile{
				{name: "main.yaml", body: mainDoc},
				{name: "package.toml", body: "name = = broken ["},
			},
			want: ErrMalformedManifest,
		},
		{
			name: "manifest wrong type",
			files: []zipFile{
				{name: "main.yaml", body: mainDoc},
				{name: "package.toml", body: "authors = 42"},
			},
			want: ErrMalformedManifest,
		},
		{
			name: "asset requests scalar",
			files: []zipFile{
				{name: "main.yaml", body: mainDoc},
				{name: "package.toml", body: `asset_requests = "logo.png"`},
			},
			want: ErrMalformedManifest,
		},
		{
			name: "asset requests list of numbers",
			files: []zipFile{
				{name: "main.yaml", body: mainDoc},
				{name: "package.toml", body: "asset_requests = [1, 2]"},
			},
			want: ErrMalformedManifest,
		},
		{
			name: "asset requests non-string hint",
			files: []zipFile{
				{name: "main.yaml", body: mainDoc},
				{name: "package.toml", body: "[asset_requests]\n\"logo.png\" = 3\n"},
			},
			want: ErrMalformedManifest,
		},
		{
			name: "unknown compression",
			files: []zipFile{
				{name: "main.yaml", body: mainDoc, method: methodCustom},
			},
			want: ErrUnsupported,
		},
		{
			name: "encrypted entry",
			files: []zipFile{
				{name: "main.yaml", body: mainDoc, flags: flagEncrypted},
			},
			want: ErrUnsupported,
		},
		{
			name: "duplicate after normalization",
			files: []zipFile{
				{name: "main.yaml", body: mainDoc},
				{name: "a/b.txt", body: "1"},
				{name: `a\b.txt`, body: "2"},
			},
			want: ErrCorrupt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.raw
			if data == nil {
				data = makeZip(t, tt.files...)
			}
			b, err := Resolve(data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.want)
			}
			if b != nil {
				t.Errorf("Resolve() returned bundle %v alongside error", b.Paths())
			}
		})
	}
}

func TestResolveCleansInnerParent(t *testing.T) {
	data := makeZip(t, zipFile{name: "fonts/../main.yaml", body: mainDoc})
	b, err := Resolve(data)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := string(b.Main()); got != mainDoc {
		t.Errorf("Main() = %q, want %q", got, mainDoc)
	}
}

func TestResolveSkipsMetadata(t *testing.T) {
	data := makeZip(t,
		zipFile{name: "main.yaml", body: mainDoc},
		zipFile{name: "__MACOSX/._main.yaml", body: "fork"},
		zipFile{name: ".DS_Store", body: "junk"},
		zipFile{name: "images/._logo.png", body: "fork"},
		zipFile{name: "images/Thumbs.db", body: "junk"},
		zipFile{name: "images/logo.png", body: "png"},
	)
	b, err := Resolve(data)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (paths %v)", b.Len(), b.Paths())
	}
	if _, ok := b.ReadFile("images/logo.png"); !ok {
		t.Error("images/logo.png missing")
	}
}

func TestResolveStripsWrappingDirectory(t *testing.T) {
	data := makeZip(t,
		zipFile{name: "project/main.yaml", body: mainDoc},
		zipFile{name: "project/data/values.json", body: "{}"},
		zipFile{name: "__MACOSX/project/._main.yaml", body: "fork"},
	)
	b, err := Resolve(data)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := b.ReadFile("data/values.json"); !ok {
		t.Errorf("data/values.json missing, paths %v", b.Paths())
	}
}

func TestResolveKeepsNestedMainWhenRootHasMain(t *testing.T) {
	data := makeZip(t,
		zipFile{name: "main.yaml", body: mainDoc},
		zipFile{name: "sub/main.yaml", body: "other"},
	)
	b, err := Resolve(data)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := string(b.Main()); got != mainDoc {
		t.Errorf("Main() = %q, want root document", got)
	}
}

func TestResolveZstd(t *testing.T) {
	data := makeZip(t,
		zipFile{name: "main.yaml", body: mainDoc, method: zstd.ZipMethodWinZip},
	)
	b, err := Resolve(data)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := string(b.Main()); got != mainDoc {
		t.Errorf("Main() = %q, want %q", got, mainDoc)
	}
}

func TestResolveManifest(t *testing.T) {
	manifest := `
name = "Badge"
authors = ["Ada", "Grace"]
unknown_key = true
package_requests = ["@preview/cetz:0.3.0"]

[asset_requests]
"images/logo.png" = "image"
"fonts/Inter.otf" = "font"
`
	data := makeZip(t,
		zipFile{name: "main.yaml", body: mainDoc},
		zipFile{name: "package.toml", body: manifest},
	)
	b, err := Resolve(data)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	m := b.Manifest
	if m.Name != "Badge" {
		t.Errorf("Name = %q, want Badge", m.Name)
	}
	if len(m.Authors) != 2 || m.Authors[1] != "Grace" {
		t.Errorf("Authors = %v, want [Ada Grace]", m.Authors)
	}
	if got := m.AssetRequests["fonts/Inter.otf"]; got != HintFont {
		t.Errorf("AssetRequests[fonts/Inter.otf] = %q, want %q", got, HintFont)
	}
	if len(m.PackageRequests) != 1 {
		t.Errorf("PackageRequests = %v, want one entry", m.PackageRequests)
	}
}

func TestResolveManifestAssetList(t *testing.T) {
	manifest := `
name = "Badge"
asset_requests = ["images/logo.png", "fonts/Inter.otf"]
`
	data := makeZip(t,
		zipFile{name: "main.yaml", body: mainDoc},
		zipFile{name: "package.toml", body: manifest},
	)
	b, err := Resolve(data)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got := b.Manifest.AssetRequests
	if len(got) != 2 {
		t.Fatalf("AssetRequests = %v, want 2 entries", got)
	}
	for _, p := range []string{"images/logo.png", "fonts/Inter.otf"} {
		hint, ok := got[p]
		if !ok {
			t.Errorf("AssetRequests missing %q", p)
		} else if hint != "" {
			t.Errorf("AssetRequests[%q] = %q, want empty hint", p, hint)
		}
	}
}

func TestResolveManifestDefaults(t *testing.T) {
	data := makeZip(t,
		zipFile{name: "main.yaml", body: mainDoc},
		zipFile{name: "package.toml", body: ""},
	)
	b, err := Resolve(data)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if b.Manifest.Name != "" || len(b.Manifest.Authors) != 0 {
		t.Errorf("Manifest = %+v, want zero value", b.Manifest)
	}
}

func TestStandalone(t *testing.T) {
	b := Standalone("card.yaml", []byte(mainDoc))
	if !b.Standalone {
		t.Error("Standalone = false, want true")
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
	if b.Name != "card.yaml" {
		t.Errorf("Name = %q, want card.yaml", b.Name)
	}
}

func TestNewBundle(t *testing.T) {
	b, err := NewBundle("inline", map[string][]byte{
		"main.yaml":      []byte(mainDoc),
		`parts\a.yaml`:   []byte("content: []"),
		"./parts/b.yaml": []byte("content: []"),
	})
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	for _, p := range []string{"parts/a.yaml", "parts/b.yaml"} {
		if _, ok := b.ReadFile(p); !ok {
			t.Errorf("%s missing, paths %v", p, b.Paths())
		}
	}

	if _, err := NewBundle("bad", map[string][]byte{"doc.yaml": nil}); !errors.Is(err, ErrMissingMainDocument) {
		t.Errorf("NewBundle without main error = %v, want ErrMissingMainDocument", err)
	}
}
