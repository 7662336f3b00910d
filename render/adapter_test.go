package render

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/pagetex/archive"
	"github.com/gogpu/pagetex/document"
	"github.com/gogpu/pagetex/world"
)

func standaloneWorld(t *testing.T, doc string, fonts bool) *world.World {
	t.Helper()
	b := archive.Standalone("doc.yaml", []byte(doc))
	return world.NewBuilder(world.FontOptions{Embedded: fonts}).Build(b, nil, nil)
}

const widePage = `
page: {width: 100, height: 50, fill: white}
content:
  - rect: {x: 25, y: 10, width: 50, height: 30, fill: red}
`

func TestAdapterRender(t *testing.T) {
	a := NewAdapter()
	res, err := a.Render(context.Background(), standaloneWorld(t, widePage, false), 0, 256, 256)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Width != 256 || res.Height != 256 {
		t.Errorf("size = %dx%d, want 256x256", res.Width, res.Height)
	}
	if len(res.Pixels) != 256*256*4 {
		t.Fatalf("len(Pixels) = %d, want %d", len(res.Pixels), 256*256*4)
	}
	if res.PageCount != 1 || res.Page != 0 {
		t.Errorf("Page = %d of %d, want 0 of 1", res.Page, res.PageCount)
	}

	px := func(x, y int) [4]byte {
		i := (y*256 + x) * 4
		return [4]byte{res.Pixels[i], res.Pixels[i+1], res.Pixels[i+2], res.Pixels[i+3]}
	}
	// Scale is 2.56: the page covers the top 256x128 band.
	if got := px(0, 0); got != [4]byte{255, 255, 255, 255} {
		t.Errorf("top-left = %v, want opaque white", got)
	}
	for _, c := range [][2]int{{0, 255}, {255, 255}, {128, 200}} {
		if got := px(c[0], c[1]); got[3] != 0 {
			t.Errorf("pixel %v = %v, want transparent", c, got)
		}
	}
	if got := px(128, 64); got[0] < 200 || got[1] > 50 || got[3] != 255 {
		t.Errorf("center = %v, want red", got)
	}
}

func TestAdapterPageOutOfRange(t *testing.T) {
	a := NewAdapter()
	_, err := a.Render(context.Background(), standaloneWorld(t, widePage, false), 5, 64, 64)
	if !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("Render(page 5) error = %v, want ErrPageOutOfRange", err)
	}
	_, err = a.Render(context.Background(), standaloneWorld(t, widePage, false), -1, 64, 64)
	if !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("Render(page -1) error = %v, want ErrPageOutOfRange", err)
	}
}

func TestAdapterSecondPage(t *testing.T) {
	doc := `
page: {width: 10, height: 10}
content:
  - pagebreak: true
  - rect: {width: 100%, height: 100%, fill: blue}
`
	res, err := NewAdapter().Render(context.Background(), standaloneWorld(t, doc, false), 1, 8, 8)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", res.PageCount)
	}
	if b := res.Pixels[2]; b != 255 {
		t.Errorf("blue channel = %d, want 255", b)
	}
}

func TestAdapterCompileError(t *testing.T) {
	_, err := NewAdapter().Render(context.Background(), standaloneWorld(t, "content: [", false), 0, 8, 8)
	if !errors.Is(err, ErrCompile) {
		t.Fatalf("error = %v, want ErrCompile", err)
	}
	var ce *document.CompileError
	if !errors.As(err, &ce) || len(ce.Diagnostics) == 0 {
		t.Errorf("error %v does not carry compiler diagnostics", err)
	}
}

func TestAdapterCompilesEveryCall(t *testing.T) {
	calls := 0
	compiler := CompilerFunc(func(ctx context.Context, w *world.World) (*document.Document, []document.Diagnostic, error) {
		calls++
		return document.NewCompiler().Compile(ctx, w)
	})
	a := NewAdapter(WithCompiler(compiler))
	w := standaloneWorld(t, widePage, false)
	for range 3 {
		if _, err := a.Render(context.Background(), w, 0, 4, 4); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	if calls != 3 {
		t.Errorf("compiler calls = %d, want 3", calls)
	}
}

func TestAdapterInvalidSize(t *testing.T) {
	compiler := CompilerFunc(func(context.Context, *world.World) (*document.Document, []document.Diagnostic, error) {
		t.Error("compiler invoked for invalid size")
		return nil, nil, nil
	})
	a := NewAdapter(WithCompiler(compiler))
	for _, sz := range [][2]int{{0, 10}, {10, 0}, {-1, -1}} {
		if _, err := a.Render(context.Background(), standaloneWorld(t, widePage, false), 0, sz[0], sz[1]); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("Render(%v) error = %v, want ErrInvalidSize", sz, err)
		}
	}
}

type panicRasterizer struct{}

func (panicRasterizer) Rasterize(*document.Page, int, int) (*Target, error) {
	panic("boom")
}

type shortRasterizer struct{}

func (shortRasterizer) Rasterize(*document.Page, int, int) (*Target, error) {
	return NewTarget(1, 1), nil
}

type failingRasterizer struct{}

func (failingRasterizer) Rasterize(*document.Page, int, int) (*Target, error) {
	return nil, errors.New("device lost")
}

func TestAdapterRasterizeErrors(t *testing.T) {
	for name, r := range map[string]Rasterizer{
		"panic":   panicRasterizer{},
		"size":    shortRasterizer{},
		"failure": failingRasterizer{},
	} {
		t.Run(name, func(t *testing.T) {
			a := NewAdapter(WithRasterizer(r))
			_, err := a.Render(context.Background(), standaloneWorld(t, widePage, false), 0, 16, 16)
			if !errors.Is(err, ErrRasterize) {
				t.Errorf("error = %v, want ErrRasterize", err)
			}
		})
	}
}

func TestAdapterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAdapter().Render(ctx, standaloneWorld(t, widePage, false), 0, 8, 8)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
