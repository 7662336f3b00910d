package texture

import (
	"errors"
	"testing"
)

type mockTexture struct {
	width, height int
	uploads       int
	data          []byte
	destroyed     bool
	premultiplied bool
	fail          error
}

func (m *mockTexture) UpdateData(data []byte) error {
	if m.fail != nil {
		return m.fail
	}
	m.uploads++
	m.data = append(m.data[:0], data...)
	return nil
}

func (m *mockTexture) Destroy()                 { m.destroyed = true }
func (m *mockTexture) SetPremultiplied(on bool) { m.premultiplied = on }

type mockCreator struct {
	created []*mockTexture
}

func (c *mockCreator) create(w, h int, data []byte) (any, error) {
	tex := &mockTexture{width: w, height: h, data: append([]byte(nil), data...)}
	c.created = append(c.created, tex)
	return tex, nil
}

func TestWriteCreatesHostTexture(t *testing.T) {
	mc := &mockCreator{}
	s := NewStore(WithTextureCreator(mc.create))
	h := s.Allocate()

	if err := s.Write(h, solid(2, 2, 9, 9, 9, 255)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(mc.created) != 1 {
		t.Fatalf("created %d textures, want 1", len(mc.created))
	}
	first := mc.created[0]
	if first.width != 2 || !first.premultiplied {
		t.Errorf("created texture = %+v", first)
	}

	// Same size: updated in place.
	if err := s.Write(h, solid(2, 2, 7, 7, 7, 255)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(mc.created) != 1 || first.uploads != 1 || first.data[0] != 7 {
		t.Errorf("same-size write: created=%d uploads=%d", len(mc.created), first.uploads)
	}

	// New size: recreated, old one destroyed.
	if err := s.Write(h, solid(3, 1, 5, 5, 5, 255)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(mc.created) != 2 || !first.destroyed {
		t.Errorf("resize: created=%d, first destroyed=%v", len(mc.created), first.destroyed)
	}
	slot, _ := s.Get(h)
	if slot.HostTexture() != mc.created[1] {
		t.Error("HostTexture() is not the recreated texture")
	}

	_ = s.Close()
	if !mc.created[1].destroyed {
		t.Error("Close did not destroy created texture")
	}
}

func TestBind(t *testing.T) {
	s := NewStore()
	h := s.Allocate()
	tex := &mockTexture{}
	if err := s.Bind(h, tex); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if tex.uploads != 1 || len(tex.data) != 4 {
		t.Errorf("Bind uploads=%d len=%d, want fallback upload", tex.uploads, len(tex.data))
	}
	if err := s.Write(h, solid(1, 1, 3, 3, 3, 255)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if tex.uploads != 2 || tex.data[0] != 3 {
		t.Errorf("write not forwarded: uploads=%d", tex.uploads)
	}
	_ = s.Close()
	if tex.destroyed {
		t.Error("Close destroyed a caller-owned texture")
	}
}

func TestBindUploadFailure(t *testing.T) {
	s := NewStore()
	h := s.Allocate()
	boom := errors.New("device lost")
	tex := &mockTexture{fail: boom}
	if err := s.Bind(h, tex); !errors.Is(err, ErrHostUpload) || !errors.Is(err, boom) {
		t.Errorf("Bind error = %v, want ErrHostUpload wrapping cause", err)
	}
	err := s.Write(h, solid(1, 1, 1, 1, 1, 255))
	if !errors.Is(err, ErrHostUpload) {
		t.Errorf("Write error = %v, want ErrHostUpload", err)
	}
	slot, _ := s.Get(h)
	if slot.Version() != 1 {
		t.Error("slot not updated when host upload failed")
	}
	if err := s.Bind(Handle(3), tex); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Bind(bad) error = %v", err)
	}
}
