package texture

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
)

// CreateFunc creates a host GPU texture holding width x height RGBA8
// pixels. The returned value should implement gpucontext.TextureUpdater so
// later writes of the same size can update it in place.
type CreateFunc func(width, height int, pixels []byte) (any, error)

// FromCreator adapts a host renderer's texture creator.
func FromCreator(c gpucontext.TextureCreator) CreateFunc {
	return func(width, height int, pixels []byte) (any, error) {
		tex, err := c.NewTextureFromRGBA(width, height, pixels)
		if err != nil {
			return nil, err
		}
		return tex, nil
	}
}

type textureDestroyer interface {
	Destroy()
}

type premultipliedSetter interface {
	SetPremultiplied(bool)
}

// hostTexture links a slot to a GPU texture owned by the host application.
// A bound texture belongs to the caller; a created one belongs to the
// store and is destroyed when replaced or released.
type hostTexture struct {
	bound   gpucontext.TextureUpdater
	created any
}

func (h *hostTexture) texture() any {
	if h.bound != nil {
		return h.bound
	}
	return h.created
}

// upload forwards the slot's pixels. The caller holds slot.mu.
func (h *hostTexture) upload(create CreateFunc, slot *Slot, resized bool) error {
	if h.bound != nil {
		return h.bound.UpdateData(slot.pixels)
	}
	if create == nil {
		return nil
	}

	if h.created != nil && !resized {
		if u, ok := h.created.(gpucontext.TextureUpdater); ok {
			return u.UpdateData(slot.pixels)
		}
	}

	// Recreate on first use, after a resize, or when the texture cannot be
	// updated in place.
	tex, err := create(slot.width, slot.height, slot.pixels)
	if err != nil {
		return err
	}
	if tex == nil {
		return errors.New("texture creator returned nil")
	}
	if ps, ok := tex.(premultipliedSetter); ok {
		ps.SetPremultiplied(slot.alpha == Premultiplied)
	}
	h.destroyCreated()
	h.created = tex
	return nil
}

func (h *hostTexture) destroyCreated() {
	if d, ok := h.created.(textureDestroyer); ok {
		d.Destroy()
	}
	h.created = nil
}

func (h *hostTexture) release() {
	h.destroyCreated()
	h.bound = nil
}

// Bind attaches a host texture to slot h and uploads the current contents.
// The host texture must match the slot's size and format; Bind does not
// check. A texture the store created for the slot earlier is destroyed.
// Passing nil detaches.
func (s *Store) Bind(h Handle, tex gpucontext.TextureUpdater) error {
	slot, ok := s.Get(h)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()

	slot.host.destroyCreated()
	slot.host.bound = tex
	if tex == nil {
		return nil
	}
	if err := tex.UpdateData(slot.pixels); err != nil {
		return fmt.Errorf("%w: %w", ErrHostUpload, err)
	}
	return nil
}
