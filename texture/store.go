package texture

import (
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/pagetex/internal/logging"
)

// Handle identifies a slot. Handles are indexes into the store and stay
// valid for the store's lifetime.
type Handle int

// InvalidHandle is never returned by Allocate.
const InvalidHandle Handle = -1

// Image is a rasterized result ready to be written into a slot. Pixels are
// premultiplied RGBA8; Format and Alpha name the layout the slot should
// hold afterwards.
type Image struct {
	Width, Height int
	Pixels        []byte
	Format        gputypes.TextureFormat
	Alpha         AlphaMode
}

// Slot is a caller-visible texture. Its contents are replaced in place by
// Store.Write; a *Slot never changes identity.
type Slot struct {
	mu      sync.RWMutex
	width   int
	height  int
	format  gputypes.TextureFormat
	alpha   AlphaMode
	pixels  []byte
	version uint64

	host hostTexture
}

// Size returns the slot dimensions in pixels.
func (s *Slot) Size() (width, height int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// Format returns the pixel format and alpha mode.
func (s *Slot) Format() (gputypes.TextureFormat, AlphaMode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.format, s.alpha
}

// Version is incremented by every write. A fresh slot holding the fallback
// texture has version 0.
func (s *Slot) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Read calls fn with the current pixels. The slice must not be retained
// after fn returns.
func (s *Slot) Read(fn func(width, height int, pixels []byte)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.width, s.height, s.pixels)
}

// Pixels returns a copy of the current pixels.
func (s *Slot) Pixels() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.pixels...)
}

// HostTexture returns the bound or created host texture, or nil.
func (s *Slot) HostTexture() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.host.texture()
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithFallback sets the image new slots start with. pixels are
// premultiplied RGBA8.
func WithFallback(width, height int, pixels []byte) StoreOption {
	return func(s *Store) {
		if width > 0 && height > 0 && len(pixels) == width*height*4 {
			s.fallback = Image{
				Width:  width,
				Height: height,
				Pixels: append([]byte(nil), pixels...),
				Format: DefaultFormat,
			}
		}
	}
}

// WithFallbackColor makes new slots start as a single pixel of c.
func WithFallbackColor(c color.Color) StoreOption {
	r, g, b, a := c.RGBA()
	//nolint:gosec // 16-bit to 8-bit
	return WithFallback(1, 1, []byte{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)})
}

// WithTextureCreator lets the store create host textures for slots that
// have none bound.
func WithTextureCreator(create CreateFunc) StoreOption {
	return func(s *Store) {
		s.create = create
	}
}

// WithStoreLogger sets the logger. Without it the package logger is used.
func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// Store owns result slots.
//
// Store is safe for concurrent use: the control goroutine writes while a
// render loop reads.
type Store struct {
	mu     sync.RWMutex
	slots  []*Slot
	closed bool

	fallback Image
	create   CreateFunc
	logger   *slog.Logger
}

// NewStore creates an empty store. New slots hold a 1x1 magenta fallback
// texture unless WithFallback is given.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		fallback: Image{
			Width:  1,
			Height: 1,
			Pixels: []byte{255, 0, 255, 255},
			Format: DefaultFormat,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.Logger()
}

// Allocate creates a slot holding the fallback texture.
func (s *Store) Allocate() Handle {
	slot := &Slot{}
	slot.reset(s.fallback)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = append(s.slots, slot)
	return Handle(len(s.slots) - 1)
}

// Get returns the slot for h.
func (s *Store) Get(h Handle) (*Slot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h < 0 || int(h) >= len(s.slots) {
		return nil, false
	}
	return s.slots[h], true
}

// Valid reports whether h names an allocated slot.
func (s *Store) Valid(h Handle) bool {
	_, ok := s.Get(h)
	return ok
}

// Len returns the number of allocated slots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}

// Write replaces the contents of slot h with img, converting the pixels to
// img.Format and img.Alpha. The slot's pixel buffer is reused when large
// enough. When a host texture is bound or can be created, the new pixels
// are forwarded to it.
func (s *Store) Write(h Handle, img Image) error {
	if img.Width <= 0 || img.Height <= 0 || len(img.Pixels) != img.Width*img.Height*4 {
		return fmt.Errorf("%w: %dx%d with %d bytes", ErrInvalidImage, img.Width, img.Height, len(img.Pixels))
	}
	if img.Format == gputypes.TextureFormatUndefined {
		img.Format = DefaultFormat
	}
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrStoreClosed
	}
	slot, ok := s.Get(h)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	pixels, err := Convert(slot.pixels, img.Pixels, img.Format, img.Alpha)
	if err != nil {
		return err
	}
	resized := slot.width != img.Width || slot.height != img.Height
	slot.pixels = pixels
	slot.width, slot.height = img.Width, img.Height
	slot.format, slot.alpha = img.Format, img.Alpha
	slot.version++

	if err := slot.host.upload(s.create, slot, resized); err != nil {
		s.log().Warn("texture: host upload failed", "slot", int(h), "error", err)
		return fmt.Errorf("%w: %w", ErrHostUpload, err)
	}
	return nil
}

// Release resets slot h to the fallback texture and destroys any host
// texture the store created for it. The handle stays valid.
func (s *Store) Release(h Handle) error {
	slot, ok := s.Get(h)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	slot.host.release()
	slot.reset(s.fallback)
	return nil
}

// Close destroys every host texture the store created. Later writes fail
// with ErrStoreClosed; slots stay readable.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	slots := s.slots
	s.mu.Unlock()

	for _, slot := range slots {
		slot.mu.Lock()
		slot.host.release()
		slot.mu.Unlock()
	}
	return nil
}

// reset loads the fallback image. The caller holds slot.mu or owns the
// slot exclusively.
func (slot *Slot) reset(fb Image) {
	slot.width, slot.height = fb.Width, fb.Height
	slot.format, slot.alpha = fb.Format, fb.Alpha
	slot.pixels = append(slot.pixels[:0], fb.Pixels...)
	slot.version = 0
}
