package texture

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// DefaultFormat is the format used when a job does not ask for one.
const DefaultFormat = gputypes.TextureFormatRGBA8UnormSrgb

// AlphaMode selects how color channels relate to alpha.
type AlphaMode int

const (
	// Premultiplied stores color channels multiplied by alpha.
	Premultiplied AlphaMode = iota
	// Straight stores color channels independent of alpha.
	Straight
)

// String returns the mode name.
func (m AlphaMode) String() string {
	switch m {
	case Premultiplied:
		return "premultiplied"
	case Straight:
		return "straight"
	default:
		return fmt.Sprintf("AlphaMode(%d)", int(m))
	}
}

// Supported reports whether f is a format slots can hold. All supported
// formats use four bytes per pixel.
func Supported(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

func isBGRA(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatBGRA8Unorm || f == gputypes.TextureFormatBGRA8UnormSrgb
}

// Convert converts premultiplied RGBA8 pixels to format and alpha mode,
// appending to dst[:0] so a buffer of sufficient capacity is reused.
//
// The sRGB variants receive the same bytes as their linear counterparts;
// rasterized colors are already sRGB-encoded and the GPU decodes them when
// sampling.
func Convert(dst, src []byte, format gputypes.TextureFormat, alpha AlphaMode) ([]byte, error) {
	if !Supported(format) {
		return dst, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if len(src)%4 != 0 {
		return dst, fmt.Errorf("texture: pixel data length %d is not a multiple of 4", len(src))
	}
	if alpha != Premultiplied && alpha != Straight {
		return dst, fmt.Errorf("texture: unknown alpha mode %v", alpha)
	}

	if cap(dst) < len(src) {
		dst = make([]byte, len(src))
	}
	dst = dst[:len(src)]
	copy(dst, src)

	if alpha == Straight {
		unpremultiply(dst)
	}
	if isBGRA(format) {
		for i := 0; i < len(dst); i += 4 {
			dst[i], dst[i+2] = dst[i+2], dst[i]
		}
	}
	return dst, nil
}

func unpremultiply(p []byte) {
	for i := 0; i < len(p); i += 4 {
		a := uint32(p[i+3])
		switch a {
		case 0:
			p[i], p[i+1], p[i+2] = 0, 0, 0
		case 255:
		default:
			for c := range 3 {
				v := (uint32(p[i+c])*255 + a/2) / a
				p[i+c] = uint8(min(v, 255)) //nolint:gosec // clamped above
			}
		}
	}
}
