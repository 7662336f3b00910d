package document

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG

	"github.com/gogpu/gg"
	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// decodeImage decodes any registered raster format.
func decodeImage(data []byte) (*gg.ImageBuf, image.Point, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, image.Point{}, fmt.Errorf("decode image: empty %s image", format)
	}
	return gg.ImageBufFromImage(img), b.Size(), nil
}
