package texture

import "errors"

var (
	// ErrUnsupportedFormat is returned for texture formats slots cannot hold.
	ErrUnsupportedFormat = errors.New("texture: unsupported format")

	// ErrInvalidHandle is returned for handles the store did not allocate.
	ErrInvalidHandle = errors.New("texture: invalid handle")

	// ErrInvalidImage is returned when pixel data does not match the
	// image dimensions.
	ErrInvalidImage = errors.New("texture: invalid image")

	// ErrHostUpload is returned when forwarding pixels to a host texture
	// fails. The slot itself has been updated.
	ErrHostUpload = errors.New("texture: host texture upload failed")

	// ErrStoreClosed is returned after Close.
	ErrStoreClosed = errors.New("texture: store is closed")
)
