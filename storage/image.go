package storage

import (
	"bytes"
	"errors"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

// ErrNotImage is returned when an upload cannot be decoded as an image.
var ErrNotImage = errors.New("upload a valid image")

// PreparedImage is an upload ready to be saved.
type PreparedImage struct {
	Path        string
	Data        []byte
	ContentType string
}

// PrepareImage decodes data, downscales it to at most maxWidth pixels wide and re-encodes it
// in its original format under a fresh "posts/<uuid>.<ext>" path.
func PrepareImage(data []byte, maxWidth uint) (*PreparedImage, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotImage
	}
	if maxWidth > 0 && uint(img.Bounds().Dx()) > maxWidth {
		img = resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	ext, contentType := format, "image/"+format
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		ext, contentType = "jpg", "image/jpeg"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return nil, err
	}
	return &PreparedImage{
		Path:        "posts/" + uuid.NewString() + "." + ext,
		Data:        buf.Bytes(),
		ContentType: contentType,
	}, nil
}
