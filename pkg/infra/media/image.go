package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes jpeg, png, gif or webp bytes.
func DecodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty image", moderation.ErrDecode)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", moderation.ErrDecode, err)
	}
	return img, format, nil
}

// EncodePNG is the wire format used to ship images and frames to classifiers.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", moderation.ErrDecode, err)
	}
	return buf.Bytes(), nil
}
