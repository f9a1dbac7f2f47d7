// Package photo turns captured or uploaded employee portraits into a compact,
// square JPEG data URL suitable for storing in the employee record.
package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	stddraw "image/draw"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultSize     = 512
	DefaultMaxBytes = 10 << 20
	// DefaultMaxPixels bounds the decoded bitmap (4096 x 4096)
	DefaultMaxPixels = 1 << 24

	dataURLPrefix = "data:image/jpeg;base64,"
	jpegQuality   = 85
)

var (
	ErrEmpty       = errors.New("photo payload is empty")
	ErrEncoding    = errors.New("photo payload is not valid base64")
	ErrTooLarge    = errors.New("photo is too large")
	ErrUnsupported = errors.New("photo must be png, jpeg, or webp")
	ErrDecode      = errors.New("unable to decode photo")
)

// Normalize decodes a data URL or bare base64 image, centre-crops it to a
// square, scales it to size x size and returns it as a JPEG data URL
func Normalize(payload string, size int) (string, error) {
	return normalize(payload, size, DefaultMaxBytes, DefaultMaxPixels)
}

func normalize(payload string, size, maxBytes, maxPixels int) (string, error) {
	raw, err := decodePayload(payload, maxBytes)
	if err != nil {
		return "", err
	}

	img, err := decodeImage(raw, maxPixels)
	if err != nil {
		return "", err
	}

	if size <= 0 {
		size = DefaultSize
	}
	resized := scale(cropSquare(img), size)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("unable to encode photo: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(out.Bytes()), nil
}

// decodePayload strips an optional data URL header and decodes the base64 body
func decodePayload(payload string, maxBytes int) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, ErrEncoding
		}
		payload = payload[comma+1:]
	}
	if payload == "" {
		return nil, ErrEmpty
	}
	if maxBytes > 0 && base64.StdEncoding.DecodedLen(len(payload)) > maxBytes {
		return nil, ErrTooLarge
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrEncoding
	}
	if len(raw) == 0 {
		return nil, ErrEmpty
	}
	return raw, nil
}

// decodeImage reads the header first so a small payload declaring huge
// dimensions is rejected before any bitmap is allocated
func decodeImage(raw []byte, maxPixels int) (image.Image, error) {
	switch http.DetectContentType(raw) {
	case "image/png", "image/jpeg", "image/webp":
	default:
		return nil, ErrUnsupported
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrDecode
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, ErrTooLarge
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrDecode
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, ErrDecode
	}
	return img, nil
}

func cropSquare(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	side := min(bounds.Dx(), bounds.Dy())

	origin := image.Point{
		X: bounds.Min.X + (bounds.Dx()-side)/2,
		Y: bounds.Min.Y + (bounds.Dy()-side)/2,
	}
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	stddraw.Draw(dst, dst.Bounds(), img, origin, stddraw.Src)
	return dst
}

func scale(src *image.RGBA, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// Device is a capture device backed by a payload already taken by the client
// camera. Every capture normalises the payload.
type Device struct {
	Payload   string
	Size      int
	MaxBytes  int
	MaxPixels int
}

// Capture returns the normalised photo
func (d Device) Capture(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	maxBytes := d.MaxBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxBytes
	}
	maxPixels := d.MaxPixels
	if maxPixels == 0 {
		maxPixels = DefaultMaxPixels
	}
	return normalize(d.Payload, d.Size, maxBytes, maxPixels)
}
