package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"strings"
)

// ErrNoMask is returned when encoding a mask that was never initialised.
var ErrNoMask = errors.New("no mask data to encode")

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// DecodeError reports a raster that could not be loaded.
type DecodeError struct {
	// Input names the rejected raster, "image" or "mask".
	Input string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Input, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode parses an encoded base image. data may be raw PNG bytes, base64
// PNG, or a data URL.
func Decode(data []byte) (*ImageBuffer, error) {
	raw, err := transportBytes(data)
	if err != nil {
		return nil, &DecodeError{Input: "image", Err: err}
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Input: "image", Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &DecodeError{Input: "image", Err: errors.New("empty raster")}
	}
	return NewImageBuffer(img), nil
}

// DecodeMask parses an encoded mask and checks it matches the image size.
// Empty data yields a blank mask of the requested size.
func DecodeMask(data []byte, width, height int) (*MaskBuffer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return BlankMask(width, height), nil
	}
	raw, err := transportBytes(data)
	if err != nil {
		return nil, &DecodeError{Input: "mask", Err: err}
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Input: "mask", Err: err}
	}
	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return nil, &DecodeError{
			Input: "mask",
			Err:   fmt.Errorf("size %dx%d does not match image %dx%d", b.Dx(), b.Dy(), width, height),
		}
	}
	return maskFrom(img), nil
}

// ParseMask parses an encoded mask on its own, taking the size from the
// data.
func ParseMask(data []byte) (*MaskBuffer, error) {
	raw, err := transportBytes(data)
	if err != nil {
		return nil, &DecodeError{Input: "mask", Err: err}
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Input: "mask", Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &DecodeError{Input: "mask", Err: errors.New("empty raster")}
	}
	return maskFrom(img), nil
}

// Encode serializes m as PNG.
func Encode(m *MaskBuffer) ([]byte, error) {
	if m == nil || m.img == nil || m.img.Rect.Empty() {
		return nil, ErrNoMask
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.img); err != nil {
		return nil, fmt.Errorf("encode mask: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64 serializes m as base64 PNG without a data URL prefix, the form
// the hosting application stores.
func EncodeBase64(m *MaskBuffer) ([]byte, error) {
	raw, err := Encode(m)
	if err != nil {
		return nil, err
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out, nil
}

// transportBytes strips an optional data URL prefix and base64 layer.
func transportBytes(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, pngMagic) {
		return data, nil
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return nil, errors.New("no data")
	}
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx == -1 {
			return nil, errors.New("malformed data URL")
		}
		s = s[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}
	return raw, nil
}
