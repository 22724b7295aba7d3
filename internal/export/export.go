// Package export writes rendered frames and textures to disk.
package export

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/ftrvxmtrx/tga"
)

// Format is an output image format.
type Format string

const (
	WebP Format = "webp"
	PNG  Format = "png"
	TGA  Format = "tga"
)

// ParseFormat accepts a format name or file extension, case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(s), ".")); f {
	case WebP, PNG, TGA:
		return f, nil
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

// Ext returns the file extension with a leading dot.
func (f Format) Ext() string { return "." + string(f) }

// Encoder returns the still image encoder for f.
func Encoder(f Format) (imgio.Encoder, error) {
	switch f {
	case WebP:
		return func(w io.Writer, img image.Image) error {
			return nativewebp.Encode(w, img, nil)
		}, nil
	case PNG:
		return imgio.PNGEncoder(), nil
	case TGA:
		return tga.Encode, nil
	}
	return nil, fmt.Errorf("export: unknown format %q", f)
}

// Save writes img to path in the format named by its extension, creating
// parent directories.
func Save(path string, img image.Image) error {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	enc, err := Encoder(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("export: mkdir %s: %w", path, err)
	}
	if err := imgio.Save(path, img, enc); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}
