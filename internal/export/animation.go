package export

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
)

// ErrNoFrames is returned when an animation has nothing to encode.
var ErrNoFrames = errors.New("export: no frames")

// EncodeAnimation writes frames as a looping animated WebP, each shown
// for delay.
func EncodeAnimation(w io.Writer, frames []*image.NRGBA, delay time.Duration) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	ms := uint(delay / time.Millisecond)
	ani := &nativewebp.Animation{
		Images:    make([]image.Image, len(frames)),
		Durations: make([]uint, len(frames)),
		Disposals: make([]uint, len(frames)),
	}
	for i, f := range frames {
		ani.Images[i] = f
		ani.Durations[i] = ms
		// Dispose to background so transparent areas don't keep old pixels.
		ani.Disposals[i] = 1
	}
	if err := nativewebp.EncodeAll(w, ani, nil); err != nil {
		return fmt.Errorf("export: encode animation: %w", err)
	}
	return nil
}

// SaveAnimation writes an animated WebP to path.
func SaveAnimation(path string, frames []*image.NRGBA, delay time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("export: mkdir %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	if err := EncodeAnimation(f, frames, delay); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
