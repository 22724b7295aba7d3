package texture

import (
	"fmt"

	"mmd-renderer/internal/cursor"
	"mmd-renderer/internal/readfile"
	"mmd-renderer/internal/tim"
)

// LoadTIM reads the TIM file at path. Compressed copies are found through
// readfile.Resolve.
func LoadTIM(path string) (*tim.Image, error) {
	data, err := readfile.Read(readfile.Resolve(path))
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	img, err := tim.Decode(cursor.New(data))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return img, nil
}

// LoadStrided decodes count TIM images laid out every stride bytes in the
// file at path. Slots that fail to decode are returned as nil.
func LoadStrided(path string, stride, count int) ([]*tim.Image, error) {
	data, err := readfile.Read(readfile.Resolve(path))
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	out := make([]*tim.Image, count)
	for i := range out {
		off := i * stride
		if off >= len(data) {
			break
		}
		img, err := tim.Decode(cursor.New(data[off:]))
		if err != nil {
			continue
		}
		out[i] = img
	}
	return out, nil
}

// ScanFile finds every TIM image embedded in the file at path.
func ScanFile(path string) ([]tim.Found, error) {
	data, err := readfile.Read(readfile.Resolve(path))
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	return tim.Scan(data), nil
}
