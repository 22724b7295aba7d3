package texture

import (
	"log/slog"

	"mmd-renderer/internal/tim"
)

// Key identifies one generated texture: a VRAM page seen through one CLUT
// row at a given depth.
type Key struct {
	Page  int
	BPP   int
	ClutX int
	ClutY int
}

// Index maps VRAM texture pages to the TIM images uploaded there and
// generates an atlas per distinct Key on first use.
// Later images win when several share a page.
type Index struct {
	images  []*tim.Image
	entries map[cacheKey]*tim.Atlas
}

// cacheKey omits ClutX: a texture is generated once per page, depth and
// CLUT row.
type cacheKey struct {
	page, bpp, clutY int
}

// NewIndex builds an index over images in upload order.
func NewIndex(images ...*tim.Image) *Index {
	return &Index{
		images:  images,
		entries: make(map[cacheKey]*tim.Atlas),
	}
}

// Add appends images after the existing ones.
func (idx *Index) Add(images ...*tim.Image) {
	idx.images = append(idx.images, images...)
}

// Lookup returns the atlas for k, or nil when no image occupies the page
// or the image yields no pixels.
func (idx *Index) Lookup(k Key) *tim.Atlas {
	ck := cacheKey{k.Page, k.BPP, k.ClutY}
	if a, ok := idx.entries[ck]; ok {
		return a
	}

	img := idx.find(k.Page)
	if img == nil {
		slog.Debug("texture: no image for page", "page", k.Page)
		return nil
	}
	px := img.GenerateCLUT(k.ClutX*16, k.ClutY)
	if px.Empty() {
		slog.Debug("texture: empty image", "page", k.Page, "clut_x", k.ClutX, "clut_y", k.ClutY)
		return nil
	}
	a := tim.NewAtlas(px.NRGBA())
	idx.entries[ck] = a
	return a
}

func (idx *Index) find(page int) *tim.Image {
	for i := len(idx.images) - 1; i >= 0; i-- {
		if idx.images[i].Page() == page {
			return idx.images[i]
		}
	}
	return nil
}

// Atlases returns every atlas generated so far.
func (idx *Index) Atlases() []*tim.Atlas {
	out := make([]*tim.Atlas, 0, len(idx.entries))
	for _, a := range idx.entries {
		out = append(out, a)
	}
	return out
}

// Len returns the number of indexed images.
func (idx *Index) Len() int {
	return len(idx.images)
}
