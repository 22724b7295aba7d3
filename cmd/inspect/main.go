package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"gonum.org/v1/gonum/spatial/r3"

	"mmd-renderer/internal/cursor"
	"mmd-renderer/internal/mmd"
	"mmd-renderer/internal/readfile"
	"mmd-renderer/internal/scene"
	"mmd-renderer/internal/texture"
	"mmd-renderer/internal/tmd"
)

func main() {
	bones := flag.IntP("bones", "b", 0, "Bone count used to decode animations (0 skips them)")
	anim := flag.IntP("anim", "a", -1, "Print the instruction listing of one animation")
	texPath := flag.StringP("texture", "t", "", "TIM file used to resolve textured materials")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: inspect [flags] FILE.MMD|FILE.TMD\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	data, err := readfile.Read(readfile.Resolve(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	idx := texture.NewIndex()
	if *texPath != "" {
		img, err := texture.LoadTIM(*texPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		idx.Add(img)
	}
	cv := &scene.Converter{Textures: idx}

	ext := strings.ToUpper(filepath.Ext(strings.TrimSuffix(path, ".zst")))
	if ext == ".TMD" {
		model, err := tmd.Decode(cursor.New(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printModel(model, cv)
		return
	}

	f, err := mmd.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Header: model @ %#x, animations @ %#x\n", f.Header.TMDOffset, f.Header.AnimationsOffset)
	printModel(f.Model, cv)
	fmt.Printf("Animation slots: %d\n", f.Animations.Count())

	if *bones <= 0 {
		return
	}
	anims, err := f.Animations.Decode(*bones)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, a := range anims {
		counts := map[string]int{}
		for _, ins := range a.Instructions {
			counts[kind(ins)]++
		}
		fmt.Printf("  Anim[%02d]: frames=%d scale=%v instructions=%d keyframes=%d loops=%d blits=%d sounds=%d\n",
			a.ID, a.FrameCount, a.HasScale, len(a.Instructions),
			counts["keyframe"], counts["loop"], counts["blit"], counts["sound"])
	}
	if *anim >= 0 {
		if *anim >= len(anims) {
			fmt.Fprintf(os.Stderr, "Error: animation %d of %d\n", *anim, len(anims))
			os.Exit(1)
		}
		mmd.Write(os.Stdout, &anims[*anim])
	}
}

func kind(ins mmd.Instruction) string {
	switch ins.(type) {
	case mmd.Keyframe:
		return "keyframe"
	case mmd.LoopStart, mmd.LoopEnd:
		return "loop"
	case mmd.TextureBlit:
		return "blit"
	case mmd.PlaySound:
		return "sound"
	}
	return "other"
}

func printModel(m *tmd.Model, cv *scene.Converter) {
	fmt.Printf("Objects: %d\n", len(m.Objects))
	for i := range m.Objects {
		o := &m.Objects[i]
		byCode := map[tmd.Code]int{}
		textured := 0
		for _, p := range o.Primitives {
			byCode[p.Code()]++
			if poly, ok := p.(*tmd.Polygon); ok && poly.Textured() {
				textured++
			}
		}
		fmt.Printf("  Object[%d]: verts=%d normals=%d polygons=%d (textured %d) lines=%d sprites=%d skipped=%d\n",
			i, len(o.Vertices), len(o.Normals),
			byCode[tmd.CodePolygon], textured, byCode[tmd.CodeLine], byCode[tmd.CodeSprite], o.Skipped)
		if len(o.Vertices) > 0 {
			printBox("    ", o.Bounds())
		}
		if mesh := cv.Convert(o); !mesh.Empty() {
			fmt.Printf("    Mesh: triangles=%d groups=%d materials=%d\n", mesh.TriangleCount(), len(mesh.Groups), len(mesh.Materials))
		}
	}
	printBox("", m.Bounds())
	if n := cv.Textures.Len(); n > 0 {
		fmt.Printf("Textures: %d image(s), %d atlas(es) resolved\n", n, len(cv.Textures.Atlases()))
	}
}

func printBox(indent string, b r3.Box) {
	size := r3.Sub(b.Max, b.Min)
	fmt.Printf("%sBBox: X[%.0f, %.0f] Y[%.0f, %.0f] Z[%.0f, %.0f]\n", indent, b.Min.X, b.Max.X, b.Min.Y, b.Max.Y, b.Min.Z, b.Max.Z)
	fmt.Printf("%sSize: %.0f x %.0f x %.0f\n", indent, size.X, size.Y, size.Z)
}
