package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"mmd-renderer/internal/export"
	"mmd-renderer/internal/game"
	"mmd-renderer/internal/texture"
	"mmd-renderer/internal/tim"
)

type entry struct {
	name  string
	image *tim.Image
}

func dumpImage(outDir string, format export.Format, upscale int, e entry) (int, error) {
	written := 0
	for i, px := range e.image.GenerateAll() {
		if px.Empty() {
			slog.Debug("texdump: empty palette", "image", e.name, "palette", i)
			continue
		}
		name := fmt.Sprintf("%s_p%02d%s", e.name, i, format.Ext())
		dst := filepath.Join(outDir, name)
		if err := export.Save(dst, export.Upscale(px.NRGBA(), upscale)); err != nil {
			return written, fmt.Errorf("write %s: %w", dst, err)
		}
		written++
	}
	fmt.Printf("OK  %s  %dx%d %dbpp page=%d -> %d file(s)\n",
		e.name, e.image.Width(), e.image.Height(), e.image.BPP(), e.image.Page(), written)
	return written, nil
}

func main() {
	outDir := flag.StringP("output", "o", "textures", "Output directory")
	format := flag.StringP("format", "f", "png", "Output format: png, webp or tga")
	upscale := flag.IntP("upscale", "u", 1, "Integer upscale factor")
	scan := flag.Bool("scan", false, "Search the file for embedded TIM images")
	alltim := flag.Bool("alltim", false, "Treat the argument as a game directory and dump the character archive")
	verbose := flag.BoolP("verbose", "v", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: texdump [flags] FILE|GAMEDIR\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	outFormat, err := export.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	src := flag.Arg(0)
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	var entries []entry
	switch {
	case *alltim:
		data, err := game.Read(src, game.SLUS01032)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, ch := range data.Characters {
			if ch.Texture == nil {
				continue
			}
			entries = append(entries, entry{name: fmt.Sprintf("%03d_%s", ch.Index, ch.FileName), image: ch.Texture})
		}
	case *scan:
		found, err := texture.ScanFile(src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, f := range found {
			entries = append(entries, entry{name: fmt.Sprintf("%s_%08x", base, f.Offset), image: f.Image})
		}
	default:
		img, err := texture.LoadTIM(src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		entries = append(entries, entry{name: base, image: img})
	}

	errors, total := 0, 0
	for _, e := range entries {
		n, err := dumpImage(*outDir, outFormat, *upscale, e)
		total += n
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERR %s: %v\n", e.name, err)
			errors++
		}
	}
	if errors > 0 {
		fmt.Printf("\nDone with %d error(s).\n", errors)
		os.Exit(1)
	}
	fmt.Printf("\nDone. %d image(s), %d file(s) written to %s.\n", len(entries), total, *outDir)
}
