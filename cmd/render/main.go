package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"mmd-renderer/internal/batch"
	"mmd-renderer/internal/config"
	"mmd-renderer/internal/export"
	"mmd-renderer/internal/game"
)

type Result = batch.Result

func main() {
	configPath := flag.StringP("config", "c", "", "Path to config file (.yaml or .json)")
	gameDir := flag.StringP("game", "g", "", "Game directory containing the executable and CHDAT")
	outputDir := flag.StringP("output", "o", "", "Output directory for rendered animations")
	format := flag.StringP("format", "f", "", "Output format: webp, png or tga")
	workers := flag.IntP("workers", "w", 0, "Number of parallel workers")
	characters := flag.IntSlice("characters", nil, "Character indices to render (default all)")
	verbose := flag.BoolP("verbose", "v", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	var cfg config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		GameDir:    *gameDir,
		OutputDir:  *outputDir,
		Format:     *format,
		Workers:    *workers,
		Characters: *characters,
	})

	if cfg.GameDir == "" {
		fmt.Fprintf(os.Stderr, "Error: game directory not found; pass --game or set game_dir in the config\n")
		os.Exit(1)
	}
	outFormat, err := export.ParseFormat(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	data, err := game.Read(cfg.GameDir, cfg.GameInfo())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading game data: %v\n", err)
		os.Exit(1)
	}

	var chars []game.Character
	for _, ch := range data.Characters {
		if cfg.Wants(ch.Index) {
			chars = append(chars, ch)
		}
	}

	fmt.Printf("Game:       %s\n", cfg.GameDir)
	fmt.Printf("Output:     %s (%s)\n", cfg.OutputDir, outFormat)
	fmt.Printf("Characters: %d of %d\n", len(chars), len(data.Characters))
	fmt.Printf("Render:     %dpx x%d supersample, %d workers\n", cfg.RenderSize, cfg.Supersample, cfg.Workers)
	fmt.Println("------")

	start := time.Now()
	results := batch.Run(batch.Config{
		GameDir:      cfg.GameDir,
		OutputDir:    cfg.OutputDir,
		Format:       outFormat,
		RenderSize:   cfg.RenderSize,
		Supersample:  cfg.Supersample,
		Margin:       cfg.Margin,
		Crop:         cfg.Crop,
		Yaw:          cfg.Yaw,
		Pitch:        cfg.Pitch,
		TickInterval: cfg.TickInterval(),
		MaxFrames:    cfg.MaxFrames,
		Workers:      cfg.Workers,
	}, chars)
	elapsed := time.Since(start)

	success, failed, clips := 0, 0, 0
	var errs []Result
	for _, r := range results {
		if r.Success {
			success++
			clips += len(r.Animations)
		} else {
			failed++
			errs = append(errs, r)
		}
	}

	fmt.Println("------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())
	fmt.Printf("Success: %d (%d animations)\n", success, clips)
	fmt.Printf("Failed:  %d\n", failed)
	for i, r := range errs {
		if i == 20 {
			fmt.Printf("  ... and %d more\n", len(errs)-20)
			break
		}
		fmt.Printf("  [%03d] %s: %s\n", r.Index, r.Name, r.Error)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output dir: %v\n", err)
		os.Exit(1)
	}
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing manifest: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Manifest: %s\n", manifestPath)

	if failed > 0 {
		os.Exit(1)
	}
}
