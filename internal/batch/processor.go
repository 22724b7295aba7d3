package batch

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/term"

	"mmd-renderer/internal/export"
	"mmd-renderer/internal/game"
	"mmd-renderer/internal/mmd"
	"mmd-renderer/internal/player"
	"mmd-renderer/internal/postprocess"
	"mmd-renderer/internal/raster"
	"mmd-renderer/internal/skeleton"
	"mmd-renderer/internal/texture"
)

// Config holds all shared settings for a batch run.
type Config struct {
	GameDir      string
	OutputDir    string
	Format       export.Format
	RenderSize   int
	Supersample  int
	Margin       int
	Crop         bool
	Yaw          float32
	Pitch        float32
	TickInterval time.Duration
	MaxFrames    int
	Workers      int
}

// Result holds the outcome of processing one character.
type Result struct {
	Index       int
	Name        string
	DisplayName string
	Bones       int
	Animations  []AnimationResult
	Success     bool
	Error       string
}

// AnimationResult describes one exported animation.
type AnimationResult struct {
	ID       int
	Frames   int
	Finished bool
	File     string
}

// Run renders every character's animations using a worker pool.
func Run(cfg Config, chars []game.Character) []Result {
	total := len(chars)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter, terminals only
	done := make(chan struct{})
	if term.IsTerminal(int(os.Stdout.Fd())) {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						rate := float64(p) / elapsed
						fmt.Printf("  [%d/%d] %.1f characters/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	workers := max(cfg.Workers, 1)
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = processCharacter(cfg, &chars[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range chars {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results
}

func processCharacter(cfg Config, ch *game.Character) Result {
	res := Result{
		Index:       ch.Index,
		Name:        ch.FileName,
		DisplayName: ch.Info.Name,
		Bones:       len(ch.Skeleton),
	}

	f, err := mmd.Load(ch.MMDPath(cfg.GameDir))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	model, err := skeleton.Load(ch, f)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	dir := filepath.Join(cfg.OutputDir, fmt.Sprintf("%03d_%s", ch.Index, ch.FileName))
	cache := texture.NewCache()
	for i := range model.Animations {
		anim := &model.Animations[i]
		if len(anim.Instructions) == 0 {
			continue
		}
		ar, err := renderAnimation(cfg, model, anim, cache, dir)
		if err != nil {
			res.Error = fmt.Sprintf("animation %d: %v", anim.ID, err)
			return res
		}
		res.Animations = append(res.Animations, ar)
	}

	res.Success = true
	return res
}

// renderAnimation plays anim headlessly, rasterizing every stepped frame.
// The camera is fitted to the initial pose and kept for the whole clip.
func renderAnimation(cfg Config, model *skeleton.Character, anim *mmd.Animation, cache *texture.Cache, dir string) (AnimationResult, error) {
	ar := AnimationResult{ID: anim.ID}
	lc := raster.DefaultLightConfig()
	ss := max(cfg.Supersample, 1)

	p := player.New(model)
	p.Start(anim)
	cam := raster.FitCamera(model.Root, cfg.Yaw, cfg.Pitch, cfg.RenderSize, cfg.Margin).Scaled(ss)

	var frames []*image.NRGBA
	p.Hooks.Stepped = func(int) {
		img := raster.Render(model.Root, cam, cache, &lc)
		frames = append(frames, postprocess.Downsample(img, ss))
	}
	p.Hooks.Finished = func() { ar.Finished = true }
	for n := 0; n < cfg.MaxFrames; n++ {
		if !p.Tick() {
			break
		}
	}
	ar.Frames = len(frames)
	slog.Debug("batch: animation played", "character", model.Name, "anim", anim.ID,
		"frames", ar.Frames, "finished", ar.Finished, "uploads", cache.Uploads())

	if cfg.Crop {
		frames = postprocess.CropFrames(frames, cfg.Margin)
	}

	name := fmt.Sprintf("anim%02d", anim.ID)
	if cfg.Format == export.WebP {
		ar.File = filepath.Join(dir, name+".webp")
		return ar, export.SaveAnimation(ar.File, frames, cfg.TickInterval)
	}
	ar.File = filepath.Join(dir, name)
	for i, fr := range frames {
		path := filepath.Join(ar.File, fmt.Sprintf("%03d%s", i, cfg.Format.Ext()))
		if err := export.Save(path, fr); err != nil {
			return ar, err
		}
	}
	return ar, nil
}
