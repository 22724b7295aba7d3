package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	flag "github.com/spf13/pflag"

	"mmd-renderer/internal/config"
	"mmd-renderer/internal/game"
	"mmd-renderer/internal/mmd"
	"mmd-renderer/internal/player"
	"mmd-renderer/internal/skeleton"
)

type printAudio struct{}

func (printAudio) PlaySound(vabID, soundID uint8) {
	fmt.Printf("        sound vab=%d id=%d\n", vabID, soundID)
}

func findCharacter(chars []game.Character, key string) (*game.Character, error) {
	var idx int
	if _, err := fmt.Sscanf(key, "%d", &idx); err == nil {
		if idx < 0 || idx >= len(chars) {
			return nil, fmt.Errorf("character %d of %d", idx, len(chars))
		}
		return &chars[idx], nil
	}
	for i := range chars {
		if strings.EqualFold(chars[i].FileName, key) || strings.EqualFold(chars[i].Info.Name, key) {
			return &chars[i], nil
		}
	}
	return nil, fmt.Errorf("no character named %q", key)
}

func main() {
	configPath := flag.StringP("config", "c", "", "Path to config file (.yaml or .json)")
	gameDir := flag.StringP("game", "g", "", "Game directory containing the executable and CHDAT")
	character := flag.String("character", "0", "Character index or file name")
	anim := flag.IntP("anim", "a", 0, "Animation index")
	node := flag.IntP("node", "n", 0, "Bone whose transform is printed each frame")
	trace := flag.Bool("trace", false, "Print every dispatched instruction")
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
	cfg.Resolve(config.Flags{GameDir: *gameDir})
	if cfg.GameDir == "" {
		fmt.Fprintf(os.Stderr, "Error: game directory not found; pass --game\n")
		os.Exit(1)
	}

	data, err := game.Read(cfg.GameDir, cfg.GameInfo())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading game data: %v\n", err)
		os.Exit(1)
	}
	ch, err := findCharacter(data.Characters, *character)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	f, err := mmd.Load(ch.MMDPath(cfg.GameDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	model, err := skeleton.Load(ch, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *anim < 0 || *anim >= len(model.Animations) {
		fmt.Fprintf(os.Stderr, "Error: animation %d of %d\n", *anim, len(model.Animations))
		os.Exit(1)
	}
	if *node < 0 || *node >= len(model.Bones) {
		fmt.Fprintf(os.Stderr, "Error: node %d of %d\n", *node, len(model.Bones))
		os.Exit(1)
	}

	a := &model.Animations[*anim]
	fmt.Printf("[%03d] %s %q: %d bones, animation %d (%d frames, %d instructions)\n",
		ch.Index, ch.FileName, ch.Info.Name, len(model.Bones), a.ID, a.FrameCount, len(a.Instructions))
	fmt.Println("------")

	p := player.New(model)
	p.Audio = printAudio{}
	bone := model.Bones[*node]
	p.Hooks.Stepped = func(frame int) {
		pos, rot, scl := bone.Position(), bone.Rotation(), bone.Scale()
		fmt.Printf("%5d  pos(%.1f %.1f %.1f) rot(%.1f %.1f %.1f) scale(%.2f %.2f %.2f)\n",
			frame, pos[0], pos[1], pos[2], rot[0], rot[1], rot[2], scl[0], scl[1], scl[2])
		if *trace {
			m := p.Momentum(*node)
			fmt.Printf("        momentum %v\n", m[:])
		}
	}
	p.Hooks.Finished = func() {
		fmt.Println("------")
		fmt.Println("Finished")
	}
	if *trace {
		p.Hooks.Instruction = func(pc int, ins mmd.Instruction) {
			tc, _ := ins.Timecode()
			fmt.Printf("        pc=%d tc=%d %T\n", pc, tc, ins)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p.Start(a)
	if err := player.Run(ctx, p, cfg.TickInterval()); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	st := p.Snapshot()
	fmt.Printf("Stopped at frame %d, pc %d\n", st.Frame, st.PC)
}
