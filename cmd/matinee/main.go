package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/ivlev/matinee/internal/config"
	"github.com/ivlev/matinee/internal/director"
	"github.com/ivlev/matinee/internal/engine"
	"github.com/ivlev/matinee/internal/system"
)

var version = "dev"

func main() {
	system.InitResourceLimits()

	// environment first, so that flags given on the command line win
	cfg := config.Default()
	cfg.Workers = runtime.NumCPU()
	if err := config.LoadEnv(cfg); err != nil {
		log.Fatalf("[-] Error: %v", err)
	}
	cfg.BuildVersion = version

	flag.StringVar(&cfg.InputPath, "input", cfg.InputPath, "Sequence file or folder (default: the newest file in input/sequences/)")
	flag.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "Folder for traces and cut lists")
	flag.IntVar(&cfg.FPS, "fps", cfg.FPS, "Frames captured per second of playback")
	flag.IntVar(&cfg.MaxFrames, "max-frames", cfg.MaxFrames, "Stop after this many frames (0: one pass over the sequence)")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Sequences played at the same time")
	flag.BoolVar(&cfg.Looping, "loop", cfg.Looping, "Loop the sequence's loop section")
	flag.Float64Var(&cfg.PlayRate, "rate", cfg.PlayRate, "Play rate multiplier")
	flag.Float64Var(&cfg.FixedTimeStep, "fixed-step", cfg.FixedTimeStep, "Advance by this many seconds per frame regardless of fps (0: off)")
	flag.BoolVar(&cfg.ConditionEnabled, "condition", cfg.ConditionEnabled, "Session condition flag for gated tracks and keys")
	flag.BoolVar(&cfg.PlayTriggersWhenJumping, "triggers-on-jump", cfg.PlayTriggersWhenJumping, "Fire trigger keys on forward jumps")
	flag.BoolVar(&cfg.Diagnostics, "diagnostics", cfg.Diagnostics, "Log tracks that could not bind")
	flag.BoolVar(&cfg.WriteCuts, "cuts", cfg.WriteCuts, "Write camera cut lists for sequences with a director track")
	flag.BoolVar(&cfg.ShowStats, "stats", cfg.ShowStats, "Print a performance report")
	all := flag.Bool("all", false, "Play every sequence in the input folder instead of the newest one")
	showCuts := flag.Bool("show-cuts", false, "Print the newest cut list in the output folder and exit")
	showVersion := flag.Bool("version", false, "Print the build version")

	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}
	if *showCuts {
		if err := printCuts(cfg.OutputDir); err != nil {
			log.Fatalf("[-] Error: %v", err)
		}
		return
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Error: %v", err)
	}

	paths, err := inputs(cfg.InputPath, *all)
	if err != nil {
		log.Fatalf("[-] Error: %v. Put sequence files in %s", err, cfg.InputPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := engine.NewProject(cfg, paths).Run(ctx)
	if err != nil {
		log.Fatalf("[-] Project error: %v", err)
	}

	for _, r := range results {
		fmt.Printf("[+++] Success! %s: %s\n", r.Sequence, r.Trace)
		if r.Cuts != "" {
			fmt.Printf("[*] Cut list: %s\n", r.Cuts)
		}
	}
}

func inputs(path string, all bool) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() || all {
		return system.ListSequences(path)
	}

	latest, err := system.FindLatestSequence(path)
	if err != nil {
		return nil, err
	}
	fmt.Printf("[*] Selected sequence: %s\n", latest)
	return []string{latest}, nil
}

func printCuts(dir string) error {
	list, path, err := director.LoadLatestCutList(dir)
	if err != nil {
		return err
	}
	fmt.Printf("[*] %s: %s (%.2fs, %d cuts)\n", path, list.Sequence, list.Length, len(list.Cuts))
	for _, c := range list.Cuts {
		fmt.Printf("    %7.2fs  %-16s (%.1f, %.1f, %.1f)\n", c.Time, c.Group, c.Location.X, c.Location.Y, c.Location.Z)
	}
	return nil
}
