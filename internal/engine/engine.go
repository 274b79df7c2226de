package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/matinee/internal/config"
	"github.com/ivlev/matinee/internal/director"
	"github.com/ivlev/matinee/internal/player"
	"github.com/ivlev/matinee/internal/renderer"
	"github.com/ivlev/matinee/internal/sequence"
	"github.com/ivlev/matinee/internal/system"
	"github.com/ivlev/matinee/internal/track"
)

// Project plays a set of sequence files headless, each on its own stage, and writes a
// trace per sequence. All sessions share one playback context.
type Project struct {
	Config *config.Config
	Paths  []string

	ctx    *player.Context
	frames atomic.Int64
}

// Result describes one finished session.
type Result struct {
	Sequence string
	Session  string
	Trace    string
	Cuts     string
	Frames   int
	Events   int
	Elapsed  time.Duration
}

func NewProject(cfg *config.Config, paths []string) *Project {
	return &Project{
		Config: cfg,
		Paths:  paths,
		ctx:    player.NewContext(),
	}
}

// Run plays every sequence, at most Config.Workers at a time. The first failure cancels the
// sessions still running.
func (p *Project) Run(ctx context.Context) ([]Result, error) {
	startTime := time.Now()
	if len(p.Paths) == 0 {
		return nil, fmt.Errorf("no sequences to play")
	}
	if err := os.MkdirAll(p.Config.OutputDir, 0755); err != nil {
		return nil, err
	}

	fmt.Println("--- [PROJECT: MATINEE] ---")
	fmt.Printf("[*] Sequences: %d | %d FPS | Workers: %d\n", len(p.Paths), p.Config.FPS, p.Config.Workers)
	fmt.Println("--------------------------")

	results := make([]Result, len(p.Paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Config.Workers)

	for i, path := range p.Paths {
		g.Go(func() error {
			res, err := p.play(gctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			results[i] = res
			fmt.Printf("[>] Ready: %s (%d frames, %d events) %d/%d\n", res.Sequence, res.Frames, res.Events, i+1, len(p.Paths))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if p.Config.ShowStats {
		p.report(results, time.Since(startTime))
	}
	return results, nil
}

func (p *Project) play(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	seq, err := sequence.Read(path)
	if err != nil {
		return Result{}, err
	}

	st := NewStage(seq)
	rec := renderer.NewRecorder(seq.Name, p.Config.FPS, st.World)
	rec.Camera = st.Camera
	rec.Mixer = st.Mixer

	env := track.Env{
		Resolver:  st.World,
		Directory: st.World,
		World:     st.World,
		Notifier:  rec,
		Audio:     st.Mixer,
	}
	pl := player.New(p.ctx, seq, env, player.Options{
		FixedTimeStep:           p.Config.FixedTimeStep,
		ConditionEnabled:        p.Config.ConditionEnabled,
		PlayTriggersWhenJumping: p.Config.PlayTriggersWhenJumping,
		Diagnostics:             p.Config.Diagnostics,
	})
	pl.SetLooping(p.Config.Looping)
	pl.SetPlayRate(p.Config.PlayRate)

	if err := renderer.Run(ctx, pl, rec, p.Config.FPS, p.Config.MaxFrames); err != nil {
		return Result{}, err
	}
	p.frames.Add(int64(len(rec.Trace.Frames)))

	res := Result{
		Sequence: seq.Name,
		Session:  rec.Trace.Session,
		Trace:    renderer.TracePath(p.Config.OutputDir, seq.Name),
		Frames:   len(rec.Trace.Frames),
		Events:   len(rec.Trace.Events),
	}
	if err := renderer.WriteTrace(rec.Trace, res.Trace); err != nil {
		return Result{}, fmt.Errorf("write trace: %w", err)
	}

	if p.Config.WriteCuts && seq.DirectorTrack() != nil {
		list := director.NewCutList(seq.Name, seq.Length, director.CameraCuts(seq, st.World))
		res.Cuts = director.CutListPath(p.Config.OutputDir, seq.Name)
		if err := director.WriteCutList(list, res.Cuts); err != nil {
			return Result{}, fmt.Errorf("write cut list: %w", err)
		}
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

func (p *Project) report(results []Result, total time.Duration) {
	frames := p.frames.Load()
	fps := float64(frames) / total.Seconds()

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Sequences: %d\n"+
			"Frames: %d\n"+
			"Effective FPS: %.2f\n",
		p.Config.BuildVersion, total.Seconds(), len(results), frames, fps,
	)
	for _, r := range results {
		report += fmt.Sprintf("  %s: %.3fs\n", r.Sequence, r.Elapsed.Seconds())
	}
	if stats, err := system.ProcessStats(); err == nil {
		report += stats.String() + "\n"
	}
	report += "----------------------------\n"
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Sequences: %d | Frames: %d | Total: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		len(results),
		frames,
		total.Seconds(),
		fps,
	)

	f, err := os.OpenFile(filepath.Join(p.Config.OutputDir, "benchmark.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Could not write benchmark.log: %v\n", err)
	}
}
