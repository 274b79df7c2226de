package renderer

import (
	"context"
	"fmt"
	"math"

	"github.com/ivlev/matinee/internal/player"
)

// FrameCount is the number of frames needed to cover duration at fps, both ends included.
func FrameCount(duration float64, fps int) int {
	return int(math.Ceil(duration*float64(fps)-1e-9)) + 1
}

// Run plays p from the start, capturing a frame before the first tick and after every tick,
// until playback stops or maxFrames frames are captured. A non-positive maxFrames captures
// enough frames to cover the sequence once.
func Run(ctx context.Context, p *player.Player, rec *Recorder, fps, maxFrames int) error {
	if fps <= 0 {
		return fmt.Errorf("invalid frame rate %d", fps)
	}
	if maxFrames <= 0 {
		maxFrames = FrameCount(p.Length()/p.PlayRate(), fps)
	}
	dt := 1 / float64(fps)

	if err := p.Play(true); err != nil {
		return err
	}
	rec.Capture(p.Position(), p.State().String())

	for p.State() == player.Playing && len(rec.Trace.Frames) < maxFrames {
		if err := ctx.Err(); err != nil {
			p.Stop()
			return err
		}
		p.Tick(dt)
		if rec.Camera != nil {
			rec.Camera.Advance(dt)
		}
		if rec.Mixer != nil {
			rec.Mixer.Advance(dt)
		}
		rec.Capture(p.Position(), p.State().String())
	}

	if p.State() != player.Stopped {
		p.Stop()
	}
	return nil
}
