package main

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/bmharper/quadtree-go/internal/admin"
	"github.com/bmharper/quadtree-go/internal/render"
	"github.com/bmharper/quadtree-go/internal/sim"
	"github.com/segmentio/encoding/json"
	"golang.org/x/time/rate"
)

// Time step used when frames are not paced.
const unpacedFPS = 60

type runner struct {
	conf  config
	runID string
	scene *sim.Scene
	store *admin.Store
}

// run simulates frames until the frame budget is spent or ctx is done.
func (r *runner) run(ctx context.Context) error {
	r.scene.Build()

	fps := r.conf.FPS
	var limiter *rate.Limiter
	if fps > 0 {
		limiter = rate.NewLimiter(rate.Limit(fps), 1)
	} else {
		fps = unpacedFPS
	}
	dt := time.Second / time.Duration(fps)

	var last admin.Snapshot
	summary := newFrameSummary(r.runID)
	lastFrameAt := time.Now()

	for r.conf.Frames == 0 || r.scene.Frame() < r.conf.Frames {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		} else if ctx.Err() != nil {
			break
		}

		fs := r.scene.Step(dt)
		now := time.Now()
		last = r.snapshot(fs, now.Sub(lastFrameAt), now)
		lastFrameAt = now

		r.store.SetSnapshot(last)
		summary.add(fs)

		if r.conf.SnapshotInterval > 0 && fs.Frame%r.conf.SnapshotInterval == 0 {
			if err := r.renderSnapshot(); err != nil {
				logs.Warn(err)
			}
		}

		if now.Sub(summary.start) >= r.conf.LogSummaryInterval {
			summary.log()
			summary = newFrameSummary(r.runID)
		}
	}

	summary.log()
	logs.WithTag("run_id", r.runID).
		WithTag("frames", r.scene.Frame()).
		Info("simulation ended")

	if r.conf.StatsFile != "" {
		return writeStats(r.conf.StatsFile, last)
	}
	return nil
}

func (r *runner) snapshot(fs sim.FrameStats, elapsed time.Duration, now time.Time) admin.Snapshot {
	var fps float64
	if elapsed > 0 {
		fps = float64(time.Second) / float64(elapsed)
	}

	c := r.scene.Config()
	return admin.Snapshot{
		RunID:         r.runID,
		Frame:         fs.Frame,
		Sprites:       len(r.scene.Sprites()),
		Collisions:    fs.Collisions,
		FrameDuration: fs.Duration,
		FPS:           fps,
		UseQuadTree:   c.UseQuadTree,
		Tree:          fs.Tree,
		Time:          now,
	}
}

func (r *runner) renderSnapshot() error {
	c := r.scene.Config()
	width := r.conf.ImageWidth
	height := width * c.WorldHeight / c.WorldWidth
	if height < 1 {
		height = 1
	}

	img := render.Render(r.scene.Tree(), r.scene.Sprites(), width, height)

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		return err
	}
	r.store.SetImage(buf.Bytes())

	if r.conf.SnapshotFile == "" {
		return nil
	}

	if err := os.WriteFile(r.conf.SnapshotFile, buf.Bytes(), 0644); err != nil {
		return errors.New("writing snapshot file failed").
			WithTag("file_name", r.conf.SnapshotFile).
			Wrap(err)
	}
	return nil
}

func writeStats(filename string, snap admin.Snapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.New("encoding stats failed").Wrap(err)
	}

	if err := os.WriteFile(filename, b, 0644); err != nil {
		return errors.New("writing stats file failed").
			WithTag("file_name", filename).
			Wrap(err)
	}
	return nil
}

// frameSummary aggregates frames between two summary logs.
type frameSummary struct {
	runID      string
	start      time.Time
	frames     int
	collisions int
	total      time.Duration
	slowest    time.Duration
	last       sim.FrameStats
}

func newFrameSummary(runID string) *frameSummary {
	return &frameSummary{
		runID: runID,
		start: time.Now(),
	}
}

func (s *frameSummary) add(fs sim.FrameStats) {
	s.frames++
	s.collisions += fs.Collisions
	s.total += fs.Duration
	if fs.Duration > s.slowest {
		s.slowest = fs.Duration
	}
	s.last = fs
}

func (s *frameSummary) average() time.Duration {
	if s.frames == 0 {
		return 0
	}
	return s.total / time.Duration(s.frames)
}

func (s *frameSummary) log() {
	if s.frames == 0 {
		return
	}

	var fps float64
	if elapsed := time.Since(s.start); elapsed > 0 {
		fps = float64(s.frames) / elapsed.Seconds()
	}

	logs.WithTag("run_id", s.runID).
		WithTag("frame", s.last.Frame).
		WithTag("frames", s.frames).
		WithTag("fps", fps).
		WithTag("avg_frame_duration", s.average().String()).
		WithTag("max_frame_duration", s.slowest.String()).
		WithTag("collisions", s.collisions).
		WithTag("elements", s.last.Tree.Elements).
		WithTag("element_nodes", s.last.Tree.ElementNodes).
		WithTag("leaves", s.last.Tree.Leaves).
		WithTag("max_leaf_depth", s.last.Tree.MaxLeafDepth).
		Info("frame summary")
}
