package main

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"sync"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/bmharper/quadtree-go/internal/admin"
	"github.com/bmharper/quadtree-go/internal/sim"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/encoding/json"
)

var (
	// The quadsim version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "quadsim_info",
		Help:        "Quadsim information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// Keeps the cli package working on obfuscated builds.
var _ = reflect.TypeOf(config{})

type config struct {
	WorldWidth         int           `cli:""        env:"QUADSIM_WORLD_WIDTH"          help:"Width of the world."`
	WorldHeight        int           `cli:""        env:"QUADSIM_WORLD_HEIGHT"         help:"Height of the world."`
	Sprites            int           `cli:""        env:"QUADSIM_SPRITES"              help:"The number of sprites."`
	MaxVelocity        int           `cli:""        env:"QUADSIM_MAX_VELOCITY"         help:"Maximum sprite velocity per axis, in units per second."`
	MinSize            int           `cli:""        env:"QUADSIM_MIN_SIZE"             help:"Minimum sprite size."`
	MaxSize            int           `cli:""        env:"QUADSIM_MAX_SIZE"             help:"Maximum sprite size."`
	MaxDepth           int           `cli:""        env:"QUADSIM_MAX_DEPTH"            help:"Maximum quadtree depth."`
	SplitThreshold     int           `cli:""        env:"QUADSIM_SPLIT_THRESHOLD"      help:"Number of elements that makes a leaf split."`
	BruteForce         bool          `cli:""        env:"QUADSIM_BRUTE_FORCE"          help:"Detect collisions without the quadtree."`
	Seed               int           `cli:""        env:"QUADSIM_SEED"                 help:"Random seed. 0 picks one from the clock."`
	FPS                int           `cli:""        env:"QUADSIM_FPS"                  help:"Frames per second. 0 runs unpaced."`
	Frames             int           `cli:""        env:"QUADSIM_FRAMES"               help:"Frames to simulate. 0 runs until interrupted."`
	AdminAddr          string        `cli:""        env:"QUADSIM_ADMIN_ADDR"           help:"Admin listening address. Empty disables it."`
	SnapshotInterval   int           `cli:""        env:"QUADSIM_SNAPSHOT_INTERVAL"    help:"Frames between rendered snapshots. 0 disables rendering."`
	SnapshotFile       string        `cli:""        env:"QUADSIM_SNAPSHOT_FILE"        help:"File where rendered snapshots are saved."`
	ImageWidth         int           `cli:",hidden" env:"QUADSIM_IMAGE_WIDTH"          help:"Width of rendered snapshots in pixels."`
	StatsFile          string        `cli:""        env:"QUADSIM_STATS_FILE"           help:"File where the final stats are written as JSON."`
	LogLevel           string        `cli:""        env:"QUADSIM_LOG_LEVEL"            help:"Log level (debug|info|warning|error)."`
	LogIndent          bool          `cli:""        env:"QUADSIM_LOG_INDENT"           help:"Indent logs."`
	LogSummaryInterval time.Duration `cli:",hidden" env:"QUADSIM_LOG_SUMMARY_INTERVAL" help:"The duration between each frame summary log."`
	Version            bool          `cli:""        env:"-"                            help:"Show version."`
	Help               bool          `cli:""        env:"-"                            help:"Show help."`
}

func defaultConfig() config {
	s := sim.DefaultConfig()
	return config{
		WorldWidth:         s.WorldWidth,
		WorldHeight:        s.WorldHeight,
		Sprites:            s.NumberSprites,
		MaxVelocity:        s.MaxSpriteVelocity,
		MinSize:            s.MinRectSize,
		MaxSize:            s.MaxRectSize,
		MaxDepth:           s.MaxQuadTreeDepth,
		SplitThreshold:     s.QuadTreeSplitThreshold,
		FPS:                60,
		AdminAddr:          ":18190",
		SnapshotInterval:   60,
		ImageWidth:         1000,
		LogLevel:           logs.InfoLevel.String(),
		LogSummaryInterval: time.Second * 10,
	}
}

func (c config) simConfig() sim.Config {
	seed := int64(c.Seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return sim.Config{
		WorldWidth:             c.WorldWidth,
		WorldHeight:            c.WorldHeight,
		NumberSprites:          c.Sprites,
		MaxSpriteVelocity:      c.MaxVelocity,
		MinRectSize:            c.MinSize,
		MaxRectSize:            c.MaxSize,
		MaxQuadTreeDepth:       c.MaxDepth,
		QuadTreeSplitThreshold: c.SplitThreshold,
		UseQuadTree:            !c.BruteForce,
		Seed:                   seed,
	}
}

func validateConfig(c config) error {
	if c.FPS < 0 {
		return errors.New("fps can't be negative").WithTag("fps", c.FPS)
	}

	if c.Frames < 0 {
		return errors.New("frames can't be negative").WithTag("frames", c.Frames)
	}

	if c.SnapshotInterval < 0 {
		return errors.New("snapshot interval can't be negative").
			WithTag("snapshot_interval", c.SnapshotInterval)
	}

	if c.SnapshotInterval > 0 && c.ImageWidth <= 0 {
		return errors.New("image width must be positive").
			WithTag("image_width", c.ImageWidth)
	}

	if c.LogSummaryInterval <= 0 {
		return errors.New("log summary interval must be positive").
			WithTag("log_summary_interval", c.LogSummaryInterval)
	}

	return nil
}

func main() {
	conf := defaultConfig()

	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Runs a sprite simulation on a loose quadtree.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	simConf := conf.simConfig()
	scene, err := sim.NewScene(simConf)
	if err != nil {
		logs.Fatal(errors.New("creating scene failed").Wrap(err))
	}

	runID := uuid.NewString()
	logs.WithTag("version", version).
		WithTag("run_id", runID).
		WithTag("log_level", conf.LogLevel).
		WithTag("sprites", simConf.NumberSprites).
		WithTag("seed", simConf.Seed).
		WithTag("use_quadtree", simConf.UseQuadTree).
		Info("starting quadsim")

	var store admin.Store

	var wg sync.WaitGroup
	adminCtx, stopAdmin := context.WithCancel(ctx)
	defer stopAdmin()

	if conf.AdminAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := admin.ListenAndServe(adminCtx, conf.AdminAddr, admin.NewRouter(admin.RouterConfig{
				Store:   &store,
				Version: version,
			}))
			if err != nil {
				logs.Warn(err)
			}
		}()
	}

	r := runner{
		conf:  conf,
		runID: runID,
		scene: scene,
		store: &store,
	}
	if err := r.run(ctx); err != nil {
		logs.Warn(errors.New("simulation stopped").
			WithTag("run_id", runID).
			Wrap(err))
	}

	store.Close()
	stopAdmin()
	wg.Wait()
}
