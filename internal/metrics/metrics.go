package metrics

import (
	"time"

	"github.com/bmharper/quadtree-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opLabel   = "op"
	modeLabel = "mode"

	OpInsert    = "insert"
	OpRemove    = "remove"
	OpClean     = "clean"
	OpCollision = "collision"

	ModeQuadtree = "quadtree"
	ModeBrute    = "brute"
)

// Tree operations take microseconds, frames take milliseconds.
var (
	opBuckets    = prometheus.ExponentialBuckets(1e-7, 4, 12)
	frameBuckets = []float64{0.001, 0.005, 0.01, 0.016, 0.033, 0.05, 0.1, 0.25}
)

var (
	treeOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quadtree_op_duration_seconds",
		Help:    "Time spent in a quadtree operation.",
		Buckets: opBuckets,
	}, []string{
		opLabel,
	})

	physicsDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_physics_duration_seconds",
		Help:    "Time spent integrating sprite velocities in a frame.",
		Buckets: frameBuckets,
	})

	frameDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sim_frame_duration_seconds",
		Help:    "Time spent in a whole simulation frame.",
		Buckets: frameBuckets,
	}, []string{
		modeLabel,
	})

	collisionPairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_collision_pairs",
		Help: "The number of colliding sprite pairs resolved.",
	}, []string{
		modeLabel,
	})

	frames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_frames",
		Help: "The number of simulated frames.",
	})

	treeElements = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quadtree_elements",
		Help: "The number of live elements.",
	})

	treeElementNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quadtree_element_nodes",
		Help: "The number of leaf memberships; an element spanning leaves counts once per leaf.",
	})

	treeNodes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "quadtree_nodes",
		Help: "The number of quad nodes by kind.",
	}, []string{
		"kind",
	})

	treeDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quadtree_max_leaf_depth",
		Help: "The depth of the deepest leaf.",
	})
)

// InstrumentOp records the duration of a tree operation started at start.
func InstrumentOp(op string, start time.Time) {
	treeOpDuration.With(prometheus.Labels{
		opLabel: op,
	}).Observe(time.Since(start).Seconds())
}

func InstrumentPhysics(start time.Time) {
	physicsDuration.Observe(time.Since(start).Seconds())
}

func InstrumentFrame(mode string, start time.Time) {
	frames.Inc()
	frameDuration.With(prometheus.Labels{
		modeLabel: mode,
	}).Observe(time.Since(start).Seconds())
}

func InstrumentCollisions(mode string, pairs int) {
	collisionPairs.With(prometheus.Labels{
		modeLabel: mode,
	}).Add(float64(pairs))
}

// InstrumentTree publishes the shape of the tree.
func InstrumentTree(s quadtree.Stats) {
	treeElements.Set(float64(s.Elements))
	treeElementNodes.Set(float64(s.ElementNodes))
	treeNodes.With(prometheus.Labels{"kind": "leaf"}).Set(float64(s.Leaves))
	treeNodes.With(prometheus.Labels{"kind": "branch"}).Set(float64(s.Branches))
	treeDepth.Set(float64(s.MaxLeafDepth))
}
