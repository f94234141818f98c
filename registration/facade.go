package registration

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/finostro/loam-velodyne/inertial"
	"github.com/finostro/loam-velodyne/pointcloud"
	"github.com/finostro/loam-velodyne/spatialmath"
)

// Sentinel errors callers can match with errors.Is, following the corpus's
// convention of pairing sentinel identity with pkg/errors context wrapping.
var (
	// ErrEmptySweep is returned by ProcessSweep when the sweep carries no
	// points. No outputs are produced and the façade returns to Idle.
	ErrEmptySweep = errors.New("registration: empty sweep")
	// ErrConcurrentSweep is returned when ProcessSweep is called while a
	// prior call on the same façade is still in flight.
	ErrConcurrentSweep = errors.New("registration: sweep already in progress")
)

type state int

const (
	idle state = iota
	processing
)

// TransformSummary is the compact four-point transform handoff consumed by
// downstream odometry: the sweep-start pose, the sweep-end position,
// velocity, and pose, matching the legacy imuTrans contract from §4.5.
type TransformSummary struct {
	StartPose spatialmath.Vec3 // (roll0, pitch0, yaw0)
	EndPos    spatialmath.Vec3
	EndVel    spatialmath.Vec3
	EndPose   spatialmath.Vec3 // (rollEnd, pitchEnd, yawEnd)
}

// Outputs bundles the five point clouds and transform summary a completed
// ProcessSweep call produces. The slices are owned by the Facade and remain
// valid only until the next ProcessSweep/reset.
type Outputs struct {
	Compensated     []pointcloud.Point
	CornerSharp     []pointcloud.Point
	CornerLessSharp []pointcloud.Point
	SurfaceFlat     []pointcloud.Point
	SurfaceLessFlat []pointcloud.Point
	Transform       TransformSummary
}

// Facade owns the registration lifecycle: the inertial history, the
// current sweep's compensated cloud and feature sets, and the
// Idle/Processing state machine. One Facade instance is meant to live for
// the process lifetime, matching the corpus's resource-owns-its-state
// pattern (e.g. the vectornav component owning its own mutex and sensor
// state).
type Facade struct {
	mu      sync.Mutex
	state   state
	cfg     Config
	history *inertial.History
	logger  *zap.SugaredLogger

	outputs Outputs
}

// New returns a Facade configured with cfg and an inertial history of
// inertial.DefaultCapacity. logger may be nil, in which case the façade
// logs nothing.
func New(cfg Config, logger *zap.SugaredLogger) *Facade {
	return &Facade{
		cfg:     cfg,
		history: inertial.NewHistory(inertial.DefaultCapacity),
		logger:  logger,
	}
}

// SetConfig validates cfg and, if valid, swaps it in atomically; an invalid
// cfg is rejected and the prior configuration is retained.
func (f *Facade) SetConfig(cfg Config) error {
	cfg = cfg.WithDefaultedCornerLessSharp()
	if err := cfg.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	f.cfg = cfg
	f.mu.Unlock()
	return nil
}

// IngestInertial forwards sample to the inertial history. Out-of-order
// samples are dropped by History.Push itself; IngestInertial only logs the
// occurrence, it never returns an error for it (§7: InertialOutOfOrder has
// no user-visible error).
func (f *Facade) IngestInertial(sample inertial.Sample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	before := f.history.DroppedCount()
	f.history.Push(sample)
	if f.logger != nil && f.history.DroppedCount() > before {
		f.logger.Warnw("dropped out-of-order inertial sample",
			"stamp", sample.Stamp, "droppedTotal", f.history.DroppedCount())
	}
}

// DroppedInertialCount returns the number of inertial samples dropped so
// far for arriving out of timestamp order.
func (f *Facade) DroppedInertialCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history.DroppedCount()
}

// ProcessSweep runs the full registration pipeline on sweep, whose stamp is
// the wall time of the sweep's first point: it snapshots the inertial
// history, motion-compensates every point into the sweep-start frame,
// extracts the four feature sets, and computes the transform summary. A
// concurrent call while one is already in flight returns ErrConcurrentSweep;
// an empty sweep returns ErrEmptySweep and leaves prior outputs untouched.
func (f *Facade) ProcessSweep(sweep *pointcloud.Sweep, sweepStamp float64) error {
	f.mu.Lock()
	if f.state == processing {
		f.mu.Unlock()
		return ErrConcurrentSweep
	}
	if len(sweep.Points) == 0 {
		f.mu.Unlock()
		return ErrEmptySweep
	}
	if err := sweep.Validate(); err != nil {
		f.mu.Unlock()
		return errors.Wrap(err, "registration: invalid sweep")
	}
	f.state = processing
	cfg := f.cfg
	snapshot := f.history.Snapshot()
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.state = idle
		f.mu.Unlock()
	}()

	if f.logger != nil {
		f.logger.Debugw("reset", "stamp", sweepStamp, "points", len(sweep.Points), "rings", sweep.Rings)
	}

	start := inertial.InterpolateAt(snapshot, sweepStamp)
	end := inertial.InterpolateAt(snapshot, sweepStamp+sweep.ScanPeriod)

	compensated := &pointcloud.Sweep{
		ScanPeriod: sweep.ScanPeriod,
		Rings:      sweep.Rings,
		Ranges:     append([]pointcloud.RingRange(nil), sweep.Ranges...),
		Points:     make([]pointcloud.Point, len(sweep.Points)),
	}
	for i, p := range sweep.Points {
		t := p.RelTime()
		cur := inertial.InterpolateAt(snapshot, sweepStamp+t)
		pos := compensateToSweepStart(p.Position, t, start, cur)
		compensated.Points[i] = pointcloud.Point{Position: pos, Intensity: p.Intensity}
	}

	features := extractFeatures(compensated, cfg)

	if f.logger != nil {
		f.logger.Debugw("extracted features",
			"sharp", len(features.CornerSharp),
			"lessSharp", len(features.CornerLessSharp),
			"flat", len(features.SurfaceFlat),
			"lessFlat", len(features.SurfaceLessFlat))
		if features.DegenerateMasked > 0 {
			f.logger.Debugw("masked degenerate points", "count", features.DegenerateMasked)
		}
	}

	f.mu.Lock()
	f.outputs = Outputs{
		Compensated:     compensated.Points,
		CornerSharp:     features.CornerSharp,
		CornerLessSharp: features.CornerLessSharp,
		SurfaceFlat:     features.SurfaceFlat,
		SurfaceLessFlat: features.SurfaceLessFlat,
		Transform: TransformSummary{
			StartPose: spatialmath.Vec3{X: start.Roll.Rad(), Y: start.Pitch.Rad(), Z: start.Yaw.Rad()},
			EndPos:    end.Position,
			EndVel:    end.Velocity,
			EndPose:   spatialmath.Vec3{X: end.Roll.Rad(), Y: end.Pitch.Rad(), Z: end.Yaw.Rad()},
		},
	}
	f.mu.Unlock()

	return nil
}

// Outputs returns the façade's current outputs. The returned slices are
// non-owning views backed by façade-owned arrays and are invalidated at the
// next ProcessSweep call; callers that need to retain them must copy.
func (f *Facade) Outputs() Outputs {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outputs
}
