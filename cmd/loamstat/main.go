// Command loamstat is a local smoke-test harness for the registration core:
// it reads a recorded sweep and inertial log from a JSON file, runs one
// process_sweep, and prints the resulting feature counts. It is not a
// transport; the recording format is this binary's own.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/finostro/loam-velodyne/inertial"
	"github.com/finostro/loam-velodyne/pointcloud"
	"github.com/finostro/loam-velodyne/registration"
	"github.com/finostro/loam-velodyne/spatialmath"
)

type vec3Recording struct {
	X, Y, Z float64
}

type inertialRecording struct {
	Stamp    float64
	Roll     float64
	Pitch    float64
	Yaw      float64
	Position vec3Recording
	Velocity vec3Recording
}

type pointRecording struct {
	X, Y, Z   float64
	Intensity float64
}

type ringRangeRecording struct {
	Start, End int
}

type sweepRecording struct {
	ScanPeriod float64
	Rings      int
	Stamp      float64
	Points     []pointRecording
	Ranges     []ringRangeRecording
}

type recording struct {
	Inertial []inertialRecording
	Sweep    sweepRecording
}

func main() {
	path := flag.String("in", "", "path to a JSON recording of inertial samples and one sweep")
	configPath := flag.String("config", "", "optional path to a JSON RegistrationConfig override")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: loamstat -in recording.json [-config config.json]")
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck
	sugar := logger.Sugar()

	if err := run(*path, *configPath, sugar); err != nil {
		sugar.Errorw("loamstat failed", "error", err)
		os.Exit(1)
	}
}

func run(path, configPath string, logger *zap.SugaredLogger) error {
	rec, err := loadRecording(path)
	if err != nil {
		return err
	}

	cfg := registration.DefaultConfig()
	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return errors.Wrap(err, "loamstat: open config")
		}
		defer f.Close()
		cfg, err = registration.DecodeConfig(f)
		if err != nil {
			return err
		}
	}

	facade := registration.New(cfg, logger)
	for _, s := range rec.Inertial {
		facade.IngestInertial(inertial.Sample{
			Stamp:    s.Stamp,
			Roll:     spatialmath.NewAngle(s.Roll),
			Pitch:    spatialmath.NewAngle(s.Pitch),
			Yaw:      spatialmath.NewAngle(s.Yaw),
			Position: spatialmath.Vec3{X: s.Position.X, Y: s.Position.Y, Z: s.Position.Z},
			Velocity: spatialmath.Vec3{X: s.Velocity.X, Y: s.Velocity.Y, Z: s.Velocity.Z},
		})
	}

	sweep := toSweep(rec.Sweep)
	if err := facade.ProcessSweep(sweep, rec.Sweep.Stamp); err != nil {
		return errors.Wrap(err, "loamstat: process sweep")
	}

	out := facade.Outputs()
	fmt.Printf("compensated=%d sharp=%d lessSharp=%d flat=%d lessFlat=%d dropped_inertial=%d\n",
		len(out.Compensated), len(out.CornerSharp), len(out.CornerLessSharp),
		len(out.SurfaceFlat), len(out.SurfaceLessFlat), facade.DroppedInertialCount())
	fmt.Printf("transform: start_pose=%v end_pos=%v end_vel=%v end_pose=%v\n",
		out.Transform.StartPose, out.Transform.EndPos, out.Transform.EndVel, out.Transform.EndPose)
	return nil
}

func loadRecording(path string) (recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return recording{}, errors.Wrap(err, "loamstat: open recording")
	}
	defer f.Close()

	var rec recording
	dec := json.NewDecoder(f)
	if err := dec.Decode(&rec); err != nil {
		return recording{}, errors.Wrap(err, "loamstat: decode recording")
	}
	return rec, nil
}

func toSweep(rec sweepRecording) *pointcloud.Sweep {
	points := make([]pointcloud.Point, len(rec.Points))
	for i, p := range rec.Points {
		points[i] = pointcloud.Point{
			Position:  spatialmath.Vec3{X: p.X, Y: p.Y, Z: p.Z},
			Intensity: p.Intensity,
		}
	}
	ranges := make([]pointcloud.RingRange, len(rec.Ranges))
	for i, r := range rec.Ranges {
		ranges[i] = pointcloud.RingRange{Start: r.Start, End: r.End}
	}
	return &pointcloud.Sweep{
		ScanPeriod: rec.ScanPeriod,
		Rings:      rec.Rings,
		Points:     points,
		Ranges:     ranges,
	}
}
