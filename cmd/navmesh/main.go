// Command navmesh answers one path query on a mesh file and prints the path as JSON.
// It prints null and exits with status 2 when there is no path.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-navmesh/internal/config"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/logger"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/meshfile"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/navmesh"
)

const exitNoPath = 2

func main() {
	configPath := flag.String("config", "", "JSON configuration file")
	meshPath := flag.String("mesh", "", "JSON mesh file (required)")
	from := flag.String("from", "", "start point as x,y")
	to := flag.String("to", "", "goal point as x,y")
	flag.Parse()

	found, err := run(*configPath, *meshPath, *from, *to)
	if err != nil {
		fmt.Fprintln(os.Stderr, "navmesh:", err)
		os.Exit(1)
	}
	if !found {
		os.Exit(exitNoPath)
	}
}

func run(configPath, meshPath, from, to string) (bool, error) {
	if meshPath == "" {
		return false, fmt.Errorf("-mesh is required")
	}
	start, err := parseXY(from)
	if err != nil {
		return false, fmt.Errorf("-from: %w", err)
	}
	goal, err := parseXY(to)
	if err != nil {
		return false, fmt.Errorf("-to: %w", err)
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		if cfg, err = config.LoadConfig(configPath); err != nil {
			return false, err
		}
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return false, err
	}
	defer log.Sync()

	polygons, err := meshfile.Load(meshPath)
	if err != nil {
		return false, err
	}
	opts, err := cfg.MeshOptions(log)
	if err != nil {
		return false, err
	}
	mesh, err := navmesh.New(polygons, opts...)
	if err != nil {
		return false, err
	}

	path := mesh.FindPath(start, goal)
	log.Debug("path query", zap.Stringer("from", start), zap.Stringer("to", goal), zap.Int("points", len(path)))

	out, err := json.Marshal(path)
	if err != nil {
		return false, err
	}
	fmt.Println(string(out))
	return path != nil, nil
}

// parseXY reads a point written as "x,y".
func parseXY(s string) (geometry.Vector2D, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geometry.Vector2D{}, fmt.Errorf("%w: %q is not x,y", geometry.ErrMalformedPoint, s)
	}
	coords := make([]float64, 2)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geometry.Vector2D{}, fmt.Errorf("%w: %v", geometry.ErrMalformedPoint, err)
		}
		coords[i] = f
	}
	return geometry.ParsePoint(coords)
}
