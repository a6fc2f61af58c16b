package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-navmesh/pkg/navmesh"
)

//go:embed config.schema.json
var schemaSource string

var schema = jsonschema.MustCompileString("config.schema.json", schemaSource)

type Config struct {
	Mesh   MeshConfig   `json:"mesh"`
	Log    LogConfig    `json:"log"`
	Server ServerConfig `json:"server"`
	Viewer ViewerConfig `json:"viewer"`
}

type MeshConfig struct {
	Triangulate    bool    `json:"triangulate"`
	PointQuerySize float64 `json:"pointQuerySize"`
	Cost           string  `json:"cost"`      // centroid | uniform
	Heuristic      string  `json:"heuristic"` // centroid | zero
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json | console
	// File enables rotation through lumberjack; empty means stderr.
	File       string `json:"file"`
	MaxSizeMB  int    `json:"maxSizeMB"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
	Compress   bool   `json:"compress"`
	// ActorLogs turns on the actor system's own logger.
	ActorLogs bool `json:"actorLogs"`
}

type ServerConfig struct {
	Addr           string  `json:"addr"`
	RateLimit      float64 `json:"rateLimit"` // queries per second per connection
	Burst          int     `json:"burst"`
	QueryTimeoutMs int     `json:"queryTimeoutMs"`
}

// QueryTimeout is the deadline for one path query sent to the path service.
func (s ServerConfig) QueryTimeout() time.Duration {
	return time.Duration(s.QueryTimeoutMs) * time.Millisecond
}

type ViewerConfig struct {
	Width         int  `json:"width"`
	Height        int  `json:"height"`
	ShowPortals   bool `json:"showPortals"`
	ShowCentroids bool `json:"showCentroids"`
}

func DefaultConfig() *Config {
	return &Config{
		Mesh: MeshConfig{
			Triangulate:    true,
			PointQuerySize: navmesh.DefaultPointQuerySize,
			Cost:           "centroid",
			Heuristic:      "centroid",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RateLimit:      20,
			Burst:          40,
			QueryTimeoutMs: 2000,
		},
		Viewer: ViewerConfig{
			Width:         1280,
			Height:        800,
			ShowPortals:   true,
			ShowCentroids: false,
		},
	}
}

// LoadConfig reads a JSON configuration file, validates it against the embedded
// schema and applies it over DefaultConfig. Sections or fields left out keep their default.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(b)
}

// Parse is LoadConfig for a document already in memory.
func Parse(b []byte) (*Config, error) {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// MeshOptions converts the mesh section into navmesh build options.
func (c *Config) MeshOptions(logger *zap.Logger) ([]navmesh.Option, error) {
	opts := []navmesh.Option{
		navmesh.WithTriangulation(c.Mesh.Triangulate),
		navmesh.WithPointQuerySize(c.Mesh.PointQuerySize),
		navmesh.WithLogger(logger),
	}

	switch c.Mesh.Cost {
	case "", "centroid":
		opts = append(opts, navmesh.WithCostFunc(navmesh.CentroidDistanceCost))
	case "uniform":
		opts = append(opts, navmesh.WithCostFunc(navmesh.UniformCost))
	default:
		return nil, fmt.Errorf("unknown cost function %q", c.Mesh.Cost)
	}

	switch c.Mesh.Heuristic {
	case "", "centroid":
		opts = append(opts, navmesh.WithHeuristicFunc(navmesh.CentroidDistanceHeuristic))
	case "zero":
		opts = append(opts, navmesh.WithHeuristicFunc(navmesh.ZeroHeuristic))
	default:
		return nil, fmt.Errorf("unknown heuristic %q", c.Mesh.Heuristic)
	}
	return opts, nil
}
