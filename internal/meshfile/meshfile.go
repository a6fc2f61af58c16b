// Package meshfile reads and writes polygon lists as JSON documents:
// an array of polygons, each an array of [x, y] pairs or {"x", "y"} records.
package meshfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
)

// ErrInvalidMesh is returned when a document does not describe a polygon list.
var ErrInvalidMesh = errors.New("invalid mesh document")

//go:embed mesh.schema.json
var schemaSource string

var schema = jsonschema.MustCompileString("mesh.schema.json", schemaSource)

// Decode reads one polygon list from r.
func Decode(r io.Reader) ([][]geometry.Vector2D, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read mesh: %w", err)
	}

	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMesh, err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMesh, err)
	}

	var polygons [][]geometry.Vector2D
	if err := json.Unmarshal(b, &polygons); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMesh, err)
	}
	return polygons, nil
}

// Load decodes the mesh file at path.
func Load(path string) ([][]geometry.Vector2D, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh file: %w", err)
	}
	defer f.Close()

	polygons, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return polygons, nil
}

// Encode writes polygons as {"x", "y"} records.
func Encode(w io.Writer, polygons [][]geometry.Vector2D) error {
	if polygons == nil {
		polygons = [][]geometry.Vector2D{}
	}
	return json.NewEncoder(w).Encode(polygons)
}

// Save writes polygons to path, replacing any existing file.
func Save(path string, polygons [][]geometry.Vector2D) error {
	var buf bytes.Buffer
	if err := Encode(&buf, polygons); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write mesh file: %w", err)
	}
	return nil
}
