package geometry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPoint is returned when a value cannot be read as a 2D point.
var ErrMalformedPoint = errors.New("malformed point")

// ParsePoint converts the point shapes accepted at the API boundary into a Vector2D.
// Supported: Vector2D, *Vector2D, [2]float64, []float64 and []any of length 2,
// and maps carrying numeric "x" and "y" entries.
func ParsePoint(v any) (Vector2D, error) {
	switch p := v.(type) {
	case Vector2D:
		return checkFinite(p)
	case *Vector2D:
		if p == nil {
			return Vector2D{}, fmt.Errorf("%w: nil vector", ErrMalformedPoint)
		}
		return checkFinite(*p)
	case [2]float64:
		return checkFinite(Vector2D{p[0], p[1]})
	case []float64:
		if len(p) != 2 {
			return Vector2D{}, fmt.Errorf("%w: want 2 coordinates, got %d", ErrMalformedPoint, len(p))
		}
		return checkFinite(Vector2D{p[0], p[1]})
	case []any:
		if len(p) != 2 {
			return Vector2D{}, fmt.Errorf("%w: want 2 coordinates, got %d", ErrMalformedPoint, len(p))
		}
		x, err := toFloat(p[0])
		if err != nil {
			return Vector2D{}, err
		}
		y, err := toFloat(p[1])
		if err != nil {
			return Vector2D{}, err
		}
		return checkFinite(Vector2D{x, y})
	case map[string]float64:
		x, okX := p["x"]
		y, okY := p["y"]
		if !okX || !okY {
			return Vector2D{}, fmt.Errorf("%w: missing x or y", ErrMalformedPoint)
		}
		return checkFinite(Vector2D{x, y})
	case map[string]any:
		rawX, okX := p["x"]
		rawY, okY := p["y"]
		if !okX || !okY {
			return Vector2D{}, fmt.Errorf("%w: missing x or y", ErrMalformedPoint)
		}
		x, err := toFloat(rawX)
		if err != nil {
			return Vector2D{}, err
		}
		y, err := toFloat(rawY)
		if err != nil {
			return Vector2D{}, err
		}
		return checkFinite(Vector2D{x, y})
	default:
		return Vector2D{}, fmt.Errorf("%w: unsupported type %T", ErrMalformedPoint, v)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMalformedPoint, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: coordinate %v (%T) is not a number", ErrMalformedPoint, v, v)
	}
}

func checkFinite(v Vector2D) (Vector2D, error) {
	if !v.IsFinite() {
		return Vector2D{}, fmt.Errorf("%w: non-finite coordinate in %v", ErrMalformedPoint, v)
	}
	return v, nil
}

// UnmarshalJSON accepts both [x, y] pairs and {"x": x, "y": y} records.
func (v *Vector2D) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedPoint, err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("%w: want 2 coordinates, got %d", ErrMalformedPoint, len(pair))
		}
		*v = Vector2D{pair[0], pair[1]}
		return nil
	}
	var rec struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPoint, err)
	}
	if rec.X == nil || rec.Y == nil {
		return fmt.Errorf("%w: missing x or y", ErrMalformedPoint)
	}
	*v = Vector2D{*rec.X, *rec.Y}
	return nil
}
