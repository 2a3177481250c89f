package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/objview/pkg/math3d"
)

// corner is one resolved face vertex reference.
type corner struct {
	v, vt, vn int
}

// OBJLoader loads Wavefront OBJ files and the MTL libraries they reference.
type OBJLoader struct {
	Options Options
}

// NewOBJLoader creates a new OBJ loader with default settings.
func NewOBJLoader() *OBJLoader {
	return &OBJLoader{Options: DefaultOptions()}
}

// LoadOBJ is a convenience function to load an OBJ file with default settings.
func LoadOBJ(path string) (*Mesh, error) {
	return NewOBJLoader().LoadFile(path)
}

// LoadFile loads an OBJ file from disk. Material libraries are resolved
// relative to the file's directory.
func (l *OBJLoader) LoadFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer f.Close()

	return l.load(f, filepath.Base(path), filepath.Dir(path))
}

// Load parses an OBJ from a reader. Material libraries are resolved
// relative to the working directory.
func (l *OBJLoader) Load(r io.Reader, name string) (*Mesh, error) {
	return l.load(r, name, ".")
}

func (l *OBJLoader) load(r io.Reader, name, dir string) (*Mesh, error) {
	mesh := NewMesh(name)
	materialIdx := make(map[string]int)
	currentMaterial := -1

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			p, err := parseVec3(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid vertex: %w", lineNum, err)
			}
			mesh.Positions = append(mesh.Positions, p)

		case "vt":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: invalid texture coord (need u [v])", lineNum)
			}
			u, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid u coordinate: %w", lineNum, err)
			}
			var v float64
			if len(fields) > 2 {
				if v, err = strconv.ParseFloat(fields[2], 64); err != nil {
					return nil, fmt.Errorf("line %d: invalid v coordinate: %w", lineNum, err)
				}
			}
			mesh.UVs = append(mesh.UVs, math3d.V2(u, v))

		case "vn":
			n, err := parseVec3(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid normal: %w", lineNum, err)
			}
			mesh.Normals = append(mesh.Normals, n.Normalize())

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNum)
			}

			corners := make([]corner, 0, len(fields)-1)
			for _, field := range fields[1:] {
				posIdx, uvIdx, normalIdx, err := parseFaceVertex(field)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				posIdx = resolveIndex(posIdx, len(mesh.Positions))
				if posIdx < 0 || posIdx >= len(mesh.Positions) {
					return nil, fmt.Errorf("line %d: position index %s out of range", lineNum, field)
				}
				// Bad UV/normal references fall back at render time.
				corners = append(corners, corner{
					v:  posIdx,
					vt: resolveIndex(uvIdx, len(mesh.UVs)),
					vn: resolveIndex(normalIdx, len(mesh.Normals)),
				})
			}

			// Fan triangulation for convex polygons, keeping the file's winding
			for i := 1; i < len(corners)-1; i++ {
				a, b, c := corners[0], corners[i], corners[i+1]
				mesh.Faces = append(mesh.Faces, Face{
					V:        [3]int{a.v, b.v, c.v},
					VT:       [3]int{a.vt, b.vt, c.vt},
					VN:       [3]int{a.vn, b.vn, c.vn},
					Material: currentMaterial,
				})
			}

		case "o", "g":
			if len(fields) > 1 {
				mesh.Name = fields[1]
			}

		case "mtllib":
			for _, lib := range fields[1:] {
				mats, err := l.loadMTL(filepath.Join(dir, lib))
				if err != nil {
					mesh.Warnings = append(mesh.Warnings, fmt.Errorf("line %d: %w", lineNum, err))
					continue
				}
				for _, m := range mats.Materials {
					materialIdx[m.Name] = len(mesh.Materials)
					mesh.Materials = append(mesh.Materials, m)
				}
				mesh.Warnings = append(mesh.Warnings, mats.Warnings...)
			}

		case "usemtl":
			currentMaterial = -1
			if len(fields) > 1 {
				if idx, ok := materialIdx[fields[1]]; ok {
					currentMaterial = idx
				} else {
					mesh.Warnings = append(mesh.Warnings, fmt.Errorf("line %d: unknown material %q", lineNum, fields[1]))
				}
			}

		default:
			// Ignore unknown directives (s, l, p, ...)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading OBJ: %w", err)
	}

	if err := finish(mesh, l.Options); err != nil {
		return nil, err
	}
	return mesh, nil
}

func (l *OBJLoader) loadMTL(path string) (*MaterialLibrary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MTL file: %w", err)
	}
	defer f.Close()
	return ParseMTL(f, filepath.Dir(path))
}

// parseVec3 parses the three floats following a directive keyword.
func parseVec3(fields []string) (math3d.Vec3, error) {
	if len(fields) < 4 {
		return math3d.Vec3{}, fmt.Errorf("need x y z, got %d values", len(fields)-1)
	}
	var xyz [3]float64
	for i := range 3 {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return math3d.Vec3{}, err
		}
		xyz[i] = v
	}
	return math3d.V3(xyz[0], xyz[1], xyz[2]), nil
}

// parseFaceVertex parses a face vertex in format: v, v/vt, v/vt/vn, or v//vn
// Returns 1-indexed values (0 means not specified)
func parseFaceVertex(s string) (pos, uv, normal int, err error) {
	parts := strings.Split(s, "/")

	// Position (required)
	pos, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid vertex index: %s", parts[0])
	}

	// UV (optional)
	if len(parts) > 1 && parts[1] != "" {
		uv, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid texture index: %s", parts[1])
		}
	}

	// Normal (optional)
	if len(parts) > 2 && parts[2] != "" {
		normal, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid normal index: %s", parts[2])
		}
	}

	return pos, uv, normal, nil
}

// resolveIndex converts OBJ 1-indexed (or negative) index to 0-indexed.
// Returns -1 if index was 0 (not specified).
func resolveIndex(idx, count int) int {
	if idx == 0 {
		return -1
	}
	if idx < 0 {
		return count + idx // Negative indices count from end
	}
	return idx - 1
}
