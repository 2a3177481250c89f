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
	"github.com/taigrr/objview/pkg/render"
)

// MaterialLibrary is the parsed content of an MTL file.
type MaterialLibrary struct {
	Materials []render.Material
	Warnings  []error
}

// LoadMTL reads an MTL file. Texture paths are resolved relative to it.
func LoadMTL(path string) (*MaterialLibrary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MTL file: %w", err)
	}
	defer f.Close()
	return ParseMTL(f, filepath.Dir(path))
}

// ParseMTL parses newmtl, Ka, Kd, Ks, Ns and map_Kd statements. Each
// material starts from render.DefaultMaterial. A diffuse map that cannot be
// loaded is recorded as a warning and leaves HasTexture false.
func ParseMTL(r io.Reader, dir string) (*MaterialLibrary, error) {
	lib := &MaterialLibrary{}
	var cur *render.Material

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: newmtl needs a name", lineNum)
			}
			m := render.DefaultMaterial()
			m.Name = strings.Join(fields[1:], " ")
			lib.Materials = append(lib.Materials, m)
			cur = &lib.Materials[len(lib.Materials)-1]
			continue
		}

		switch fields[0] {
		case "Ka", "Kd", "Ks", "Ns", "map_Kd":
			if cur == nil {
				return nil, fmt.Errorf("line %d: %s before newmtl", lineNum, fields[0])
			}
		default:
			// d, Tr, illum, Ke, Ni and other maps are not used.
			continue
		}

		switch fields[0] {
		case "Ka", "Kd", "Ks":
			c, err := parseColor(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s: %w", lineNum, fields[0], err)
			}
			switch fields[0] {
			case "Ka":
				cur.Ambient = c
			case "Kd":
				cur.Diffuse = c
			case "Ks":
				cur.Specular = c
			}

		case "Ns":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: Ns needs a value", lineNum)
			}
			ns, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid Ns: %w", lineNum, err)
			}
			cur.Shininess = ns

		case "map_Kd":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: map_Kd needs a file name", lineNum)
			}
			// Options such as -s or -o precede the file name.
			texPath := fields[len(fields)-1]
			if !filepath.IsAbs(texPath) {
				texPath = filepath.Join(dir, texPath)
			}
			tex, err := render.LoadTexture(texPath)
			if err != nil {
				lib.Warnings = append(lib.Warnings, fmt.Errorf("material %q: %w", cur.Name, err))
				cur.Texture = nil
				cur.HasTexture = false
				continue
			}
			cur.Texture = tex
			cur.HasTexture = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading MTL: %w", err)
	}
	return lib, nil
}

// parseColor reads "K r g b" or the single-value shorthand "K v".
func parseColor(fields []string) (math3d.Vec3, error) {
	switch len(fields) {
	case 2:
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return math3d.Vec3{}, err
		}
		return math3d.V3(v, v, v), nil
	case 1:
		return math3d.Vec3{}, fmt.Errorf("missing color values")
	}
	return parseVec3(fields)
}
