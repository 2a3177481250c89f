package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taigrr/objview/pkg/render"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// IndexError reports a face corner that references a missing position.
type IndexError struct {
	Face  int
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("face %d: position index %d out of range [0,%d)", e.Face, e.Index, e.Count)
}

// Options controls post-processing shared by all loaders.
type Options struct {
	// Normalize scales the mesh into the unit cube after loading.
	Normalize bool
	// GenerateNormals computes smooth normals when the file has none.
	GenerateNormals bool
	// TextureWrap and TextureFilter are applied to every loaded texture.
	TextureWrap   render.WrapMode
	TextureFilter render.FilterMode
}

// DefaultOptions normalizes vertices and leaves missing normals to the
// renderer's fallback.
func DefaultOptions() Options {
	return Options{Normalize: true}
}

// Load reads a model file, choosing the loader by extension.
func Load(path string, opts Options) (*Mesh, error) {
	var (
		mesh *Mesh
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		l := NewOBJLoader()
		l.Options = opts
		mesh, err = l.LoadFile(path)
	case ".gltf", ".glb":
		l := NewGLTFLoader()
		l.Options = opts
		mesh, err = l.Load(path)
	default:
		return nil, fmt.Errorf("%s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	return mesh, nil
}

// finish applies the shared post-processing steps to a freshly loaded mesh.
func finish(mesh *Mesh, opts Options) error {
	if err := mesh.validate(); err != nil {
		return err
	}
	if opts.GenerateNormals && len(mesh.Normals) == 0 {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()
	if opts.Normalize {
		mesh.NormalizeVertices()
	}
	for i := range mesh.Materials {
		if t := mesh.Materials[i].Texture; t != nil {
			t.WrapU = opts.TextureWrap
			t.WrapV = opts.TextureWrap
			t.FilterMode = opts.TextureFilter
		}
	}
	return nil
}
