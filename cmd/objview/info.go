package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taigrr/objview/internal/config"
	"github.com/taigrr/objview/internal/logger"
)

func newInfoCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "info <model.obj|model.gltf|model.glb>",
		Short: "Display model information",
		Long:  "Display vertex, face and material counts and the bounding box of a model file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.setup(cmd, true)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runInfo(cmd.OutOrStdout(), args[0], cfg)
		},
	}
}

func runInfo(w io.Writer, modelPath string, cfg *config.Config) error {
	info, err := os.Stat(modelPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	mesh, err := loadMesh(modelPath, cfg, false)
	if err != nil {
		return err
	}
	size := mesh.Size()
	center := mesh.Center()
	ext := filepath.Ext(modelPath)

	fmt.Fprintf(w, "File:       %s\n", filepath.Base(modelPath))
	fmt.Fprintf(w, "Format:     %s\n", strings.ToUpper(strings.TrimPrefix(ext, ".")))
	fmt.Fprintf(w, "Size:       %.2f KB\n", float64(info.Size())/1024)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Vertices:   %d\n", mesh.VertexCount())
	fmt.Fprintf(w, "Faces:      %d\n", mesh.FaceCount())
	fmt.Fprintf(w, "Normals:    %d\n", len(mesh.Normals))
	fmt.Fprintf(w, "UVs:        %d\n", len(mesh.UVs))
	fmt.Fprintf(w, "Materials:  %d (%d textured)\n", len(mesh.Materials), mesh.TexturedMaterials())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Bounds Min: (%.3f, %.3f, %.3f)\n", mesh.BoundsMin.X, mesh.BoundsMin.Y, mesh.BoundsMin.Z)
	fmt.Fprintf(w, "Bounds Max: (%.3f, %.3f, %.3f)\n", mesh.BoundsMax.X, mesh.BoundsMax.Y, mesh.BoundsMax.Z)
	fmt.Fprintf(w, "Dimensions: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	fmt.Fprintf(w, "Center:     (%.3f, %.3f, %.3f)\n", center.X, center.Y, center.Z)

	if len(mesh.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warn := range mesh.Warnings {
			fmt.Fprintf(w, "Warning:    %v\n", warn)
		}
	}
	return nil
}
