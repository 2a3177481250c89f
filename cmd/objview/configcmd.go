package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/taigrr/objview/internal/config"
	"github.com/taigrr/objview/internal/logger"
	"go.uber.org/zap"
)

func newConfigCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(f))
	return cmd
}

func newConfigInitCmd(f *flags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file",
		Long: "Write the effective configuration (defaults, any existing config file, and flags) as YAML.\n" +
			"The path defaults to config.yaml in the user config directory.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.setup(cmd, true)
			if err != nil {
				return err
			}
			defer logger.Sync()

			path := config.UserPath()
			if len(args) == 1 {
				path = args[0]
			}
			if err := writeConfig(cfg, path, force); err != nil {
				return err
			}
			logger.Info("config written", zap.String("path", path))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// writeConfig saves cfg to path, refusing to replace an existing file unless
// force is set.
func writeConfig(cfg *config.Config, path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("check %s: %w", path, err)
		}
	}
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
