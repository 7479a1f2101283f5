// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/nbextract/internal/batch"
	"github.com/pdiddy/nbextract/pkg/types"
)

const defaultCatalogDir = ".nbextract"

// Settings resolve as flag, then environment or config file key, then the
// flag default. Resolving per command avoids binding one viper key to
// several commands' flags.

func stringSetting(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	return viper.GetString(key)
}

func boolSetting(cmd *cobra.Command, flag, key string) bool {
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		v, _ := cmd.Flags().GetBool(flag)
		return v
	}
	return viper.GetBool(key)
}

func intSetting(cmd *cobra.Command, flag, key string) int {
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		v, _ := cmd.Flags().GetInt(flag)
		return v
	}
	return viper.GetInt(key)
}

func stringSliceSetting(cmd *cobra.Command, flag, key string) []string {
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		v, _ := cmd.Flags().GetStringSlice(flag)
		return v
	}
	return viper.GetStringSlice(key)
}

// extractionConfig resolves the source and destination paths. Positional
// arguments take precedence over flags and configuration.
func extractionConfig(cmd *cobra.Command, args []string) types.ExtractionConfig {
	cfg := types.ExtractionConfig{
		SourcePath:      stringSetting(cmd, "source", "extract.source_path"),
		DestinationPath: stringSetting(cmd, "dest", "extract.destination_path"),
	}
	if len(args) > 0 {
		cfg.SourcePath = args[0]
	}
	if len(args) > 1 {
		cfg.DestinationPath = args[1]
	}
	return cfg
}

func batchConfig(cmd *cobra.Command) types.BatchConfig {
	cfg := types.BatchConfig{
		OutputDir: stringSetting(cmd, "out-dir", "batch.output_dir"),
		Include:   stringSliceSetting(cmd, "include", "batch.include"),
		Exclude:   stringSliceSetting(cmd, "exclude", "batch.exclude"),
		Force:     boolSetting(cmd, "force", "batch.force"),
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = batch.DefaultOutputDir
	}
	return cfg
}

func catalogConfig(cmd *cobra.Command) types.CatalogConfig {
	cfg := types.CatalogConfig{
		Dir:        stringSetting(cmd, "catalog-dir", "catalog.dir"),
		MaxResults: viper.GetInt("catalog.max_results"),
	}
	if cfg.Dir == "" {
		cfg.Dir = defaultCatalogDir
	}
	return cfg
}
