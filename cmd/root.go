// cmd/root.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ucook/accessflow/config"
	logger "github.com/ucook/accessflow/logging"
)

const configFlagName = "config"

// Version is set at build time with -ldflags "-X github.com/ucook/accessflow/cmd.Version=...".
var Version = "dev"

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "accessflow",
		Short:         "access request and provisioning service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringP(configFlagName, "c", "",
		"path to a config file, defaults to config/config.yaml when present")

	root.AddCommand(
		ServeCMD(),
		MigrateCMD(),
		TokenCMD(),
		TemplateCMD(),
		VersionCMD(),
	)
	return root
}

// loadConfig reads and validates configuration, then initialises the
// process logger from it.
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	path, err := cmd.Flags().GetString(configFlagName)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := logger.InitLogger(logger.Options{Level: cfg.Log.Level, OutputPaths: cfg.Log.OutputPaths}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}
