package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sqlgate/sqlgate/core/config"
	"github.com/sqlgate/sqlgate/core/infrastructure/logging"
)

// validateCmd checks a config file without starting the gateway.
var validateCmd = &cobra.Command{
	Use:           "validate [config-file-or-dir]",
	Short:         "Validate a gateway config file",
	RunE:          validateConfig,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&configFile, "file", "f", "", "Path to the gateway config file (default: ./sqlgate.yaml)")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	logging.SetLogLevel(logging.LogLevelInfo)
	log := logging.New("validate")

	configPath, err := resolveConfigPath(args)
	if err != nil {
		return err
	}

	LoadEnvFiles(filepath.Dir(configPath))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log.Infof("Config OK: %d profile(s), listening on port %s", len(cfg.Profiles), cfg.Server.Port)
	for _, profile := range cfg.Profiles {
		mode := "READ/WRITE"
		if profile.ReadOnly {
			mode = "READ-ONLY"
		}
		log.Infof("  %s: %s %s:%d (%s)", profile.Name, profile.Driver, profile.Host, profile.Port, mode)
	}
	return nil
}
